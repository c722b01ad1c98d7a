package verification

import "time"

// FindingKind identifies what a suspicious-activity finding groups by.
type FindingKind string

const (
	// FindingKindIP groups failed attempts by caller IP
	FindingKindIP FindingKind = "ip"
	// FindingKindDomain groups failed attempts by domain
	FindingKindDomain FindingKind = "domain"
)

// RiskLevel is a coarse bucket derived from failure volume. There is no
// weighted scoring model; thresholds are count ranges.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

const (
	riskMediumFloor = 5
	riskHighFloor   = 10
)

// RiskFromCount buckets a failed-attempt count: low below 5, medium below
// 10, high at 10 and above.
func RiskFromCount(count int) RiskLevel {
	switch {
	case count >= riskHighFloor:
		return RiskHigh
	case count >= riskMediumFloor:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Finding is one suspicious-activity flag: a grouping key whose failed
// attempt volume crossed a configured threshold within a window.
type Finding struct {
	Kind         FindingKind `json:"kind"`
	Key          string      `json:"key"`
	AttemptCount int         `json:"attempt_count"`
	FirstSeen    time.Time   `json:"first_seen"`
	LastSeen     time.Time   `json:"last_seen"`
	Risk         RiskLevel   `json:"risk"`
}

// NewFinding builds a finding with the risk bucket derived from the count.
func NewFinding(kind FindingKind, key string, count int, firstSeen, lastSeen time.Time) Finding {
	return Finding{
		Kind:         kind,
		Key:          key,
		AttemptCount: count,
		FirstSeen:    firstSeen,
		LastSeen:     lastSeen,
		Risk:         RiskFromCount(count),
	}
}
