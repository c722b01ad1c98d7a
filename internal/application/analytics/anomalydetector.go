package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/licentry/licentry/internal/domain/verification"
	"github.com/licentry/licentry/internal/shared/config"
	"github.com/licentry/licentry/internal/shared/logger"
)

// AnomalyDetector flags suspicious verification activity: IPs hammering
// failed attempts inside a short window, and domains accumulating failures
// over the trailing month. Detection runs on demand from the admin panel;
// there is no background sweep.
type AnomalyDetector struct {
	logRepo verification.LogRepository
	cfg     config.AnomalyConfig
	logger  logger.Interface
}

// NewAnomalyDetector creates a new anomaly detector
func NewAnomalyDetector(
	logRepo verification.LogRepository,
	cfg config.AnomalyConfig,
	logger logger.Interface,
) *AnomalyDetector {
	return &AnomalyDetector{
		logRepo: logRepo,
		cfg:     cfg,
		logger:  logger,
	}
}

// FindSuspicious returns all findings across both detection rules, highest
// attempt volume first. windowHours and minAttempts override the configured
// IP-rule thresholds when positive; zero keeps the configuration.
func (d *AnomalyDetector) FindSuspicious(ctx context.Context, windowHours, minAttempts int) ([]verification.Finding, error) {
	ipFindings, err := d.SuspiciousIPs(ctx, windowHours, minAttempts)
	if err != nil {
		return nil, err
	}
	domainFindings, err := d.SuspiciousDomains(ctx)
	if err != nil {
		return nil, err
	}

	findings := append(ipFindings, domainFindings...)
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].AttemptCount > findings[j].AttemptCount
	})
	return findings, nil
}

// SuspiciousIPs flags IPs whose failed attempts within the trailing window
// reached the minimum. windowHours and minAttempts override the configured
// thresholds when positive.
func (d *AnomalyDetector) SuspiciousIPs(ctx context.Context, windowHours, minAttempts int) ([]verification.Finding, error) {
	if windowHours <= 0 {
		windowHours = d.cfg.IPWindowHours
	}
	if minAttempts <= 0 {
		minAttempts = d.cfg.IPMinAttempts
	}
	since := time.Now().Add(-time.Duration(windowHours) * time.Hour)

	groups, err := d.logRepo.FailuresByIP(ctx, since)
	if err != nil {
		d.logger.Errorw("failed to group failed attempts by ip", "error", err)
		return nil, fmt.Errorf("failed to detect suspicious IPs: %w", err)
	}

	findings := make([]verification.Finding, 0)
	for _, g := range groups {
		if g.Count >= minAttempts {
			findings = append(findings, verification.NewFinding(
				verification.FindingKindIP, g.Key, g.Count, g.FirstSeen, g.LastSeen))
		}
	}

	if len(findings) > 0 {
		d.logger.Warnw("suspicious verification activity by ip",
			"window_hours", windowHours,
			"findings", len(findings),
		)
	}
	return findings, nil
}

// SuspiciousDomains flags domains whose failed attempts over the trailing
// window exceeded the configured minimum. Note the strict inequality: a
// domain at exactly the minimum is not yet flagged.
func (d *AnomalyDetector) SuspiciousDomains(ctx context.Context) ([]verification.Finding, error) {
	since := time.Now().AddDate(0, 0, -d.cfg.DomainWindowDays)

	groups, err := d.logRepo.FailuresByDomain(ctx, since)
	if err != nil {
		d.logger.Errorw("failed to group failed attempts by domain", "error", err)
		return nil, fmt.Errorf("failed to detect suspicious domains: %w", err)
	}

	findings := make([]verification.Finding, 0)
	for _, g := range groups {
		if g.Count > d.cfg.DomainMinAttempts {
			findings = append(findings, verification.NewFinding(
				verification.FindingKindDomain, g.Key, g.Count, g.FirstSeen, g.LastSeen))
		}
	}

	if len(findings) > 0 {
		d.logger.Warnw("suspicious verification activity by domain",
			"window_days", d.cfg.DomainWindowDays,
			"findings", len(findings),
		)
	}
	return findings, nil
}
