package analytics

import "time"

// StatisticsResponse is the dashboard headline summary.
type StatisticsResponse struct {
	WindowDays           int     `json:"window_days"`
	TotalAttempts        int64   `json:"total_attempts"`
	SuccessfulAttempts   int64   `json:"successful_attempts"`
	FailedAttempts       int64   `json:"failed_attempts"`
	SuccessRate          float64 `json:"success_rate"`
	UniqueDomains        int64   `json:"unique_domains"`
	UniqueIPs            int64   `json:"unique_ips"`
	RecentFailedAttempts int64   `json:"recent_failed_attempts"`
}

// DateCountResponse is one zero-filled day bucket of the trend series.
type DateCountResponse struct {
	Date        string  `json:"date"`
	Total       int64   `json:"total"`
	Successful  int64   `json:"successful"`
	Failed      int64   `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
}

// StatusCountResponse is one outcome bucket.
type StatusCountResponse struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// DomainVolumeResponse is one row of the top-domains report.
type DomainVolumeResponse struct {
	Domain     string `json:"domain"`
	Total      int64  `json:"total_verifications"`
	Successful int64  `json:"successful_verifications"`
}

// HourCountResponse is one of the 24 hour-of-day buckets.
type HourCountResponse struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// RecentAttemptResponse is one row of the recent-attempt feed.
type RecentAttemptResponse struct {
	ID        uint       `json:"id"`
	LicenseID *uint      `json:"license_id"`
	Domain    string     `json:"domain"`
	IPAddress string     `json:"ip_address"`
	Status    string     `json:"status"`
	Message   string     `json:"message"`
	Source    string     `json:"source"`
	CreatedAt time.Time  `json:"created_at"`
	VerifiedAt *time.Time `json:"verified_at"`
}
