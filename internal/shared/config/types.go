// Package config defines the typed configuration structures shared across layers.
package config

import "fmt"

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GetAddr returns the listen address in host:port form.
func (c *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
	Timezone   string `mapstructure:"timezone"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// GetAddr returns the redis address in host:port form.
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

// LicenseConfig carries the entitlement policy knobs. It is injected into the
// engine at construction so policy can vary per deployment and per test.
type LicenseConfig struct {
	// AutoApproveBindings controls whether a newly created domain binding
	// starts as active (true) or pending (false).
	AutoApproveBindings bool `mapstructure:"auto_approve_bindings"`

	// DefaultMaxDomains is applied when a license is created without an
	// explicit domain cap.
	DefaultMaxDomains int `mapstructure:"default_max_domains"`

	// DefaultDurationDays is applied when a non-lifetime license is created
	// without an explicit expiry.
	DefaultDurationDays int `mapstructure:"default_duration_days"`

	// SupportDurationDays is the default support window granted at creation.
	SupportDurationDays int `mapstructure:"support_duration_days"`
}

// AnomalyConfig carries the suspicious-activity thresholds. These are tunable
// policy, not business law.
type AnomalyConfig struct {
	// IPWindowHours is the trailing window for per-IP failure grouping.
	IPWindowHours int `mapstructure:"ip_window_hours"`

	// IPMinAttempts is the failed-attempt count at which an IP becomes a finding.
	IPMinAttempts int `mapstructure:"ip_min_attempts"`

	// DomainWindowDays is the trailing window for per-domain failure grouping.
	DomainWindowDays int `mapstructure:"domain_window_days"`

	// DomainMinAttempts is the failed-attempt count above which a domain
	// becomes a finding.
	DomainMinAttempts int `mapstructure:"domain_min_attempts"`
}
