package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	StorageCSV      = "csv"
	StoragePostgres = "postgres"

	ProviderDeepFace = "deepface"
	ProviderMock     = "mock"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Storage
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"csv"`
	DataDir       string `envconfig:"DATA_DIR" default:"./data"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`

	// Provider
	ProviderType string `envconfig:"PROVIDER_TYPE" default:"deepface"`
	DeepFaceURL  string `envconfig:"DEEPFACE_URL" default:"http://localhost:5005"`

	// Matching
	MatchMetric        string        `envconfig:"MATCH_METRIC" default:"euclidean"`
	MatchThreshold     float64       `envconfig:"MATCH_THRESHOLD" default:"0.6"`
	MatchTieEpsilon    float64       `envconfig:"MATCH_TIE_EPSILON" default:"1e-9"`
	AttendanceCooldown time.Duration `envconfig:"ATTENDANCE_COOLDOWN" default:"5m"`

	// Alerts
	AlertAttendancePct    float64       `envconfig:"ALERT_ATTENDANCE_PCT" default:"0.8"`
	AlertPerformanceScore float64       `envconfig:"ALERT_PERFORMANCE_SCORE" default:"5"`
	AlertInactivityDays   int           `envconfig:"ALERT_INACTIVITY_DAYS" default:"7"`
	AlertWindowDays       int           `envconfig:"ALERT_WINDOW_DAYS" default:"30"`
	AlertScoreSource      string        `envconfig:"ALERT_SCORE_SOURCE" default:"quality"`
	AlertInterval         time.Duration `envconfig:"ALERT_INTERVAL" default:"1h"`
	AlertNotifyCooldown   time.Duration `envconfig:"ALERT_NOTIFY_COOLDOWN" default:"24h"`
	AlertWebhookURL       string        `envconfig:"ALERT_WEBHOOK_URL"`
	AlertWebhookSecret    string        `envconfig:"ALERT_WEBHOOK_SECRET"`
	ThresholdsFile        string        `envconfig:"THRESHOLDS_FILE"`

	// Security
	JWTSecret          string        `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer          string        `envconfig:"JWT_ISSUER" default:"rollcall"`
	JWTTTL             time.Duration `envconfig:"JWT_TTL" default:"24h"`
	RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"600"`
	AuditFile          string        `envconfig:"AUDIT_FILE"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cfg.ThresholdsFile != "" {
		if err := cfg.ApplyThresholdsFile(cfg.ThresholdsFile); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// Validate checks cross-field rules envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageDriver {
	case StorageCSV:
		if c.DataDir == "" {
			errs = append(errs, errors.New("DATA_DIR is required for the csv storage driver"))
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres storage driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}

	switch c.ProviderType {
	case ProviderDeepFace, ProviderMock:
	default:
		errs = append(errs, fmt.Errorf("unknown PROVIDER_TYPE %q", c.ProviderType))
	}

	if c.AttendanceCooldown < 0 {
		errs = append(errs, errors.New("ATTENDANCE_COOLDOWN must not be negative"))
	}
	if c.AlertWindowDays <= 0 {
		errs = append(errs, errors.New("ALERT_WINDOW_DAYS must be positive"))
	}
	if c.AlertInterval <= 0 {
		errs = append(errs, errors.New("ALERT_INTERVAL must be positive"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}

	if c.IsProduction() {
		if len(c.JWTSecret) < minProductionSecret {
			errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes in production", minProductionSecret))
		}
		if c.ProviderType == ProviderMock {
			errs = append(errs, errors.New("PROVIDER_TYPE=mock is not allowed in production"))
		}
	}

	return errors.Join(errs...)
}

const minProductionSecret = 32

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}
