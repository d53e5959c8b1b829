// Package config resolves the poster configuration from environment
// variables, with optional .env loading for local development.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	trackRatioParts = 2

	policyKeep     = "keep"
	policyTruncate = "truncate"
)

type Config struct {
	AppEnv       string  `env:"APP_ENV" envDefault:"local"`
	PostgresDSN  string  `env:"POSTGRES_DSN,required"`
	BotToken     string  `env:"BOT_TOKEN,required"`
	TargetChatID int64   `env:"TARGET_CHAT_ID,required"`
	AdminIDs     []int64 `env:"ADMIN_IDS" envSeparator:","`

	// Content sources. Track documents are fetched as plain text exports;
	// the image pool is a local directory tree.
	PrimaryDocID   string `env:"PRIMARY_DOC_ID,required"`
	SecondaryDocID string `env:"SECONDARY_DOC_ID,required"`
	ImageRoot      string `env:"IMAGE_ROOT,required"`

	// Segmentation and chunking.
	SplitDelimiter     string `env:"SPLIT_DELIMITER"`
	MessageMaxLength   int    `env:"MESSAGE_MAX_LENGTH" envDefault:"4000"`
	CaptionMaxLength   int    `env:"CAPTION_MAX_LENGTH" envDefault:"1000"`
	PreferCaption      bool   `env:"PREFER_CAPTION_FOR_SHORT_POSTS" envDefault:"false"`
	OverlongWordPolicy string `env:"OVERLONG_WORD_POLICY" envDefault:"keep"`

	// Scheduling.
	PostsPerRun int    `env:"POSTS_PER_RUN" envDefault:"1"`
	TrackRatio  []int  `env:"TRACK_RATIO" envSeparator:"," envDefault:"3,1"`
	RunInterval string `env:"RUN_INTERVAL" envDefault:"6h"`

	// Transport.
	RateLimitRPS    float64       `env:"RATE_LIMIT_RPS" envDefault:"1"`
	DocFetchRPS     float64       `env:"DOC_FETCH_RPS" envDefault:"2"`
	DocFetchTimeout time.Duration `env:"DOC_FETCH_TIMEOUT" envDefault:"30s"`

	// Operations.
	HealthPort            int   `env:"HEALTH_PORT" envDefault:"8080"`
	LeaderElectionEnabled bool  `env:"LEADER_ELECTION_ENABLED" envDefault:"true"`
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"4"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate rejects values the scheduler cannot work with.
func (c *Config) Validate() error {
	if len(c.TrackRatio) != trackRatioParts {
		return fmt.Errorf("TRACK_RATIO must have exactly %d parts, got %d", trackRatioParts, len(c.TrackRatio))
	}

	if c.TrackRatio[0] < 0 || c.TrackRatio[1] < 0 || c.TrackRatio[0]+c.TrackRatio[1] == 0 {
		return fmt.Errorf("TRACK_RATIO parts must be non-negative with a positive sum, got %d,%d", c.TrackRatio[0], c.TrackRatio[1])
	}

	switch strings.ToLower(c.OverlongWordPolicy) {
	case policyKeep, policyTruncate, "":
	default:
		return fmt.Errorf("OVERLONG_WORD_POLICY must be %q or %q, got %q", policyKeep, policyTruncate, c.OverlongWordPolicy)
	}

	if c.PostsPerRun < 1 {
		return fmt.Errorf("POSTS_PER_RUN must be at least 1, got %d", c.PostsPerRun)
	}

	if c.MessageMaxLength < 1 || c.CaptionMaxLength < 1 {
		return fmt.Errorf("message and caption limits must be positive, got %d and %d", c.MessageMaxLength, c.CaptionMaxLength)
	}

	if _, err := time.ParseDuration(c.RunInterval); err != nil {
		return fmt.Errorf("RUN_INTERVAL: %w", err)
	}

	return nil
}

// RunIntervalDuration returns the parsed loop interval. Validate has already
// checked the value, so parse errors fall back to the default.
func (c *Config) RunIntervalDuration() time.Duration {
	d, err := time.ParseDuration(c.RunInterval)
	if err != nil {
		return 6 * time.Hour
	}

	return d
}

// IsLocal reports whether the app runs in a local development environment.
func (c *Config) IsLocal() bool {
	return c.AppEnv == "local"
}
