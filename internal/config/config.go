package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"

	codelearn "github.com/Niavlys042/codelearn-journey-forge.github.io"
)

type Config struct {
	API      APIConfig
	Cache    CacheConfig
	Messages MessagesConfig
	Observe  ObserveConfig
	Session  SessionConfig
}

type APIConfig struct {
	URL     string        `env:"CODELEARN_API_URL, default=http://localhost:8000/api" validate:"required,url"`
	Timeout time.Duration `env:"CODELEARN_TIMEOUT, default=10s" validate:"gt=0,lte=10m"`
}

// CacheConfig controls the query cache.
type CacheConfig struct {
	// StaleTime is how long fetched data is served without refetching. Zero
	// keeps data fresh until a mutation invalidates it.
	StaleTime time.Duration `env:"CODELEARN_CACHE_STALE_TIME, default=0s" validate:"gte=0"`

	// GCTime is how long unread entries are kept.
	GCTime time.Duration `env:"CODELEARN_CACHE_GC_TIME, default=30m" validate:"gt=0"`

	MaxEntries int `env:"CODELEARN_CACHE_MAX_ENTRIES, default=1000" validate:"gt=0"`
}

// MessagesConfig holds the fallback texts shown when the server does not
// explain a failure. Empty values keep the built-in texts.
type MessagesConfig struct {
	Network        string `env:"CODELEARN_MESSAGE_NETWORK"`
	Server         string `env:"CODELEARN_MESSAGE_SERVER"`
	Authentication string `env:"CODELEARN_MESSAGE_AUTHENTICATION"`
	Validation     string `env:"CODELEARN_MESSAGE_VALIDATION"`
}

type ObserveConfig struct {
	LogLevel       string `env:"CODELEARN_LOG_LEVEL, default=info" validate:"oneof=trace debug info warn error disabled"`
	MetricsEnabled bool   `env:"CODELEARN_METRICS, default=false"`
	MetricsAddr    string `env:"CODELEARN_METRICS_ADDR, default=:9090" validate:"required_if=MetricsEnabled true"`
	TracingEnabled bool   `env:"CODELEARN_TRACING, default=false"`
}

type SessionConfig struct {
	// File is the session file path; empty selects the user config directory.
	File string `env:"CODELEARN_SESSION_FILE"`
}

// Messages merges the configured texts over the defaults.
func (c MessagesConfig) Messages() codelearn.Messages {
	m := codelearn.DefaultMessages()
	if c.Network != "" {
		m.Network = c.Network
	}
	if c.Server != "" {
		m.Server = c.Server
	}
	if c.Authentication != "" {
		m.Authentication = c.Authentication
	}
	if c.Validation != "" {
		m.Validation = c.Validation
	}
	return m
}

func Load(ctx context.Context) (Config, error) {
	return load(ctx, nil) // load from OS environment
}

func load(ctx context.Context, lookup envconfig.Lookuper) (Config, error) {
	var cfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookup, // nil defaults to OS environment
	})
	if err != nil {
		return cfg, err
	}

	err = cfg.Validate()
	if err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
