package config

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config holds run defaults, populated from environment variables. Command
// flags override the per-run fields.
type Config struct {
	LogLevel  string `env:"LOG_LEVEL, default=info" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	LogFormat string `env:"LOG_FORMAT, default=json" validate:"oneof=json text"`

	// Monte Carlo defaults.
	MCSeed    uint64 `env:"MC_SEED, default=42"`
	MCWorkers int    `env:"MC_WORKERS, default=4" validate:"gte=1,lte=256"`
	MCSamples int    `env:"MC_SAMPLES, default=100" validate:"gte=1,lte=100000"`

	// Physiological run defaults, in minutes.
	DurationMinutes int `env:"DURATION_MINUTES, default=60" validate:"gt=0"`
	OutputInterval  int `env:"OUTPUT_INTERVAL, default=5" validate:"gt=0"`

	// DefaultAQI substitutes for missing air-quality data in the solar model.
	DefaultAQI int `env:"DEFAULT_AQI, default=3" validate:"gte=1,lte=5"`

	PlotDir         string `env:"PLOT_DIR, default=./plots"`
	MetricsTextfile string `env:"METRICS_TEXTFILE"`
}

// Load reads configuration from a .env file (if present) and the environment,
// applying defaults where unset.
func Load(ctx context.Context) (*Config, error) {
	// A missing .env file is not an error. Existing variables win.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("process config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if cfg.DurationMinutes%cfg.OutputInterval != 0 {
		return nil, fmt.Errorf("validate config: OUTPUT_INTERVAL %d does not divide DURATION_MINUTES %d",
			cfg.OutputInterval, cfg.DurationMinutes)
	}
	return &cfg, nil
}
