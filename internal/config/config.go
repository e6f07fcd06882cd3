package config

import (
	"time"

	"github.com/vijay-prabhu/aptmatch/internal/listing"
	"github.com/vijay-prabhu/aptmatch/internal/model"
	"github.com/vijay-prabhu/aptmatch/internal/scoring"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig         `toml:"database"`
	User     UserConfig             `toml:"user"`
	Scoring  scoring.ScoringWeights `toml:"scoring"`
	Ranking  RankingConfig          `toml:"ranking"`
	Learning LearningConfig         `toml:"learning"`
	Training TrainingConfig         `toml:"training"`
	Logging  LoggingConfig          `toml:"logging"`
	Server   ServerConfig           `toml:"server"`
	MCP      MCPConfig              `toml:"mcp"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `toml:"path" validate:"required"`
}

// UserConfig identifies the local user and their home location
type UserConfig struct {
	ID        string   `toml:"id" validate:"required"`
	Latitude  *float64 `toml:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `toml:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

// Location returns the configured home location, or nil when unset
func (u UserConfig) Location() *listing.Coordinates {
	if u.Latitude == nil || u.Longitude == nil {
		return nil
	}
	return &listing.Coordinates{Latitude: *u.Latitude, Longitude: *u.Longitude}
}

// RankingConfig controls how feeds are built
type RankingConfig struct {
	TopPickThreshold float64 `toml:"top_pick_threshold" validate:"gte=0,lte=100"`
	ExcludeSwiped    bool    `toml:"exclude_swiped"`
	ModelBlend       float64 `toml:"model_blend" validate:"gte=0,lte=1"`
	DefaultLimit     int     `toml:"default_limit" validate:"gte=1,lte=1000"`
}

// LearningConfig controls when learned preferences are recomputed
type LearningConfig struct {
	InitialSwipes int `toml:"initial_swipes" validate:"gte=1"`
	RefreshEvery  int `toml:"refresh_every" validate:"gte=1"`
}

// TrainingConfig contains model hyperparameters and retraining cadence
type TrainingConfig struct {
	Epochs            int     `toml:"epochs" validate:"gte=1,lte=10000"`
	LearningRate      float64 `toml:"learning_rate" validate:"gt=0,lte=1"`
	MaxBatchSize      int     `toml:"max_batch_size" validate:"gte=1"`
	ValidationSplit   float64 `toml:"validation_split" validate:"gt=0,lt=1"`
	MinValidationSize int     `toml:"min_validation_size" validate:"gte=1"`
	Seed              int64   `toml:"seed"`
	MaxModelAgeDays   int     `toml:"max_model_age_days" validate:"gte=1"`
	RetrainEvery      int     `toml:"retrain_every" validate:"gte=1"`
	Timeout           string  `toml:"timeout" validate:"required"`
}

// TrainConfig converts to the trainer's hyperparameters
func (t TrainingConfig) TrainConfig() model.TrainConfig {
	return model.TrainConfig{
		Epochs:            t.Epochs,
		LearningRate:      t.LearningRate,
		MaxBatchSize:      t.MaxBatchSize,
		ValidationSplit:   t.ValidationSplit,
		MinValidationSize: t.MinValidationSize,
		Seed:              t.Seed,
	}
}

// MaxModelAge returns the model staleness threshold as a duration
func (t TrainingConfig) MaxModelAge() time.Duration {
	return time.Duration(t.MaxModelAgeDays) * 24 * time.Hour
}

// TimeoutDuration parses Timeout, falling back to 30s when unparsable
func (t TrainingConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(t.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// LoggingConfig contains log settings
type LoggingConfig struct {
	Level  string `toml:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `toml:"format" validate:"oneof=console json"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Addr string `toml:"addr" validate:"required"`
}

// MCPConfig contains MCP server settings
type MCPConfig struct {
	Enabled   bool   `toml:"enabled"`
	Transport string `toml:"transport" validate:"oneof=stdio"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	train := model.DefaultTrainConfig()
	return &Config{
		Database: DatabaseConfig{
			Path: "~/.local/share/aptmatch/aptmatch.db",
		},
		User: UserConfig{
			ID: "default",
		},
		Scoring: scoring.DefaultWeights(),
		Ranking: RankingConfig{
			TopPickThreshold: 80,
			ExcludeSwiped:    true,
			ModelBlend:       0,
			DefaultLimit:     20,
		},
		Learning: LearningConfig{
			InitialSwipes: 5,
			RefreshEvery:  10,
		},
		Training: TrainingConfig{
			Epochs:            train.Epochs,
			LearningRate:      train.LearningRate,
			MaxBatchSize:      train.MaxBatchSize,
			ValidationSplit:   train.ValidationSplit,
			MinValidationSize: train.MinValidationSize,
			Seed:              train.Seed,
			MaxModelAgeDays:   7,
			RetrainEvery:      10,
			Timeout:           "30s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		MCP: MCPConfig{
			Enabled:   true,
			Transport: "stdio",
		},
	}
}
