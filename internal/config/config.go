package config

import (
	"time"
)

// Config is the root configuration for the travel-buddy service.
type Config struct {
	Database   DBConfig         `mapstructure:"database" yaml:"database" validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm" yaml:"llm" validate:"required"`
	Catalog    CatalogConfig    `mapstructure:"catalog" yaml:"catalog"`
	TravelTime TravelTimeConfig `mapstructure:"traveltime" yaml:"traveltime"`
	Redis      RedisConfig      `mapstructure:"redis" yaml:"redis,omitempty"`
	Planner    PlannerConfig    `mapstructure:"planner" yaml:"planner"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Tracing    TracingConfig    `mapstructure:"tracing" yaml:"tracing"`
}

// DBConfig contains SQLite configuration.
type DBConfig struct {
	Path           string        `mapstructure:"path" yaml:"path"`
	MaxConnections int           `mapstructure:"max_connections" yaml:"max_connections" validate:"min=1,max=100"`
	BusyTimeout    time.Duration `mapstructure:"busy_timeout" yaml:"busy_timeout" validate:"min=1s"`
}

// LLMConfig contains generative gateway configuration. The chat model
// handles message interpretation; the planning model generates skeletons.
type LLMConfig struct {
	Provider      string        `mapstructure:"provider" yaml:"provider" validate:"oneof=openai anthropic ollama"`
	APIKey        string        `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL       string        `mapstructure:"base_url" yaml:"base_url,omitempty"`
	ChatModel     string        `mapstructure:"chat_model" yaml:"chat_model"`
	PlanningModel string        `mapstructure:"planning_model" yaml:"planning_model"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"min=1s"`
}

// CatalogConfig contains place catalog configuration.
type CatalogConfig struct {
	SeedPath           string `mapstructure:"seed_path" yaml:"seed_path,omitempty"`
	SearchRadiusMeters int    `mapstructure:"search_radius_meters" yaml:"search_radius_meters" validate:"min=100"`
	MaxCandidates      int    `mapstructure:"max_candidates" yaml:"max_candidates" validate:"min=1,max=20"`
}

// TravelTimeConfig contains travel-time provider configuration.
type TravelTimeConfig struct {
	DefaultMode string `mapstructure:"default_mode" yaml:"default_mode" validate:"oneof=walking transit driving"`
}

// RedisConfig contains the shared lock and chat cache store. When disabled,
// both fall back to in-process implementations, which is only safe for
// single-instance deployments.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr     string `mapstructure:"addr" yaml:"addr,omitempty"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	DB       int    `mapstructure:"db" yaml:"db,omitempty"`
}

// PlannerConfig contains pipeline tuning.
type PlannerConfig struct {
	HorizonDays   int           `mapstructure:"horizon_days" yaml:"horizon_days" validate:"min=1,max=60"`
	BatchDays     int           `mapstructure:"batch_days" yaml:"batch_days" validate:"min=1,max=10"`
	StageAttempts int           `mapstructure:"stage_attempts" yaml:"stage_attempts" validate:"min=1,max=10"`
	LockTTL       time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl" validate:"min=10s"`
	ChatCacheTTL  time.Duration `mapstructure:"chat_cache_ttl" yaml:"chat_cache_ttl"`
	StrictMeals   bool          `mapstructure:"strict_meals" yaml:"strict_meals"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

// TracingConfig contains distributed tracing configuration. Endpoint is an
// OTLP/gRPC collector address.
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled"`
	Endpoint   string  `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	Insecure   bool    `mapstructure:"insecure" yaml:"insecure,omitempty"`
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate,omitempty" validate:"min=0,max=1"`
}
