package config

import "time"

// DefaultConfig returns the configuration used when no config file exists.
// It runs fully offline: seeded catalog, static travel times, in-process
// lock and cache.
func DefaultConfig() *Config {
	return &Config{
		Database: DBConfig{
			Path:           "travelbuddy.db",
			MaxConnections: 10,
			BusyTimeout:    5 * time.Second,
		},
		LLM: LLMConfig{
			Provider:      "openai",
			ChatModel:     "gpt-4o-mini",
			PlanningModel: "gpt-4o",
			Timeout:       30 * time.Second,
		},
		Catalog: CatalogConfig{
			SearchRadiusMeters: 5000,
			MaxCandidates:      6,
		},
		TravelTime: TravelTimeConfig{
			DefaultMode: "walking",
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
		},
		Planner: PlannerConfig{
			HorizonDays:   14,
			BatchDays:     3,
			StageAttempts: 3,
			LockTTL:       5 * time.Minute,
			ChatCacheTTL:  15 * time.Minute,
			StrictMeals:   false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Tracing: TracingConfig{
			Enabled:    false,
			SampleRate: 1.0,
		},
	}
}
