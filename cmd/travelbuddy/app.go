package main

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Denosadchiy/travel-buddy-ai/internal/cache"
	"github.com/Denosadchiy/travel-buddy-ai/internal/config"
	"github.com/Denosadchiy/travel-buddy-ai/internal/critic"
	"github.com/Denosadchiy/travel-buddy-ai/internal/database"
	"github.com/Denosadchiy/travel-buddy-ai/internal/llm"
	"github.com/Denosadchiy/travel-buddy-ai/internal/llm/providers"
	"github.com/Denosadchiy/travel-buddy-ai/internal/lock"
	"github.com/Denosadchiy/travel-buddy-ai/internal/macro"
	"github.com/Denosadchiy/travel-buddy-ai/internal/observability"
	"github.com/Denosadchiy/travel-buddy-ai/internal/planner"
	"github.com/Denosadchiy/travel-buddy-ai/internal/poi"
	"github.com/Denosadchiy/travel-buddy-ai/internal/route"
	"github.com/Denosadchiy/travel-buddy-ai/internal/service"
	"github.com/Denosadchiy/travel-buddy-ai/internal/traveltime"
)

// app holds the wired service graph for one CLI invocation.
type app struct {
	cfg         *config.Config
	db          *database.DB
	pois        database.POIDAO
	service     *service.TripService
	stopTracing func(context.Context) error
}

// buildApp loads config and wires every component. The caller must Close.
func buildApp() (*app, error) {
	loader := config.NewLoader(config.NewValidator())
	cfg, err := loader.LoadWithDefaults(configPath)
	if err != nil {
		return nil, err
	}

	logger := observability.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	stopTracing, err := observability.InitTracing(context.Background(), observability.TracingConfig{
		Enabled:    cfg.Tracing.Enabled,
		Endpoint:   cfg.Tracing.Endpoint,
		Insecure:   cfg.Tracing.Insecure,
		SampleRate: cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, err
	}

	db, err := database.OpenWithConfig(database.Config{
		Path:         cfg.Database.Path,
		MaxOpenConns: cfg.Database.MaxConnections,
		MaxIdleConns: cfg.Database.MaxConnections / 2,
		BusyTimeout:  cfg.Database.BusyTimeout,
	})
	if err != nil {
		return nil, err
	}
	if err := db.InitSchema(); err != nil {
		db.Close()
		return nil, err
	}

	trips := database.NewTripDAO(db)
	itineraries := database.NewItineraryDAO(db)
	pois := database.NewPOIDAO(db)

	completer, err := providers.New(providers.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	gateway := llm.NewGateway(completer, llm.Config{
		ChatModel:     cfg.LLM.ChatModel,
		PlanningModel: cfg.LLM.PlanningModel,
		Timeout:       cfg.LLM.Timeout,
	}, logger)

	var locker lock.Locker
	var chatCache cache.Cache
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		locker = lock.NewRedisLocker(client)
		chatCache = cache.NewRedisCache(client)
	} else {
		locker = lock.NewMemoryLocker()
		chatCache = cache.NewMemoryCache()
	}

	travel := traveltime.NewDegrading(nil, logger)

	orchestrator := planner.New(
		trips,
		itineraries,
		macro.New(gateway, macro.Config{BatchDays: cfg.Planner.BatchDays, MalformedRetries: 1}, logger),
		poi.New(pois, poi.Config{
			MaxCandidates:      cfg.Catalog.MaxCandidates,
			SearchRadiusMeters: cfg.Catalog.SearchRadiusMeters,
		}, logger),
		route.New(travel, route.Config{Mode: traveltime.Mode(cfg.TravelTime.DefaultMode)}, logger),
		critic.New(critic.Config{StrictMeals: cfg.Planner.StrictMeals}),
		locker,
		planner.Config{
			HorizonDays:   cfg.Planner.HorizonDays,
			StageAttempts: cfg.Planner.StageAttempts,
			LockTTL:       cfg.Planner.LockTTL,
		},
		logger,
	)

	svc := service.New(trips, itineraries, gateway, chatCache, orchestrator, service.Config{
		HorizonDays:  cfg.Planner.HorizonDays,
		ChatCacheTTL: cfg.Planner.ChatCacheTTL,
	}, logger)

	return &app{cfg: cfg, db: db, pois: pois, service: svc, stopTracing: stopTracing}, nil
}

func (a *app) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// A telemetry flush failure must not mask the command outcome.
	_ = a.stopTracing(ctx)
	return a.db.Close()
}
