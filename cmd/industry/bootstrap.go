package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andrescamacho/industry-go/internal/adapters/api"
	"github.com/andrescamacho/industry-go/internal/adapters/cache"
	"github.com/andrescamacho/industry-go/internal/adapters/cli"
	"github.com/andrescamacho/industry-go/internal/adapters/metrics"
	"github.com/andrescamacho/industry-go/internal/adapters/persistence"
	"github.com/andrescamacho/industry-go/internal/adapters/sde"
	"github.com/andrescamacho/industry-go/internal/application/common"
	"github.com/andrescamacho/industry-go/internal/application/industry/services"
	"github.com/andrescamacho/industry-go/internal/application/setup"
	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/market"
	"github.com/andrescamacho/industry-go/internal/domain/material"
	"github.com/andrescamacho/industry-go/internal/domain/production"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
	"github.com/andrescamacho/industry-go/internal/infrastructure/config"
	"github.com/andrescamacho/industry-go/internal/infrastructure/database"
	"github.com/andrescamacho/industry-go/internal/infrastructure/logging"
)

// bootstrap wires the application: config, logging, database, static data,
// market feed, price cache, metrics and the mediator with all handlers
func bootstrap(ctx context.Context, opts cli.LoadOptions) (app *cli.App, err error) {
	// 1. Load configuration
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}

	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}
	defer func() {
		if err != nil {
			_ = closeAll()
		}
	}()

	// 2. Logging
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	closers = append(closers, logger.Close)

	// 3. Database
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	closers = append(closers, func() error { return database.Close(db) })
	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// 4. Static data
	catalog, err := sde.Load(ctx, cfg.StaticData.Driver, cfg.StaticData.Source())
	if err != nil {
		return nil, fmt.Errorf("failed to load static data: %w", err)
	}
	logger.Log(common.LevelDebug, "Static data loaded", map[string]interface{}{
		"driver": cfg.StaticData.Driver,
		"items":  len(catalog.ItemIDs()),
	})

	clock := shared.NewRealClock()

	// 5. Metrics
	var commandMetrics *metrics.CommandMetricsCollector
	var feedRecorder api.RequestRecorder
	if cfg.Metrics.Enabled {
		collectors, err := metrics.Enable()
		if err != nil {
			return nil, err
		}
		commandMetrics = collectors.Commands
		feedRecorder = collectors.API

		server := metrics.NewServer(cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
		if err := server.Start(); err != nil {
			return nil, err
		}
		closers = append(closers, func() error {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
		logger.Log(common.LevelDebug, "Metrics server started", map[string]interface{}{"addr": server.Addr()})
	}

	// 6. Market feed
	feed := api.NewMarketFeedClient(api.ClientConfig{
		BaseURL:           cfg.Market.BaseURL,
		Timeout:           cfg.Market.Timeout,
		RequestsPerSecond: cfg.Market.RateLimit.Requests,
		Burst:             cfg.Market.RateLimit.Burst,
		MaxRetries:        cfg.Market.Retry.MaxAttempts,
		BackoffBase:       cfg.Market.Retry.BackoffBase,
	}, clock).WithRecorder(feedRecorder)

	// 7. Shared price cache
	var priceCache market.PriceCache
	if cfg.Cache.RedisEnabled() {
		redisCache, err := cache.NewRedisPriceCache(ctx, cache.RedisConfig{
			Address:  cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			Database: cfg.Cache.RedisDB,
			Prefix:   cfg.Cache.Prefix,
		}, clock)
		if err != nil {
			logger.Log(common.LevelWarn, "Price cache unavailable, continuing without it", map[string]interface{}{
				"addr":  cfg.Cache.RedisAddr,
				"error": err.Error(),
			})
		} else {
			priceCache = redisCache
			closers = append(closers, redisCache.Close)
		}
	}

	// 8. Industry contexts
	character, err := newCharacter(cfg.Industry.Character)
	if err != nil {
		return nil, err
	}
	indices := persistence.NewGormIndustryIndexRepository(db)
	factory := services.NewContextFactory(catalog, indices, industry.Providers{
		Character: character,
		Blueprints: industry.StaticBlueprintModifier{
			Default: industry.ResearchLevels{ME: cfg.Industry.Research.ME, TE: cfg.Industry.Research.TE},
		},
		Clock: clock,
	}, services.ContextDefaults{
		TaxRate:             cfg.Industry.TaxRate(),
		MaxPriceDataAge:     cfg.Industry.MaxPriceDataAge,
		IndustryIndexMaxAge: cfg.Industry.IndustryIndexMaxAge,
	})

	// 9. Mediator
	med := common.NewMediator()
	med.Use(common.LoggingMiddleware)
	med.Use(metrics.PrometheusMiddleware(commandMetrics))

	registry := setup.NewHandlerRegistry(
		factory,
		production.NewEngine(cfg.Industry.RecursionDepth),
		setup.Repositories{
			PriceStats: persistence.NewGormPriceStatRepository(db),
			Baselines:  persistence.NewGormBaselineRepository(db),
			Indices:    indices,
			Records:    persistence.NewGormProcessRecordRepository(db),
		},
		setup.Feeds{Orders: feed, Indices: feed},
		setup.PricingOptions{
			Cache:     priceCache,
			CacheTTL:  cfg.Cache.TTL,
			LocalSize: cfg.Cache.LocalSize,
		},
		clock,
	)
	if err := registry.RegisterAll(med); err != nil {
		return nil, fmt.Errorf("failed to register handlers: %w", err)
	}

	return cli.NewApp(cfg, med, catalog, logger, closeAll), nil
}

// newCharacter builds the configured character's skills, standings and implants
func newCharacter(cfg config.CharacterConfig) (*industry.SkilledCharacter, error) {
	skills := material.NewSkillMap()
	for skillID, level := range cfg.SkillLevels() {
		if err := skills.Require(skillID, level); err != nil {
			return nil, fmt.Errorf("invalid skill %d: %w", skillID, err)
		}
	}

	character := industry.NewSkilledCharacter(skills)
	for id, standing := range cfg.StandingsByID() {
		character.Standings[id] = standing
	}
	for name, bonus := range cfg.ImplantTimeBonus {
		activity, err := shared.ParseActivity(strings.ReplaceAll(name, "_", "-"))
		if err != nil {
			return nil, fmt.Errorf("invalid implant activity %q: %w", name, err)
		}
		character.ImplantTimeBonus[activity] = bonus
	}
	return character, nil
}
