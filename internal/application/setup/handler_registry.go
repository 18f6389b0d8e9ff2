package setup

import (
	"time"

	"github.com/andrescamacho/industry-go/internal/application/common"
	industryCommands "github.com/andrescamacho/industry-go/internal/application/industry/commands"
	industryQueries "github.com/andrescamacho/industry-go/internal/application/industry/queries"
	"github.com/andrescamacho/industry-go/internal/application/industry/services"
	pricingCommands "github.com/andrescamacho/industry-go/internal/application/pricing/commands"
	pricingQueries "github.com/andrescamacho/industry-go/internal/application/pricing/queries"
	"github.com/andrescamacho/industry-go/internal/domain/industry"
	"github.com/andrescamacho/industry-go/internal/domain/market"
	"github.com/andrescamacho/industry-go/internal/domain/process"
	"github.com/andrescamacho/industry-go/internal/domain/production"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// Repositories groups the persistence ports used by the handlers
type Repositories struct {
	PriceStats market.PriceStatRepository
	Baselines  market.BaselineRepository
	Indices    industry.IndexRepository
	Records    process.RecordRepository
}

// Feeds groups the remote data sources. Either may be nil, in which case the
// handlers that need it are not registered.
type Feeds struct {
	Orders  market.OrderFeed
	Indices industry.IndexFeed
}

// PricingOptions configure the price cache layers
type PricingOptions struct {
	// Cache is the shared price cache; nil disables it
	Cache     market.PriceCache
	CacheTTL  time.Duration
	LocalSize int
}

// HandlerRegistry holds all application dependencies for handler creation
type HandlerRegistry struct {
	contexts *services.ContextFactory
	engine   *production.Engine
	repos    Repositories
	feeds    Feeds
	pricing  PricingOptions
	clock    shared.Clock
}

// NewHandlerRegistry creates a new handler registry with required dependencies
func NewHandlerRegistry(
	contexts *services.ContextFactory,
	engine *production.Engine,
	repos Repositories,
	feeds Feeds,
	pricing PricingOptions,
	clock shared.Clock,
) *HandlerRegistry {
	// Default to real clock if not provided
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &HandlerRegistry{
		contexts: contexts,
		engine:   engine,
		repos:    repos,
		feeds:    feeds,
		pricing:  pricing,
		clock:    clock,
	}
}

// RegisterIndustryHandlers registers the process computations, facility selection,
// process records and the index update
func (r *HandlerRegistry) RegisterIndustryHandlers(m common.Mediator) error {
	react := industryQueries.NewReactHandler(r.contexts, r.engine)
	if err := common.RegisterHandler[*industryQueries.ReactQuery](m, react); err != nil {
		return err
	}
	if err := common.RegisterHandler[*industryQueries.ReactExactQuery](m, react); err != nil {
		return err
	}

	manufacture := industryQueries.NewManufactureHandler(r.contexts, r.engine)
	if err := common.RegisterHandler[*industryQueries.ManufactureQuery](m, manufacture); err != nil {
		return err
	}
	if err := common.RegisterHandler[*industryQueries.CopyQuery](m, manufacture); err != nil {
		return err
	}
	if err := common.RegisterHandler[*industryQueries.InventQuery](m, manufacture); err != nil {
		return err
	}

	if err := common.RegisterHandler[*industryQueries.ReprocessQuery](m, industryQueries.NewReprocessHandler(r.contexts, r.engine)); err != nil {
		return err
	}
	if err := common.RegisterHandler[*industryQueries.BestFacilityQuery](m, industryQueries.NewBestFacilityHandler(r.contexts)); err != nil {
		return err
	}

	if r.repos.Records != nil {
		if err := common.RegisterHandler[*industryCommands.RecordProcessCommand](m, industryCommands.NewRecordProcessHandler(r.repos.Records, r.clock)); err != nil {
			return err
		}
		if err := common.RegisterHandler[*industryQueries.GetProcessRecordQuery](m, industryQueries.NewGetProcessRecordHandler(r.repos.Records)); err != nil {
			return err
		}
	}

	if r.feeds.Indices != nil && r.repos.Indices != nil {
		if err := common.RegisterHandler[*industryCommands.UpdateIndicesCommand](m, industryCommands.NewUpdateIndicesHandler(r.feeds.Indices, r.repos.Indices)); err != nil {
			return err
		}
	}

	return nil
}

// RegisterPricingHandlers registers the price update, price lookups and process valuation
func (r *HandlerRegistry) RegisterPricingHandlers(m common.Mediator) error {
	if r.repos.PriceStats == nil {
		return nil
	}

	getPrice, err := pricingQueries.NewGetPriceHandler(r.repos.PriceStats, r.pricing.Cache, r.pricing.LocalSize, r.pricing.CacheTTL, r.clock)
	if err != nil {
		return err
	}
	if err := common.RegisterHandler[*pricingQueries.GetPriceQuery](m, getPrice); err != nil {
		return err
	}
	if err := common.RegisterHandler[*pricingQueries.GetPriceHistoryQuery](m, pricingQueries.NewGetPriceHistoryHandler(r.repos.PriceStats, r.clock)); err != nil {
		return err
	}
	if err := common.RegisterHandler[*industryQueries.ValueProcessQuery](m, industryQueries.NewValueProcessHandler(r.contexts, r.repos.PriceStats)); err != nil {
		return err
	}

	if r.feeds.Orders != nil && r.repos.Baselines != nil {
		update := pricingCommands.NewUpdatePriceStatsHandler(
			r.feeds.Orders,
			r.repos.Baselines,
			r.repos.PriceStats,
			r.pricing.Cache,
			r.pricing.CacheTTL,
			r.clock,
		)
		if err := common.RegisterHandler[*pricingCommands.UpdatePriceStatsCommand](m, update); err != nil {
			return err
		}
	}

	return nil
}

// RegisterAll registers every handler group
func (r *HandlerRegistry) RegisterAll(m common.Mediator) error {
	if err := r.RegisterIndustryHandlers(m); err != nil {
		return err
	}
	return r.RegisterPricingHandlers(m)
}
