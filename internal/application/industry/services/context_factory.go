package services

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/industry-go/internal/application/common"
	"github.com/andrescamacho/industry-go/internal/domain/industry"
)

// ContextDefaults are applied to every context the factory builds
type ContextDefaults struct {
	TaxRate             float64
	MaxPriceDataAge     time.Duration
	IndustryIndexMaxAge time.Duration
}

// Location selects where a computation happens. StationID wins over InstallationTypeID;
// with neither, all NPC stations of SystemID are used.
type Location struct {
	StationID          int64
	SystemID           int64
	InstallationTypeID int64
	// TaxRate overrides the facility tax when set
	TaxRate *float64
}

func (l Location) String() string {
	switch {
	case l.StationID > 0:
		return fmt.Sprintf("station %d", l.StationID)
	case l.InstallationTypeID > 0:
		return fmt.Sprintf("installation %d in system %d", l.InstallationTypeID, l.SystemID)
	default:
		return fmt.Sprintf("system %d", l.SystemID)
	}
}

// ContextFactory builds industry contexts from static data, refreshing system cost
// indices from the index repository when one is configured
type ContextFactory struct {
	static    industry.StaticData
	indices   industry.IndexRepository
	providers industry.Providers
	defaults  ContextDefaults
}

// NewContextFactory creates a factory. indices may be nil.
func NewContextFactory(static industry.StaticData, indices industry.IndexRepository, providers industry.Providers, defaults ContextDefaults) *ContextFactory {
	return &ContextFactory{
		static:    static,
		indices:   indices,
		providers: providers,
		defaults:  defaults,
	}
}

func (f *ContextFactory) Static() industry.StaticData {
	return f.static
}

// Build creates the context for a location
func (f *ContextFactory) Build(ctx context.Context, loc Location) (*industry.Context, error) {
	ictx, err := f.newContext(loc)
	if err != nil {
		return nil, fmt.Errorf("failed to create industry context for %s: %w", loc, err)
	}

	ictx, err = f.refreshIndices(ctx, ictx)
	if err != nil {
		return nil, err
	}

	ictx.SetMaxPriceDataAge(f.defaults.MaxPriceDataAge)
	ictx.SetIndustryIndexMaxAge(f.defaults.IndustryIndexMaxAge)
	if loc.TaxRate != nil {
		if err := ictx.SetTaxRate(*loc.TaxRate); err != nil {
			return nil, err
		}
	}
	return ictx, nil
}

func (f *ContextFactory) newContext(loc Location) (*industry.Context, error) {
	switch {
	case loc.StationID > 0:
		return industry.NewContextForStation(f.static, loc.StationID, f.defaults.TaxRate, f.providers)
	case loc.InstallationTypeID > 0:
		return industry.NewContextForInstallation(f.static, loc.SystemID, loc.InstallationTypeID, f.defaults.TaxRate, f.providers)
	case loc.SystemID > 0:
		return industry.NewContextForSystemStations(f.static, loc.SystemID, f.providers)
	default:
		return nil, fmt.Errorf("a station, installation or solar system is required")
	}
}

func (f *ContextFactory) refreshIndices(ctx context.Context, ictx *industry.Context) (*industry.Context, error) {
	if f.indices == nil {
		return ictx, nil
	}

	system := ictx.SolarSystem()
	indices, err := f.indices.FindBySystem(ctx, system.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to load industry indices for system %d: %w", system.ID(), err)
	}
	if len(indices) == 0 {
		common.LoggerFromContext(ctx).Log(common.LevelDebug, "No stored industry indices, using static data", map[string]interface{}{
			"system_id": system.ID(),
		})
		return ictx, nil
	}
	return ictx.WithSolarSystem(system.WithIndustryIndices(indices))
}
