package industry

import (
	"fmt"
	"sort"
	"time"

	"github.com/andrescamacho/industry-go/internal/domain/material"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// MinPriceDataAge is the floor applied to the configured max price data age
const MinPriceDataAge = 300 * time.Second

// DefaultMaxPriceDataAge is used when no max price data age is configured
const DefaultMaxPriceDataAge = 24 * time.Hour

// Providers bundles the pluggable collaborators of a Context. Nil fields fall back to
// an untrained SkilledCharacter, zero research levels and the real clock.
type Providers struct {
	Character  CharacterModifier
	Blueprints BlueprintModifier
	Clock      shared.Clock
}

func (p Providers) withDefaults() Providers {
	if p.Character == nil {
		p.Character = NewSkilledCharacter(nil)
	}
	if p.Blueprints == nil {
		p.Blueprints = StaticBlueprintModifier{}
	}
	if p.Clock == nil {
		p.Clock = shared.NewRealClock()
	}
	return p
}

// ResolvedModifier is the final modifier for an activity on an item together with
// the facility it was resolved against
type ResolvedModifier struct {
	Modifier
	AssemblyLineID int64 `json:"assembly_line_id"`
	SolarSystemID  int64 `json:"solar_system_id"`
}

// Context is the industrial setting of a computation: a solar system, the assembly
// lines available there per activity, the facility tax and the character and
// blueprint modifier providers.
//
// Computations only read a Context, so one instance can be shared across goroutines.
// The setters are configuration changes meant to happen before concurrent use;
// use Clone for per-call overrides.
type Context struct {
	static                   StaticData
	system                   *SolarSystem
	assemblyLines            map[shared.Activity][]*AssemblyLine
	taxRate                  float64
	character                CharacterModifier
	blueprints               BlueprintModifier
	clock                    shared.Clock
	preferredMarketStationID int64
	maxPriceDataAge          time.Duration
	industryIndexMaxAge      time.Duration
}

// NewContext creates a context for a system with explicit assembly lines
func NewContext(static StaticData, system *SolarSystem, lines map[shared.Activity][]*AssemblyLine, taxRate float64, providers Providers) (*Context, error) {
	if static == nil {
		return nil, fmt.Errorf("static data is required")
	}
	if system == nil {
		return nil, fmt.Errorf("solar system is required")
	}
	if err := validateTaxRate(taxRate); err != nil {
		return nil, err
	}
	providers = providers.withDefaults()

	copied := make(map[shared.Activity][]*AssemblyLine, len(lines))
	for activity, activityLines := range lines {
		copied[activity] = append([]*AssemblyLine(nil), activityLines...)
	}

	return &Context{
		static:          static,
		system:          system,
		assemblyLines:   copied,
		taxRate:         taxRate,
		character:       providers.Character,
		blueprints:      providers.Blueprints,
		clock:           providers.Clock,
		maxPriceDataAge: DefaultMaxPriceDataAge,
	}, nil
}

// NewContextForStation creates a context using the assembly lines of a station.
// Player outposts use outpostTax; NPC stations use the station's own tax.
func NewContextForStation(static StaticData, stationID int64, outpostTax float64, providers Providers) (*Context, error) {
	station, err := static.Station(stationID)
	if err != nil {
		return nil, err
	}
	system, err := static.SolarSystem(station.SolarSystemID())
	if err != nil {
		return nil, err
	}
	lines, err := resolveLines(static, station.AssemblyLineIDs())
	if err != nil {
		return nil, fmt.Errorf("station %d: %w", stationID, err)
	}
	tax := station.Tax()
	if station.IsOutpost() {
		tax = outpostTax
	}
	return NewContext(static, system, lines, tax, providers)
}

// NewContextForSystemStations creates a context with the union of the assembly lines of
// all NPC stations in a system, at the default station tax
func NewContextForSystemStations(static StaticData, systemID int64, providers Providers) (*Context, error) {
	system, err := static.SolarSystem(systemID)
	if err != nil {
		return nil, err
	}

	ids := make(map[shared.Activity][]int64)
	seen := make(map[int64]bool)
	for _, stationID := range system.StationIDs() {
		station, err := static.Station(stationID)
		if err != nil {
			return nil, err
		}
		if station.IsOutpost() {
			continue
		}
		for activity, lineIDs := range station.AssemblyLineIDs() {
			for _, lineID := range lineIDs {
				if seen[lineID] {
					continue
				}
				seen[lineID] = true
				ids[activity] = append(ids[activity], lineID)
			}
		}
	}
	if len(seen) == 0 {
		return nil, &shared.NotFoundError{Kind: "NPC station assembly lines in system", ID: systemID}
	}

	lines, err := resolveLines(static, ids)
	if err != nil {
		return nil, fmt.Errorf("system %d: %w", systemID, err)
	}
	return NewContext(static, system, lines, DefaultStationTax, providers)
}

// NewContextForInstallation creates a context with the assembly lines of an installation type
// (e.g. a starbase array) anchored in a system
func NewContextForInstallation(static StaticData, systemID, installationTypeID int64, taxRate float64, providers Providers) (*Context, error) {
	system, err := static.SolarSystem(systemID)
	if err != nil {
		return nil, err
	}
	ids, err := static.InstallationAssemblyLines(installationTypeID)
	if err != nil {
		return nil, err
	}
	lines, err := resolveLines(static, ids)
	if err != nil {
		return nil, fmt.Errorf("installation %d: %w", installationTypeID, err)
	}
	return NewContext(static, system, lines, taxRate, providers)
}

// NewContextWithAssemblyLines creates a context for a system from explicit assembly line IDs
func NewContextWithAssemblyLines(static StaticData, systemID int64, lineIDs map[shared.Activity][]int64, taxRate float64, providers Providers) (*Context, error) {
	system, err := static.SolarSystem(systemID)
	if err != nil {
		return nil, err
	}
	lines, err := resolveLines(static, lineIDs)
	if err != nil {
		return nil, err
	}
	return NewContext(static, system, lines, taxRate, providers)
}

func resolveLines(static StaticData, ids map[shared.Activity][]int64) (map[shared.Activity][]*AssemblyLine, error) {
	activities := make([]shared.Activity, 0, len(ids))
	for activity := range ids {
		activities = append(activities, activity)
	}
	sort.Slice(activities, func(i, j int) bool { return activities[i] < activities[j] })

	lines := make(map[shared.Activity][]*AssemblyLine, len(ids))
	for _, activity := range activities {
		for _, id := range ids[activity] {
			line, err := static.AssemblyLine(id)
			if err != nil {
				return nil, err
			}
			lines[activity] = append(lines[activity], line)
		}
	}
	return lines, nil
}

func validateTaxRate(taxRate float64) error {
	if taxRate < 0 || taxRate > 1 {
		return shared.NewValidationError("tax_rate", fmt.Sprintf("%g outside [0, 1]", taxRate))
	}
	return nil
}

// Clone returns an independent copy sharing the read-only static data and providers
func (c *Context) Clone() *Context {
	clone := *c
	clone.assemblyLines = make(map[shared.Activity][]*AssemblyLine, len(c.assemblyLines))
	for activity, lines := range c.assemblyLines {
		clone.assemblyLines[activity] = append([]*AssemblyLine(nil), lines...)
	}
	return &clone
}

func (c *Context) Static() StaticData                 { return c.static }
func (c *Context) SolarSystem() *SolarSystem          { return c.system }
func (c *Context) TaxRate() float64                   { return c.taxRate }
func (c *Context) Character() CharacterModifier       { return c.character }
func (c *Context) Blueprints() BlueprintModifier      { return c.blueprints }
func (c *Context) Clock() shared.Clock                { return c.clock }
func (c *Context) PreferredMarketStationID() int64    { return c.preferredMarketStationID }
func (c *Context) IndustryIndexMaxAge() time.Duration { return c.industryIndexMaxAge }

// AssemblyLines returns the lines available for an activity
func (c *Context) AssemblyLines(activity shared.Activity) []*AssemblyLine {
	return append([]*AssemblyLine(nil), c.assemblyLines[activity]...)
}

// SetTaxRate overrides the facility tax
func (c *Context) SetTaxRate(taxRate float64) error {
	if err := validateTaxRate(taxRate); err != nil {
		return err
	}
	c.taxRate = taxRate
	return nil
}

// SetPreferredMarketStation sets the station used for market taxes. The station must be
// in the context's system.
func (c *Context) SetPreferredMarketStation(stationID int64) error {
	if !c.system.HasStation(stationID) {
		return &shared.NotFoundError{Kind: fmt.Sprintf("station in system %d", c.system.ID()), ID: stationID}
	}
	c.preferredMarketStationID = stationID
	return nil
}

func (c *Context) SetMaxPriceDataAge(maxAge time.Duration) {
	c.maxPriceDataAge = maxAge
}

// MaxPriceDataAge is the oldest acceptable price data, never less than MinPriceDataAge
func (c *Context) MaxPriceDataAge() time.Duration {
	if c.maxPriceDataAge < MinPriceDataAge {
		return MinPriceDataAge
	}
	return c.maxPriceDataAge
}

// SetIndustryIndexMaxAge opts in to rejecting industry indices older than maxAge. Zero disables the check.
func (c *Context) SetIndustryIndexMaxAge(maxAge time.Duration) {
	c.industryIndexMaxAge = maxAge
}

// WithSolarSystem returns a clone using an updated view of the same system, e.g. with fresh indices
func (c *Context) WithSolarSystem(system *SolarSystem) (*Context, error) {
	if system == nil || system.ID() != c.system.ID() {
		return nil, fmt.Errorf("solar system mismatch")
	}
	clone := c.Clone()
	clone.system = system
	return clone, nil
}

// BestAssemblyLine picks the best facility for an activity on an item
func (c *Context) BestAssemblyLine(activity shared.Activity, item Classified) (*AssemblyLine, Modifier, error) {
	return PickBestAssemblyLine(activity, item, c.assemblyLines[activity])
}

// IsActivityPossible reports whether any facility in the context accepts the item for the activity
func (c *Context) IsActivityPossible(activity shared.Activity, item Classified) bool {
	_, _, err := c.BestAssemblyLine(activity, item)
	return err == nil
}

// Modifier picks the best facility and resolves the final modifier for an activity on an item
func (c *Context) Modifier(activity shared.Activity, item Classified) (ResolvedModifier, error) {
	line, _, err := c.BestAssemblyLine(activity, item)
	if err != nil {
		return ResolvedModifier{}, err
	}
	return ResolveModifier(activity, item, line, c)
}

// ResolveModifier composes a facility's modifier for an item with location and character factors:
//
//	m = facility m
//	t = facility t × skill time factor × implant time factor
//	c = facility c × system index(activity) × (1 + tax)
//
// Blueprint research is applied by the caller. Provider errors are returned unchanged.
func ResolveModifier(activity shared.Activity, item Classified, line *AssemblyLine, ctx *Context) (ResolvedModifier, error) {
	base, ok := line.ModifierFor(item)
	if !ok || line.Activity() != activity {
		return ResolvedModifier{}, shared.NewNoCompatibleFacilityError(activity, item.TypeID())
	}

	index, err := ctx.system.IndustryIndex(activity, ctx.industryIndexMaxAge, ctx.clock.Now())
	if err != nil {
		return ResolvedModifier{}, err
	}
	skillFactor, err := ctx.character.SkillTimeFactor(activity)
	if err != nil {
		return ResolvedModifier{}, err
	}
	implantFactor, err := ctx.character.ImplantTimeFactor(activity)
	if err != nil {
		return ResolvedModifier{}, err
	}

	return ResolvedModifier{
		Modifier: Modifier{
			M: base.M,
			T: base.T * skillFactor * implantFactor,
			C: base.C * index * (1 + ctx.taxRate),
		},
		AssemblyLineID: line.ID(),
		SolarSystemID:  ctx.system.ID(),
	}, nil
}

func (c *Context) stations() ([]*Station, error) {
	ids := c.system.StationIDs()
	stations := make([]*Station, 0, len(ids))
	for _, id := range ids {
		station, err := c.static.Station(id)
		if err != nil {
			return nil, err
		}
		stations = append(stations, station)
	}
	return stations, nil
}

// BestMarketStation returns the preferred market station if set, otherwise the market
// station of the system with the lowest broker tax for the character
func (c *Context) BestMarketStation() (*Station, error) {
	if c.preferredMarketStationID != 0 {
		station, err := c.static.Station(c.preferredMarketStationID)
		if err != nil {
			return nil, err
		}
		if station.HasService(ServiceMarket) {
			return station, nil
		}
	}

	stations, err := c.stations()
	if err != nil {
		return nil, err
	}
	var best *Station
	bestTax := 0.0
	for _, station := range stations {
		if !station.HasService(ServiceMarket) {
			continue
		}
		factionID, err := station.FactionID()
		if err != nil {
			return nil, err
		}
		tax, err := c.character.BrokerTax(factionID, station.CorporationID())
		if err != nil {
			return nil, err
		}
		if best == nil || tax < bestTax {
			best = station
			bestTax = tax
		}
	}
	if best == nil {
		return nil, shared.NewDataUnavailableError(fmt.Sprintf("market station in system %d", c.system.ID()))
	}
	return best, nil
}

// BestReprocessingStation returns the station of the system with the highest
// efficiency × reprocessing tax factor, and that yield
func (c *Context) BestReprocessingStation() (*Station, float64, error) {
	stations, err := c.stations()
	if err != nil {
		return nil, 0, err
	}
	var best *Station
	bestYield := 0.0
	for _, station := range stations {
		if !station.HasService(ServiceReprocessing) {
			continue
		}
		taxFactor, err := c.character.ReprocessingTaxFactor(station.CorporationID())
		if err != nil {
			return nil, 0, err
		}
		yield := station.ReprocessingEfficiency() * taxFactor
		if best == nil || yield > bestYield {
			best = station
			bestYield = yield
		}
	}
	if best == nil {
		return nil, 0, shared.NewDataUnavailableError(fmt.Sprintf("reprocessing station in system %d", c.system.ID()))
	}
	return best, bestYield, nil
}

// Reprocess computes the materials recovered from reprocessing units of an item at the
// best reprocessing station of the system
func (c *Context) Reprocess(item Item, units int64) (*material.Ledger, error) {
	_, yield, err := c.BestReprocessingStation()
	if err != nil {
		return nil, err
	}
	specialization, err := c.character.ReprocessingSpecializationFactor(item.GroupID())
	if err != nil {
		return nil, err
	}
	return item.ReprocessingLedger(units, yield, specialization)
}

// SellTaxFactor is the fraction of the sell price kept after taxes at the best market station
func (c *Context) SellTaxFactor() (float64, error) {
	station, err := c.BestMarketStation()
	if err != nil {
		return 0, err
	}
	factionID, err := station.FactionID()
	if err != nil {
		return 0, err
	}
	return c.character.SellTaxFactor(factionID, station.CorporationID())
}

// BuyTaxFactor is the multiplier on buy prices from taxes at the best market station
func (c *Context) BuyTaxFactor() (float64, error) {
	station, err := c.BestMarketStation()
	if err != nil {
		return 0, err
	}
	factionID, err := station.FactionID()
	if err != nil {
		return 0, err
	}
	return c.character.BuyTaxFactor(factionID, station.CorporationID())
}
