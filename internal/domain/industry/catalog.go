package industry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// StaticData resolves static game data by stable integer identifiers.
// Unknown identifiers yield an error wrapping shared.ErrNotFound.
type StaticData interface {
	Item(typeID int64) (Item, error)
	ItemIDByName(name string) (int64, error)
	Reaction(typeID int64) (*Reaction, error)
	Blueprint(typeID int64) (*Blueprint, error)
	AssemblyLine(id int64) (*AssemblyLine, error)
	SolarSystem(id int64) (*SolarSystem, error)
	Station(id int64) (*Station, error)
	InstallationAssemblyLines(installationTypeID int64) (map[shared.Activity][]int64, error)
}

// Catalog is an in-memory StaticData built once by a CatalogBuilder and read-only afterwards,
// so it is safe to share between goroutines.
type Catalog struct {
	items         map[int64]Item
	itemsByName   map[string]int64
	reactions     map[int64]*Reaction
	blueprints    map[int64]*Blueprint
	assemblyLines map[int64]*AssemblyLine
	systems       map[int64]*SolarSystem
	stations      map[int64]*Station
	installations map[int64]map[shared.Activity][]int64
}

func (c *Catalog) Item(typeID int64) (Item, error) {
	item, ok := c.items[typeID]
	if !ok {
		return nil, shared.NewNotFoundError("item", typeID)
	}
	return item, nil
}

func (c *Catalog) ItemIDByName(name string) (int64, error) {
	id, ok := c.itemsByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("item named %q: %w", name, shared.ErrNotFound)
	}
	return id, nil
}

func (c *Catalog) Reaction(typeID int64) (*Reaction, error) {
	r, ok := c.reactions[typeID]
	if !ok {
		return nil, shared.NewNotFoundError("reaction", typeID)
	}
	return r, nil
}

func (c *Catalog) Blueprint(typeID int64) (*Blueprint, error) {
	bp, ok := c.blueprints[typeID]
	if !ok {
		return nil, shared.NewNotFoundError("blueprint", typeID)
	}
	return bp, nil
}

func (c *Catalog) AssemblyLine(id int64) (*AssemblyLine, error) {
	line, ok := c.assemblyLines[id]
	if !ok {
		return nil, shared.NewNotFoundError("assembly line", id)
	}
	return line, nil
}

func (c *Catalog) SolarSystem(id int64) (*SolarSystem, error) {
	s, ok := c.systems[id]
	if !ok {
		return nil, shared.NewNotFoundError("solar system", id)
	}
	return s, nil
}

func (c *Catalog) Station(id int64) (*Station, error) {
	s, ok := c.stations[id]
	if !ok {
		return nil, shared.NewNotFoundError("station", id)
	}
	return s, nil
}

func (c *Catalog) InstallationAssemblyLines(installationTypeID int64) (map[shared.Activity][]int64, error) {
	lines, ok := c.installations[installationTypeID]
	if !ok {
		return nil, shared.NewNotFoundError("installation type", installationTypeID)
	}
	out := make(map[shared.Activity][]int64, len(lines))
	for activity, ids := range lines {
		out[activity] = append([]int64(nil), ids...)
	}
	return out, nil
}

// ItemIDs returns all item IDs in ascending order
func (c *Catalog) ItemIDs() []int64 {
	ids := make([]int64, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type itemEntry struct {
	attrs         ItemAttributes
	marketGroupID int64
}

// CatalogBuilder collects raw static data and resolves it into a Catalog.
// The item variant is derived at Build time: items produced by a blueprint are
// manufacturable, items produced by a reaction are reaction products, other items
// with a market group are sellable and the rest are generic.
type CatalogBuilder struct {
	items         []itemEntry
	reactions     []ReactionAttributes
	blueprints    []BlueprintAttributes
	assemblyLines []*AssemblyLine
	systems       []*SolarSystem
	stations      []StationAttributes
	installations map[int64]map[shared.Activity][]int64
}

func NewCatalogBuilder() *CatalogBuilder {
	return &CatalogBuilder{installations: make(map[int64]map[shared.Activity][]int64)}
}

func (b *CatalogBuilder) AddItem(attrs ItemAttributes, marketGroupID int64) *CatalogBuilder {
	b.items = append(b.items, itemEntry{attrs: attrs, marketGroupID: marketGroupID})
	return b
}

func (b *CatalogBuilder) AddReaction(attrs ReactionAttributes) *CatalogBuilder {
	b.reactions = append(b.reactions, attrs)
	return b
}

func (b *CatalogBuilder) AddBlueprint(attrs BlueprintAttributes) *CatalogBuilder {
	b.blueprints = append(b.blueprints, attrs)
	return b
}

func (b *CatalogBuilder) AddAssemblyLine(line *AssemblyLine) *CatalogBuilder {
	b.assemblyLines = append(b.assemblyLines, line)
	return b
}

func (b *CatalogBuilder) AddSolarSystem(system *SolarSystem) *CatalogBuilder {
	b.systems = append(b.systems, system)
	return b
}

func (b *CatalogBuilder) AddStation(attrs StationAttributes) *CatalogBuilder {
	b.stations = append(b.stations, attrs)
	return b
}

func (b *CatalogBuilder) AddInstallation(installationTypeID int64, lines map[shared.Activity][]int64) *CatalogBuilder {
	b.installations[installationTypeID] = lines
	return b
}

// Build resolves item variants, reaction alchemy flags and cross references.
// All problems found are joined into a single error.
func (b *CatalogBuilder) Build() (*Catalog, error) {
	var errs []error
	c := &Catalog{
		items:         make(map[int64]Item, len(b.items)),
		itemsByName:   make(map[string]int64, len(b.items)),
		reactions:     make(map[int64]*Reaction, len(b.reactions)),
		blueprints:    make(map[int64]*Blueprint, len(b.blueprints)),
		assemblyLines: make(map[int64]*AssemblyLine, len(b.assemblyLines)),
		systems:       make(map[int64]*SolarSystem, len(b.systems)),
		stations:      make(map[int64]*Station, len(b.stations)),
		installations: make(map[int64]map[shared.Activity][]int64, len(b.installations)),
	}

	blueprintByProduct := make(map[int64]int64)
	for _, attrs := range b.blueprints {
		bp, err := NewBlueprint(attrs)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c.blueprints[bp.TypeID()] = bp
		if existing, ok := blueprintByProduct[bp.ProductID()]; !ok || bp.TypeID() < existing {
			blueprintByProduct[bp.ProductID()] = bp.TypeID()
		}
	}

	reactionsByProduct := make(map[int64][]int64)
	for _, attrs := range b.reactions {
		products := make(map[int64]bool)
		for outputID := range attrs.Outputs {
			products[outputID] = true
		}
		if attrs.ProductID != 0 {
			products[attrs.ProductID] = true
		}
		for productID := range products {
			reactionsByProduct[productID] = append(reactionsByProduct[productID], attrs.TypeID)
		}
	}

	for _, entry := range b.items {
		item, err := resolveItem(entry, blueprintByProduct, reactionsByProduct)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c.items[item.TypeID()] = item
		if item.Name() != "" {
			c.itemsByName[strings.ToLower(item.Name())] = item.TypeID()
		}
	}

	for _, attrs := range b.reactions {
		alchemy := false
		for outputID := range attrs.Outputs {
			output, ok := c.items[outputID]
			if !ok {
				errs = append(errs, fmt.Errorf("reaction %d output: %w", attrs.TypeID, shared.NewNotFoundError("item", outputID)))
				continue
			}
			if output.IsReprocessable() {
				alchemy = true
			}
		}
		for inputID := range attrs.Inputs {
			if _, ok := c.items[inputID]; !ok {
				errs = append(errs, fmt.Errorf("reaction %d input: %w", attrs.TypeID, shared.NewNotFoundError("item", inputID)))
			}
		}
		r, err := NewReaction(attrs, alchemy)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c.reactions[r.TypeID()] = r
	}

	for _, line := range b.assemblyLines {
		c.assemblyLines[line.ID()] = line
	}
	for _, system := range b.systems {
		c.systems[system.ID()] = system
	}
	for _, attrs := range b.stations {
		st, err := NewStation(attrs)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c.stations[st.ID()] = st
	}
	for typeID, lines := range b.installations {
		c.installations[typeID] = lines
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to build catalog: %w", errors.Join(errs...))
	}
	return c, nil
}

func resolveItem(entry itemEntry, blueprintByProduct map[int64]int64, reactionsByProduct map[int64][]int64) (Item, error) {
	typeID := entry.attrs.TypeID
	if blueprintID, ok := blueprintByProduct[typeID]; ok {
		return NewManufacturableItem(entry.attrs, entry.marketGroupID, blueprintID)
	}
	if reactionIDs, ok := reactionsByProduct[typeID]; ok {
		return NewReactionProductItem(entry.attrs, entry.marketGroupID, reactionIDs)
	}
	if entry.marketGroupID > 0 {
		return NewSellableItem(entry.attrs, entry.marketGroupID)
	}
	return NewGenericItem(entry.attrs)
}
