package industry

import (
	"fmt"
	"math"
	"sort"

	"github.com/andrescamacho/industry-go/internal/domain/material"
	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// ItemKind tags the variant of an Item
type ItemKind int

const (
	KindGeneric ItemKind = iota
	KindSellable
	KindManufacturable
	KindReactionProduct
)

func (k ItemKind) String() string {
	switch k {
	case KindSellable:
		return "sellable"
	case KindManufacturable:
		return "manufacturable"
	case KindReactionProduct:
		return "reaction-product"
	default:
		return "generic"
	}
}

// Item is a closed set of item variants: *GenericItem, *SellableItem,
// *ManufacturableItem and *ReactionProductItem. Dispatch with a type switch.
type Item interface {
	Classified
	Name() string
	Kind() ItemKind
	Volume() float64
	PortionSize() int64
	BasePrice() float64
	IsReprocessable() bool
	ReprocessingMaterials() *material.Ledger
	ReprocessingLedger(units int64, yield, specialization float64) (*material.Ledger, error)
	sealed()
}

// ItemAttributes holds the attributes shared by every item variant
type ItemAttributes struct {
	TypeID      int64
	GroupID     int64
	CategoryID  int64
	Name        string
	Volume      float64
	PortionSize int64
	BasePrice   float64
	// ReprocessingMaterials is the material yield of one portion at 100% efficiency
	ReprocessingMaterials map[int64]float64
}

type itemBase struct {
	typeID      int64
	groupID     int64
	categoryID  int64
	name        string
	volume      float64
	portionSize int64
	basePrice   float64
	materials   *material.Ledger
}

func newItemBase(attrs ItemAttributes) (itemBase, error) {
	if attrs.TypeID <= 0 {
		return itemBase{}, shared.NewValidationError("type_id", "must be positive")
	}
	portionSize := attrs.PortionSize
	if portionSize <= 0 {
		portionSize = 1
	}
	materials, err := material.LedgerFrom(attrs.ReprocessingMaterials)
	if err != nil {
		return itemBase{}, fmt.Errorf("item %d reprocessing materials: %w", attrs.TypeID, err)
	}
	return itemBase{
		typeID:      attrs.TypeID,
		groupID:     attrs.GroupID,
		categoryID:  attrs.CategoryID,
		name:        attrs.Name,
		volume:      attrs.Volume,
		portionSize: portionSize,
		basePrice:   attrs.BasePrice,
		materials:   materials,
	}, nil
}

func (b *itemBase) TypeID() int64      { return b.typeID }
func (b *itemBase) GroupID() int64     { return b.groupID }
func (b *itemBase) CategoryID() int64  { return b.categoryID }
func (b *itemBase) Name() string       { return b.name }
func (b *itemBase) Volume() float64    { return b.volume }
func (b *itemBase) PortionSize() int64 { return b.portionSize }
func (b *itemBase) BasePrice() float64 { return b.basePrice }
func (b *itemBase) sealed()            {}

func (b *itemBase) IsReprocessable() bool {
	return !b.materials.IsEmpty()
}

// ReprocessingMaterials returns a copy of the per-portion reprocessing yield
func (b *itemBase) ReprocessingMaterials() *material.Ledger {
	return b.materials.Clone()
}

// ReprocessingLedger computes the materials recovered from reprocessing units of the item.
// Only whole portions are reprocessed. Each material is
// perPortion × portions × yield × specialization, rounded half away from zero;
// materials rounding to zero are dropped.
func (b *itemBase) ReprocessingLedger(units int64, yield, specialization float64) (*material.Ledger, error) {
	if !b.IsReprocessable() {
		return nil, shared.NewNotFoundError("reprocessing materials for item", b.typeID)
	}
	if units <= 0 {
		return nil, shared.NewInvalidQuantityError(b.typeID, float64(units))
	}
	if yield < 0 || specialization < 0 {
		return nil, shared.NewValidationError("yield", fmt.Sprintf("yield %g and specialization %g must not be negative", yield, specialization))
	}

	portions := units / b.portionSize
	out := material.NewLedger()
	for _, entry := range b.materials.Entries() {
		qty := math.Round(entry.Quantity * float64(portions) * yield * specialization)
		if qty > 0 {
			_ = out.Add(entry.ItemID, qty)
		}
	}
	return out, nil
}

// GenericItem is an item with no market or production data
type GenericItem struct {
	itemBase
}

func NewGenericItem(attrs ItemAttributes) (*GenericItem, error) {
	base, err := newItemBase(attrs)
	if err != nil {
		return nil, err
	}
	return &GenericItem{itemBase: base}, nil
}

func (i *GenericItem) Kind() ItemKind { return KindGeneric }

// SellableItem is an item traded on the market
type SellableItem struct {
	itemBase
	marketGroupID int64
}

func NewSellableItem(attrs ItemAttributes, marketGroupID int64) (*SellableItem, error) {
	base, err := newItemBase(attrs)
	if err != nil {
		return nil, err
	}
	return &SellableItem{itemBase: base, marketGroupID: marketGroupID}, nil
}

func (i *SellableItem) Kind() ItemKind       { return KindSellable }
func (i *SellableItem) MarketGroupID() int64 { return i.marketGroupID }

// ManufacturableItem is a sellable item produced by a blueprint
type ManufacturableItem struct {
	SellableItem
	blueprintID int64
}

func NewManufacturableItem(attrs ItemAttributes, marketGroupID, blueprintID int64) (*ManufacturableItem, error) {
	sellable, err := NewSellableItem(attrs, marketGroupID)
	if err != nil {
		return nil, err
	}
	return &ManufacturableItem{SellableItem: *sellable, blueprintID: blueprintID}, nil
}

func (i *ManufacturableItem) Kind() ItemKind     { return KindManufacturable }
func (i *ManufacturableItem) BlueprintID() int64 { return i.blueprintID }

// ReactionProductItem is a sellable item produced by one or more reactions
type ReactionProductItem struct {
	SellableItem
	reactionIDs []int64
}

func NewReactionProductItem(attrs ItemAttributes, marketGroupID int64, reactionIDs []int64) (*ReactionProductItem, error) {
	if len(reactionIDs) == 0 {
		return nil, shared.NewValidationError("reaction_ids", fmt.Sprintf("reaction product %d needs at least one reaction", attrs.TypeID))
	}
	sellable, err := NewSellableItem(attrs, marketGroupID)
	if err != nil {
		return nil, err
	}
	ids := append([]int64(nil), reactionIDs...)
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	return &ReactionProductItem{SellableItem: *sellable, reactionIDs: ids}, nil
}

func (i *ReactionProductItem) Kind() ItemKind { return KindReactionProduct }

// ReactionIDs returns the reactions producing this item in ascending ID order
func (i *ReactionProductItem) ReactionIDs() []int64 {
	return append([]int64(nil), i.reactionIDs...)
}

// AsSellable returns the market-facing part of an item, if it has one
func AsSellable(item Item) (*SellableItem, bool) {
	switch it := item.(type) {
	case *SellableItem:
		return it, true
	case *ManufacturableItem:
		return &it.SellableItem, true
	case *ReactionProductItem:
		return &it.SellableItem, true
	default:
		return nil, false
	}
}
