package material

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/andrescamacho/industry-go/internal/domain/shared"
)

// Epsilon is the smallest quantity a ledger keeps. Subtracting down to or below it removes the entry.
const Epsilon = 1e-9

// Entry is a single (item, quantity) pair of a ledger
type Entry struct {
	ItemID   int64   `json:"item_id"`
	Quantity float64 `json:"quantity"`
}

// Ledger is a multiset of item quantities.
//
// Invariant: every stored quantity is > 0. Operations that reduce an entry to zero remove it.
// A Ledger is owned by the computation that created it; hand out Clone() copies to callers
// that must not observe further mutation. The zero value is an empty ledger ready for use.
type Ledger struct {
	quantities map[int64]float64
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{quantities: make(map[int64]float64)}
}

// LedgerFrom builds a ledger from a map, rejecting non-positive quantities
func LedgerFrom(quantities map[int64]float64) (*Ledger, error) {
	l := NewLedger()
	for _, itemID := range sortedKeys(quantities) {
		if err := l.Add(itemID, quantities[itemID]); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// MustLedger is LedgerFrom for literals known to be valid; it panics otherwise
func MustLedger(quantities map[int64]float64) *Ledger {
	l, err := LedgerFrom(quantities)
	if err != nil {
		panic(err)
	}
	return l
}

func validQuantity(qty float64) bool {
	return qty > 0 && !math.IsNaN(qty) && !math.IsInf(qty, 0)
}

// Add increments the quantity of an item, creating the entry if needed
func (l *Ledger) Add(itemID int64, qty float64) error {
	if !validQuantity(qty) {
		return shared.NewInvalidQuantityError(itemID, qty)
	}
	if l.quantities == nil {
		l.quantities = make(map[int64]float64)
	}
	l.quantities[itemID] += qty
	return nil
}

// Subtract decrements the quantity of an item. Subtracting more than is present
// exhausts the entry instead of going negative; subtracting an absent item is a no-op.
func (l *Ledger) Subtract(itemID int64, qty float64) error {
	if !validQuantity(qty) {
		return shared.NewInvalidQuantityError(itemID, qty)
	}
	current, ok := l.quantities[itemID]
	if !ok {
		return nil
	}
	remaining := current - qty
	if remaining <= Epsilon {
		delete(l.quantities, itemID)
		return nil
	}
	l.quantities[itemID] = remaining
	return nil
}

// Remove deletes an item's entry entirely
func (l *Ledger) Remove(itemID int64) {
	delete(l.quantities, itemID)
}

// Scale multiplies every quantity by factor. Factor must be positive; 1 is a no-op.
func (l *Ledger) Scale(factor float64) error {
	if !validQuantity(factor) {
		return shared.NewInvalidQuantityError(0, factor)
	}
	if factor == 1 {
		return nil
	}
	for itemID, qty := range l.quantities {
		scaled := qty * factor
		if scaled <= 0 {
			delete(l.quantities, itemID)
			continue
		}
		l.quantities[itemID] = scaled
	}
	return nil
}

// Merge adds every entry of other into l. Merging nil is a no-op.
func (l *Ledger) Merge(other *Ledger) {
	if other == nil {
		return
	}
	for _, itemID := range other.ItemIDs() {
		// other's invariant guarantees a positive quantity
		_ = l.Add(itemID, other.quantities[itemID])
	}
}

// SymmetricDifference cancels quantities present on both sides: for each item in
// both a and b, min(a[i], b[i]) is subtracted from each. Both ledgers are mutated.
// The returned ledger holds the cancelled amounts, so merging it back into a and b
// restores their original contents.
func SymmetricDifference(a, b *Ledger) *Ledger {
	cancelled := NewLedger()
	if a == nil || b == nil {
		return cancelled
	}
	for _, itemID := range a.ItemIDs() {
		bQty, ok := b.quantities[itemID]
		if !ok {
			continue
		}
		m := math.Min(a.quantities[itemID], bQty)
		_ = a.Subtract(itemID, m)
		_ = b.Subtract(itemID, m)
		_ = cancelled.Add(itemID, m)
	}
	return cancelled
}

// Clone returns a deep copy
func (l *Ledger) Clone() *Ledger {
	c := NewLedger()
	if l == nil {
		return c
	}
	for itemID, qty := range l.quantities {
		c.quantities[itemID] = qty
	}
	return c
}

// Quantity returns the quantity of an item, 0 if absent
func (l *Ledger) Quantity(itemID int64) float64 {
	if l == nil {
		return 0
	}
	return l.quantities[itemID]
}

func (l *Ledger) Has(itemID int64) bool {
	if l == nil {
		return false
	}
	_, ok := l.quantities[itemID]
	return ok
}

func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.quantities)
}

func (l *Ledger) IsEmpty() bool {
	return l.Len() == 0
}

// ItemIDs returns the item IDs in ascending order
func (l *Ledger) ItemIDs() []int64 {
	if l == nil {
		return []int64{}
	}
	return sortedKeys(l.quantities)
}

// Entries returns the ledger contents in ascending item ID order
func (l *Ledger) Entries() []Entry {
	ids := l.ItemIDs()
	entries := make([]Entry, 0, len(ids))
	for _, itemID := range ids {
		entries = append(entries, Entry{ItemID: itemID, Quantity: l.quantities[itemID]})
	}
	return entries
}

// Total sums all quantities in ascending item ID order
func (l *Ledger) Total() float64 {
	total := 0.0
	for _, entry := range l.Entries() {
		total += entry.Quantity
	}
	return total
}

// ToMap returns a copy of the underlying quantities
func (l *Ledger) ToMap() map[int64]float64 {
	out := make(map[int64]float64, l.Len())
	if l == nil {
		return out
	}
	for itemID, qty := range l.quantities {
		out[itemID] = qty
	}
	return out
}

// Equal reports whether both ledgers hold exactly the same entries
func (l *Ledger) Equal(other *Ledger) bool {
	return l.EqualWithin(other, 0)
}

// EqualWithin reports whether both ledgers hold the same items with quantities
// differing by at most tolerance
func (l *Ledger) EqualWithin(other *Ledger, tolerance float64) bool {
	if l.Len() != other.Len() {
		return false
	}
	for _, itemID := range l.ItemIDs() {
		if !other.Has(itemID) {
			return false
		}
		if math.Abs(l.quantities[itemID]-other.quantities[itemID]) > tolerance {
			return false
		}
	}
	return true
}

func (l *Ledger) String() string {
	return fmt.Sprintf("%v", l.Entries())
}

func (l *Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Entries())
}

func (l *Ledger) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	l.quantities = make(map[int64]float64, len(entries))
	for _, entry := range entries {
		if err := l.Add(entry.ItemID, entry.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[int64]float64) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
