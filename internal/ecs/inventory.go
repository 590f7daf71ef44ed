package ecs

import (
	"encoding/json"
	"fmt"
)

// Inventory holds item entities up to a total weight and an item count.
type Inventory struct {
	Tracker
	maxSize  int
	maxItems int
	items    []*Entity
}

func NewInventory(maxSize, maxItems int) *Inventory {
	return &Inventory{maxSize: maxSize, maxItems: maxItems}
}

func (*Inventory) Kind() Kind {
	return KindInventory
}

func (i *Inventory) MaxSize() int {
	return i.maxSize
}

func (i *Inventory) MaxItems() int {
	return i.maxItems
}

func (i *Inventory) SetMaxSize(n int) {
	i.maxSize = n
	i.MarkChanged()
}

func (i *Inventory) Len() int {
	return len(i.items)
}

// Items returns a copy of the held items in insertion order.
func (i *Inventory) Items() []*Entity {
	out := make([]*Entity, len(i.items))
	copy(out, i.items)
	return out
}

// Weight is the sum of the sizes of the held items.
func (i *Inventory) Weight() int {
	total := 0
	for _, it := range i.items {
		if s, ok := Get[*Size](it); ok {
			total += s.Size()
		}
	}
	return total
}

// Fits reports why e could not be added, without changing the inventory.
func (i *Inventory) Fits(e *Entity) error {
	s, ok := Get[*Size](e)
	if !ok {
		return ErrNoSize
	}
	if len(i.items) >= i.maxItems {
		return ErrInventoryFull
	}
	if i.Weight()+s.Size() > i.maxSize {
		return ErrTooHeavy
	}
	return nil
}

// Add stores e if it fits. A rejected add leaves the inventory untouched.
func (i *Inventory) Add(e *Entity) error {
	if err := i.Fits(e); err != nil {
		return err
	}
	i.items = append(i.items, e)
	i.MarkChanged()
	return nil
}

func (i *Inventory) Get(id uint64) (*Entity, bool) {
	for _, it := range i.items {
		if it.ID() == id {
			return it, true
		}
	}
	return nil, false
}

// Remove takes the item with the given ID out of the inventory.
func (i *Inventory) Remove(id uint64) (*Entity, error) {
	for idx, it := range i.items {
		if it.ID() == id {
			i.items = append(i.items[:idx:idx], i.items[idx+1:]...)
			i.MarkChanged()
			return it, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrItemNotFound, id)
}

// FindKey returns a held key that opens the named exit.
func (i *Inventory) FindKey(exit string) (*Entity, bool) {
	for _, it := range i.items {
		if it.Type() != TypeKey {
			continue
		}
		if x, ok := Get[*Exit](it); ok && x.Exit() == exit {
			return it, true
		}
	}
	return nil, false
}

type inventoryJSON struct {
	MaxSize  int       `json:"max_size"`
	MaxItems int       `json:"max_items"`
	Items    []*Entity `json:"items"`
}

func (i *Inventory) MarshalJSON() ([]byte, error) {
	items := i.items
	if items == nil {
		items = []*Entity{}
	}
	return json.Marshal(inventoryJSON{MaxSize: i.maxSize, MaxItems: i.maxItems, Items: items})
}

func (i *Inventory) UnmarshalJSON(data []byte) error {
	var w inventoryJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.MaxSize < 0 || w.MaxItems < 0 {
		return fmt.Errorf("%w: inventory limits must not be negative", ErrInvalidComponent)
	}
	i.maxSize, i.maxItems, i.items = w.MaxSize, w.MaxItems, w.Items
	i.MarkChanged()
	return nil
}
