package ecs

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync/atomic"
)

var lastID atomic.Uint64

func nextID() uint64 {
	return lastID.Add(1)
}

// reserveID makes sure IDs handed out later never collide with a restored entity.
func reserveID(id uint64) {
	for {
		cur := lastID.Load()
		if cur >= id || lastID.CompareAndSwap(cur, id) {
			return
		}
	}
}

// Entity is a process-unique ID plus at most one component per kind.
//
// Entities are not safe for concurrent use; they are owned by the goroutine running the
// world.
type Entity struct {
	id         uint64
	components map[Kind]Component
	removed    bool
}

func NewEntity(components ...Component) *Entity {
	e := &Entity{
		id:         nextID(),
		components: make(map[Kind]Component, len(components)),
	}
	for _, c := range components {
		e.Add(c)
	}
	return e
}

func (e *Entity) ID() uint64 {
	return e.id
}

func (e *Entity) String() string {
	return fmt.Sprintf("entity(%d)", e.id)
}

// Add attaches c, replacing any component of the same kind.
func (e *Entity) Add(c Component) {
	c.MarkChanged()
	e.components[c.Kind()] = c
}

// Remove flags the component of the given kind for removal. It is detached once the
// broadcast has observed it.
func (e *Entity) Remove(k Kind) bool {
	c, ok := e.components[k]
	if !ok || c.IsRemoved() {
		return false
	}
	c.MarkRemoved()
	return true
}

// Component returns the live component of the given kind.
func (e *Entity) Component(k Kind) (Component, bool) {
	c, ok := e.components[k]
	if !ok || c.IsRemoved() {
		return nil, false
	}
	return c, true
}

// Has reports whether every kind is present and not flagged for removal.
func (e *Entity) Has(kinds ...Kind) bool {
	for _, k := range kinds {
		if _, ok := e.Component(k); !ok {
			return false
		}
	}
	return true
}

// Len counts attached components, including those awaiting detachment.
func (e *Entity) Len() int {
	return len(e.components)
}

// Components returns live components ordered by kind.
func (e *Entity) Components() []Component {
	out := make([]Component, 0, len(e.components))
	for _, c := range e.components {
		if !c.IsRemoved() {
			out = append(out, c)
		}
	}
	sortByKind(out)
	return out
}

// ModifiedComponents returns the live components changed since the last clear.
func (e *Entity) ModifiedComponents() []Component {
	var out []Component
	for _, c := range e.components {
		if !c.IsRemoved() && c.tracker().changed() {
			out = append(out, c)
		}
	}
	sortByKind(out)
	return out
}

// ClearModifiedComponents returns the modified components and resets their change flags.
// Only the end-of-tick broadcast may call it.
func (e *Entity) ClearModifiedComponents() []Component {
	out := e.ModifiedComponents()
	for _, c := range out {
		c.tracker().clearChanges()
	}
	return out
}

// ClearRemovedComponents detaches every component flagged for removal and returns their
// kinds. Only the end-of-tick broadcast may call it.
func (e *Entity) ClearRemovedComponents() []Kind {
	var out []Kind
	for k, c := range e.components {
		if c.IsRemoved() {
			out = append(out, k)
			delete(e.components, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MarkRemoved soft-deletes the entity. Its location evicts it at the end of the tick.
func (e *Entity) MarkRemoved() {
	e.removed = true
}

func (e *Entity) Removed() bool {
	return e.removed
}

// ClearRemoved resets the soft-delete flag once the entity has been evicted or restored.
func (e *Entity) ClearRemoved() {
	e.removed = false
}

// Type returns the entity type, or the empty type if it has none.
func (e *Entity) Type() EntityType {
	if t, ok := Get[*Type](e); ok {
		return t.Type()
	}
	return ""
}

// Name returns the display name, or the empty string.
func (e *Entity) Name() string {
	if n, ok := Get[*Name](e); ok {
		return n.Name()
	}
	return ""
}

// Get returns the live component of type T.
func Get[T Component](e *Entity) (T, bool) {
	var zero T
	c, ok := e.Component(zero.Kind())
	if !ok {
		return zero, false
	}
	t, ok := c.(T)
	return t, ok
}

type entityJSON struct {
	ID         uint64                   `json:"id"`
	Components map[Kind]json.RawMessage `json:"components"`
}

func (e *Entity) MarshalJSON() ([]byte, error) {
	raw, err := MarshalComponents(e.Components())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e, err)
	}
	return json.Marshal(entityJSON{ID: e.id, Components: raw})
}

// UnmarshalJSON restores an entity with its original ID.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var w entityJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.ID == 0 {
		return fmt.Errorf("entity id must be set")
	}

	components := make(map[Kind]Component, len(w.Components))
	for k, raw := range w.Components {
		c, err := UnmarshalComponent(k, raw)
		if err != nil {
			return fmt.Errorf("entity(%d) %s: %w", w.ID, k, err)
		}
		components[k] = c
	}

	reserveID(w.ID)
	e.id = w.ID
	e.components = components
	e.removed = false
	return nil
}

func sortByKind(cs []Component) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Kind() < cs[j].Kind() })
}
