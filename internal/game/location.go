package game

import (
	"sort"

	"github.com/TomCrypto/Team-208-s-Game/internal/ecs"
)

// SpawnPoint is a location-relative coordinate where population logic may place a hostile
// or NPC. It is occupied while the entity spawned there lives.
type SpawnPoint struct {
	X, Y     float64
	Occupant uint64
}

func (s *SpawnPoint) Occupied() bool {
	return s.Occupant != 0
}

// Location groups the entities that share a map. Entities are keyed by ID so soft-deleted
// entities stay addressable until the end-of-tick sweep.
type Location struct {
	name       string
	tag        string
	persistent bool
	spawns     []*SpawnPoint
	entities   map[uint64]*ecs.Entity
}

type LocationOpt func(*Location)

// WithTag sets the presentation tag clients use to pick a map model.
func WithTag(tag string) LocationOpt {
	return func(l *Location) {
		l.tag = tag
	}
}

// WithPersistent keeps hostiles and NPCs alive when the last player leaves.
func WithPersistent(p bool) LocationOpt {
	return func(l *Location) {
		l.persistent = p
	}
}

func WithSpawnPoints(points ...SpawnPoint) LocationOpt {
	return func(l *Location) {
		for _, p := range points {
			l.spawns = append(l.spawns, &SpawnPoint{X: p.X, Y: p.Y, Occupant: p.Occupant})
		}
	}
}

func NewLocation(name string, opts ...LocationOpt) *Location {
	l := &Location{
		name:     name,
		entities: map[uint64]*ecs.Entity{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Location) Name() string               { return l.name }
func (l *Location) Tag() string                { return l.tag }
func (l *Location) Persistent() bool           { return l.persistent }
func (l *Location) SpawnPoints() []*SpawnPoint { return l.spawns }
func (l *Location) Len() int                   { return len(l.entities) }

// Add places e in the location. An entity still flagged for removal is revived.
func (l *Location) Add(e *ecs.Entity) {
	e.ClearRemoved()
	l.entities[e.ID()] = e
}

// Remove detaches an entity immediately. Callers moving an entity to another location
// must add it there themselves.
func (l *Location) Remove(id uint64) (*ecs.Entity, bool) {
	e, ok := l.entities[id]
	if ok {
		delete(l.entities, id)
	}
	return e, ok
}

// Entity returns the entity with the given ID unless it is flagged for removal.
func (l *Location) Entity(id uint64) (*ecs.Entity, bool) {
	e, ok := l.entities[id]
	if !ok || e.Removed() {
		return nil, false
	}
	return e, true
}

// Entities returns a snapshot of every entity, ordered by ID. Entities flagged for removal
// are included.
func (l *Location) Entities() []*ecs.Entity {
	out := make([]*ecs.Entity, 0, len(l.entities))
	for _, e := range l.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Live returns the entities not flagged for removal, ordered by ID.
func (l *Location) Live() []*ecs.Entity {
	all := l.Entities()
	out := all[:0]
	for _, e := range all {
		if !e.Removed() {
			out = append(out, e)
		}
	}
	return out
}

func (l *Location) Players() []*ecs.Entity {
	var out []*ecs.Entity
	for _, e := range l.Live() {
		if e.Type() == ecs.TypePlayer {
			out = append(out, e)
		}
	}
	return out
}

func (l *Location) HasPlayers() bool {
	for _, e := range l.entities {
		if !e.Removed() && e.Type() == ecs.TypePlayer {
			return true
		}
	}
	return false
}

// ClearRemovedEntities evicts every entity flagged for removal, frees the spawn points
// they occupied and returns them ordered by ID.
func (l *Location) ClearRemovedEntities() []*ecs.Entity {
	var out []*ecs.Entity
	for id, e := range l.entities {
		if !e.Removed() {
			continue
		}
		delete(l.entities, id)
		e.ClearRemoved()
		out = append(out, e)

		for _, sp := range l.spawns {
			if sp.Occupant == id {
				sp.Occupant = 0
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
