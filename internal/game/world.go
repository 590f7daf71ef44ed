package game

import (
	"log/slog"
	"math/rand/v2"

	"github.com/TomCrypto/Team-208-s-Game/internal/ecs"
)

const (
	StartLocationName = "Starting location"
	KeyRoomName       = "Key Room"
	StreetsName       = "Streets"
)

// System is a per-tick transformation over the entities of one location.
type System interface {
	Process(w *World, loc *Location, dt float64)
}

// PlayerRecord is a disconnected player waiting to be restored on login.
type PlayerRecord struct {
	Location string
	Player   *ecs.Entity
}

// World owns every location, the systems run over them each tick and the players saved
// on disconnect. A World is only ever touched from the goroutine driving ticks.
type World struct {
	locations map[string]*Location
	order     []string
	systems   []System
	saved     map[string]PlayerRecord
	clock     int64
	rng       *rand.Rand
}

type WorldOpt func(*World)

// WithSystems sets the systems in the order they run each tick.
func WithSystems(systems ...System) WorldOpt {
	return func(w *World) {
		w.systems = systems
	}
}

func WithSeed(seed uint64) WorldOpt {
	return func(w *World) {
		w.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

func NewWorld(opts ...WorldOpt) *World {
	w := &World{
		locations: map[string]*Location{},
		saved:     map[string]PlayerRecord{},
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *World) AddLocation(l *Location) error {
	if _, ok := w.locations[l.Name()]; ok {
		return ErrLocationExists
	}
	w.locations[l.Name()] = l
	w.order = append(w.order, l.Name())
	return nil
}

func (w *World) Location(name string) (*Location, bool) {
	l, ok := w.locations[name]
	return l, ok
}

// Locations returns every location in the order they were added.
func (w *World) Locations() []*Location {
	out := make([]*Location, 0, len(w.order))
	for _, name := range w.order {
		out = append(out, w.locations[name])
	}
	return out
}

// StartLocation is where new players spawn. Nil if the world has none.
func (w *World) StartLocation() *Location {
	return w.locations[StartLocationName]
}

func (w *World) SetSystems(systems ...System) {
	w.systems = systems
}

func (w *World) Systems() []System {
	return w.systems
}

// Process runs every system, in order, over one location.
func (w *World) Process(loc *Location, dt float64) {
	for _, s := range w.systems {
		s.Process(w, loc, dt)
	}
}

// Advance moves the game clock forward by dt seconds.
func (w *World) Advance(dt float64) {
	w.clock += int64(dt * 1000)
}

// Now is the game clock in milliseconds.
func (w *World) Now() int64 {
	return w.clock
}

func (w *World) SetNow(ms int64) {
	w.clock = ms
}

func (w *World) Rand() *rand.Rand {
	return w.rng
}

// SavePlayer records a disconnecting player and flags its entity for removal so the next
// broadcast deletes it from its location.
func (w *World) SavePlayer(name string, loc *Location, player *ecs.Entity) {
	if _, ok := w.saved[name]; ok {
		slog.Warn("overwriting saved player", "player", name)
	}
	locName := ""
	if loc != nil {
		locName = loc.Name()
	}
	w.saved[name] = PlayerRecord{Location: locName, Player: player}
	player.MarkRemoved()
}

// RestoreSavedPlayer inserts a record without touching the entity. Used when loading a
// persisted world.
func (w *World) RestoreSavedPlayer(name string, rec PlayerRecord) {
	w.saved[name] = rec
}

// LoadPlayer removes the saved record for name and places its entity back in the record's
// location. Players whose location no longer exists are returned to the start location.
func (w *World) LoadPlayer(name string) (*Location, *ecs.Entity, error) {
	rec, ok := w.saved[name]
	if !ok {
		return nil, nil, ErrPlayerNotFound
	}

	loc, ok := w.locations[rec.Location]
	if !ok {
		loc = w.StartLocation()
		if loc == nil {
			return nil, nil, ErrLocationNotFound
		}
		slog.Warn("saved location missing, using start location", "player", name, "location", rec.Location)
	}

	delete(w.saved, name)
	loc.Add(rec.Player)
	return loc, rec.Player, nil
}

func (w *World) HasSavedPlayer(name string) bool {
	_, ok := w.saved[name]
	return ok
}

func (w *World) SavedPlayer(name string) (PlayerRecord, bool) {
	rec, ok := w.saved[name]
	return rec, ok
}

// SavedPlayers returns a copy of the saved-player map.
func (w *World) SavedPlayers() map[string]PlayerRecord {
	out := make(map[string]PlayerRecord, len(w.saved))
	for k, v := range w.saved {
		out[k] = v
	}
	return out
}
