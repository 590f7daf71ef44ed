package storage

import (
	"errors"
	"fmt"
	"time"

	goerrors "github.com/pixil98/go-errors"

	"github.com/TomCrypto/Team-208-s-Game/internal/ecs"
	"github.com/TomCrypto/Team-208-s-Game/internal/game"
)

// SnapshotID names the single world document a store holds.
const SnapshotID Identifier = "world"

var ErrNoSnapshot = errors.New("no snapshot saved")

// Persistence saves and restores whole worlds.
type Persistence interface {
	Save(snap *Snapshot) error
	Load() (*Snapshot, error)
	Close() error
}

type SpawnRecord struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Occupant uint64  `json:"occupant,omitempty"`
}

type LocationRecord struct {
	Name       string        `json:"name"`
	Tag        string        `json:"tag,omitempty"`
	Persistent bool          `json:"persistent,omitempty"`
	Spawns     []SpawnRecord `json:"spawns,omitempty"`
	Entities   []*ecs.Entity `json:"entities"`
}

func (l *LocationRecord) Validate() error {
	el := goerrors.NewErrorList()

	if l.Name == "" {
		el.Add(fmt.Errorf("location name must be set"))
	}
	for i, e := range l.Entities {
		if e == nil {
			el.Add(fmt.Errorf("location %q: entity %d is null", l.Name, i))
		}
	}

	return el.Err()
}

type PlayerEntry struct {
	Location string      `json:"location"`
	Player   *ecs.Entity `json:"player"`
}

// Snapshot is the persisted form of a world: its locations with their live entities and the
// players saved on disconnect.
type Snapshot struct {
	Meta      Meta                   `json:"meta,omitempty"`
	Locations []LocationRecord       `json:"locations"`
	Players   map[string]PlayerEntry `json:"players,omitempty"`
}

func (s *Snapshot) Validate() error {
	el := goerrors.NewErrorList()

	if len(s.Locations) == 0 {
		el.Add(fmt.Errorf("at least one location is required"))
	}

	seen := map[string]bool{}
	for i := range s.Locations {
		l := &s.Locations[i]
		el.Add(l.Validate())
		if seen[l.Name] {
			el.Add(fmt.Errorf("duplicate location %q", l.Name))
		}
		seen[l.Name] = true
	}

	for name, p := range s.Players {
		if name == "" {
			el.Add(fmt.Errorf("saved player name must be set"))
		}
		if p.Player == nil {
			el.Add(fmt.Errorf("saved player %q has no entity", name))
		}
	}

	if _, err := s.Meta.Clock(); err != nil {
		el.Add(err)
	}

	return el.Err()
}

// NewSnapshot captures w. Entities flagged for removal are left out.
func NewSnapshot(w *game.World, now time.Time) (*Snapshot, error) {
	snap := &Snapshot{
		Players: map[string]PlayerEntry{},
	}
	if err := snap.Meta.Set(MetaClock, w.Now()); err != nil {
		return nil, err
	}
	if err := snap.Meta.Set(MetaSavedAt, now.UTC()); err != nil {
		return nil, err
	}

	for _, loc := range w.Locations() {
		rec := LocationRecord{
			Name:       loc.Name(),
			Tag:        loc.Tag(),
			Persistent: loc.Persistent(),
			Entities:   loc.Live(),
		}
		for _, sp := range loc.SpawnPoints() {
			rec.Spawns = append(rec.Spawns, SpawnRecord{X: sp.X, Y: sp.Y, Occupant: sp.Occupant})
		}
		snap.Locations = append(snap.Locations, rec)
	}

	for name, p := range w.SavedPlayers() {
		snap.Players[name] = PlayerEntry{Location: p.Location, Player: p.Player}
	}

	return snap, nil
}

// World rebuilds the world the snapshot was taken from.
func (s *Snapshot) World(opts ...game.WorldOpt) (*game.World, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validating snapshot: %w", err)
	}

	w := game.NewWorld(opts...)
	for _, rec := range s.Locations {
		spawns := make([]game.SpawnPoint, 0, len(rec.Spawns))
		for _, sp := range rec.Spawns {
			spawns = append(spawns, game.SpawnPoint{X: sp.X, Y: sp.Y, Occupant: sp.Occupant})
		}

		loc := game.NewLocation(rec.Name,
			game.WithTag(rec.Tag),
			game.WithPersistent(rec.Persistent),
			game.WithSpawnPoints(spawns...),
		)
		for _, e := range rec.Entities {
			loc.Add(e)
		}
		if err := w.AddLocation(loc); err != nil {
			return nil, fmt.Errorf("restoring %q: %w", rec.Name, err)
		}
	}

	for name, p := range s.Players {
		w.RestoreSavedPlayer(name, game.PlayerRecord{Location: p.Location, Player: p.Player})
	}

	clock, err := s.Meta.Clock()
	if err != nil {
		return nil, err
	}
	w.SetNow(clock)

	return w, nil
}
