package storage

import (
	"testing"
	"time"

	"github.com/TomCrypto/Team-208-s-Game/internal/ecs"
	"github.com/TomCrypto/Team-208-s-Game/internal/game"
	"github.com/pixil98/go-testutil"
)

type worldFixture struct {
	world  *game.World
	zombie *ecs.Entity
	bullet *ecs.Entity
	player *ecs.Entity
}

func newWorldFixture(t *testing.T) worldFixture {
	t.Helper()

	w := game.NewWorld(game.WithSeed(1))
	start := game.NewLocation(game.StartLocationName,
		game.WithTag("start"),
		game.WithSpawnPoints(game.SpawnPoint{X: 0.5, Y: 0.25}),
	)
	keyRoom := game.NewLocation(game.KeyRoomName, game.WithPersistent(true))

	zombie := ecs.NewEntity(ecs.NewType(ecs.TypeZombie), ecs.NewPosition(0.2, 0.3), ecs.NewHealth(50))
	bullet := ecs.NewEntity(ecs.NewType(ecs.TypeBullet), ecs.NewPosition(0.4, 0.4))
	player := ecs.NewEntity(ecs.NewType(ecs.TypePlayer), ecs.NewName("alice"), ecs.NewHealth(100))
	start.Add(zombie)
	start.Add(bullet)
	start.Add(player)
	start.SpawnPoints()[0].Occupant = zombie.ID()
	bullet.MarkRemoved()

	for _, l := range []*game.Location{start, keyRoom} {
		if err := w.AddLocation(l); err != nil {
			t.Fatalf("adding location: %v", err)
		}
	}
	w.SavePlayer("alice", start, player)
	w.SetNow(4200)

	return worldFixture{world: w, zombie: zombie, bullet: bullet, player: player}
}

func TestNewSnapshot(t *testing.T) {
	fx := newWorldFixture(t)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	snap, err := NewSnapshot(fx.world, at)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	testutil.AssertEqual(t, "locations", len(snap.Locations), 2)
	start := snap.Locations[0]
	testutil.AssertEqual(t, "first location", start.Name, game.StartLocationName)
	testutil.AssertEqual(t, "tag", start.Tag, "start")
	testutil.AssertEqual(t, "live entities", len(start.Entities), 1)
	testutil.AssertEqual(t, "kept entity", start.Entities[0].ID(), fx.zombie.ID())
	testutil.AssertEqual(t, "spawn occupant", start.Spawns[0].Occupant, fx.zombie.ID())
	testutil.AssertEqual(t, "persistent", snap.Locations[1].Persistent, true)

	testutil.AssertEqual(t, "players", len(snap.Players), 1)
	testutil.AssertEqual(t, "player location", snap.Players["alice"].Location, game.StartLocationName)

	clock, _ := snap.Meta.Clock()
	savedAt, _ := snap.Meta.SavedAt()
	testutil.AssertEqual(t, "clock", clock, int64(4200))
	testutil.AssertEqual(t, "saved at", savedAt.Equal(at), true)
}

func TestSnapshot_World(t *testing.T) {
	fx := newWorldFixture(t)
	snap, err := NewSnapshot(fx.world, time.Now())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	w, err := snap.World(game.WithSeed(2))
	if err != nil {
		t.Fatalf("world: %v", err)
	}

	testutil.AssertEqual(t, "clock", w.Now(), int64(4200))
	testutil.AssertEqual(t, "start location", w.StartLocation().Name(), game.StartLocationName)
	testutil.AssertEqual(t, "start entities", w.StartLocation().Len(), 1)
	testutil.AssertEqual(t, "saved player", w.HasSavedPlayer("alice"), true)

	keyRoom, ok := w.Location(game.KeyRoomName)
	testutil.AssertEqual(t, "key room", ok, true)
	testutil.AssertEqual(t, "key room persistent", keyRoom.Persistent(), true)
}

func TestSnapshot_Validate(t *testing.T) {
	tests := map[string]struct {
		snap   Snapshot
		expErr string
	}{
		"no locations": {
			snap:   Snapshot{},
			expErr: "at least one location",
		},
		"unnamed location": {
			snap:   Snapshot{Locations: []LocationRecord{{}}},
			expErr: "location name must be set",
		},
		"duplicate location": {
			snap:   Snapshot{Locations: []LocationRecord{{Name: "a"}, {Name: "a"}}},
			expErr: "duplicate location",
		},
		"null entity": {
			snap:   Snapshot{Locations: []LocationRecord{{Name: "a", Entities: []*ecs.Entity{nil}}}},
			expErr: "is null",
		},
		"player without entity": {
			snap: Snapshot{
				Locations: []LocationRecord{{Name: "a"}},
				Players:   map[string]PlayerEntry{"bob": {Location: "a"}},
			},
			expErr: "has no entity",
		},
		"bad clock": {
			snap: Snapshot{
				Meta:      Meta{MetaClock: []byte(`"soon"`)},
				Locations: []LocationRecord{{Name: "a"}},
			},
			expErr: "unmarshal meta",
		},
		"valid": {
			snap: Snapshot{Locations: []LocationRecord{{Name: "a"}}},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.snap.Validate()
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
