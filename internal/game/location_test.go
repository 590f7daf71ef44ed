package game

import (
	"testing"

	"github.com/TomCrypto/Team-208-s-Game/internal/ecs"
	"github.com/pixil98/go-testutil"
)

func TestLocation_ClearRemovedEntities(t *testing.T) {
	loc := NewLocation("Room 1", WithSpawnPoints(SpawnPoint{X: 0.2, Y: 0.2}, SpawnPoint{X: 0.8, Y: 0.8}))
	zombie := ecs.NewEntity(ecs.NewType(ecs.TypeZombie))
	wall := ecs.NewEntity(ecs.NewType(ecs.TypeWall))
	loc.Add(zombie)
	loc.Add(wall)
	loc.SpawnPoints()[0].Occupant = zombie.ID()

	testutil.AssertEqual(t, "nothing removed", len(loc.ClearRemovedEntities()), 0)

	zombie.MarkRemoved()
	_, ok := loc.Entity(zombie.ID())
	testutil.AssertEqual(t, "removed entity hidden", ok, false)
	testutil.AssertEqual(t, "still stored", loc.Len(), 2)

	got := loc.ClearRemovedEntities()
	testutil.AssertEqual(t, "evicted", len(got), 1)
	testutil.AssertEqual(t, "evicted zombie", got[0] == zombie, true)
	testutil.AssertEqual(t, "flag cleared", zombie.Removed(), false)
	testutil.AssertEqual(t, "spawn freed", loc.SpawnPoints()[0].Occupied(), false)
	testutil.AssertEqual(t, "remaining", loc.Len(), 1)
	testutil.AssertEqual(t, "idempotent", len(loc.ClearRemovedEntities()), 0)
}

func TestLocation_Add(t *testing.T) {
	loc := NewLocation(StreetsName)
	item := ecs.NewEntity(ecs.NewType(ecs.TypeItem))
	loc.Add(item)
	item.MarkRemoved()

	// Re-adding within the same tick revives the entity instead of duplicating it.
	loc.Add(item)
	testutil.AssertEqual(t, "len", loc.Len(), 1)
	testutil.AssertEqual(t, "revived", item.Removed(), false)
	testutil.AssertEqual(t, "evicted", len(loc.ClearRemovedEntities()), 0)
}

func TestLocation_HasPlayers(t *testing.T) {
	tests := map[string]struct {
		entities []*ecs.Entity
		remove   bool
		exp      bool
	}{
		"empty": {
			exp: false,
		},
		"zombie only": {
			entities: []*ecs.Entity{ecs.NewEntity(ecs.NewType(ecs.TypeZombie))},
			exp:      false,
		},
		"player": {
			entities: []*ecs.Entity{newPlayer("alice")},
			exp:      true,
		},
		"player flagged removed": {
			entities: []*ecs.Entity{newPlayer("alice")},
			remove:   true,
			exp:      false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			loc := NewLocation(StreetsName)
			for _, e := range tt.entities {
				loc.Add(e)
				if tt.remove {
					e.MarkRemoved()
				}
			}
			testutil.AssertEqual(t, "has players", loc.HasPlayers(), tt.exp)
			testutil.AssertEqual(t, "players", len(loc.Players()) > 0, tt.exp)
		})
	}
}
