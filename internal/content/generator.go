package content

import (
	"fmt"
	"math/rand/v2"

	"github.com/TomCrypto/Team-208-s-Game/internal/ecs"
	"github.com/TomCrypto/Team-208-s-Game/internal/game"
)

const (
	TagRoom   = "room"
	TagStreet = "street"

	randomRooms = 4
)

// Generator builds the starting world topology: the starting location behind a locked
// door, the streets, a handful of random rooms and the key room.
type Generator struct {
	f    *Factory
	seed uint64
}

func NewGenerator(f *Factory, seed uint64) *Generator {
	return &Generator{f: f, seed: seed}
}

func (g *Generator) GenerateDefaultWorld() (*game.World, error) {
	w := game.NewWorld(game.WithSeed(g.seed))
	rng := w.Rand()

	start := g.startingLocation(rng)
	streets := game.NewLocation(game.StreetsName,
		game.WithTag(TagStreet),
		game.WithSpawnPoints(
			game.SpawnPoint{X: 0.5, Y: 0.3},
			game.SpawnPoint{X: 0.5, Y: 0.7},
		),
	)
	keyRoom := g.keyRoom()

	start.Add(g.f.Portal(game.StreetsName, true, 0.5, 0.93, 0.5, 0.1))
	streets.Add(g.f.Portal(game.StartLocationName, false, 0.5, 0.05, 0.5, 0.85))

	// Rooms line the two sides of the street; the key room takes the last east slot.
	slots := [][2]float64{{0.07, 0.25}, {0.07, 0.75}, {0.93, 0.25}, {0.93, 0.5}}
	names := map[string]bool{}
	rooms := make([]*game.Location, 0, randomRooms)
	for i := 0; i < randomRooms; i++ {
		name := randomRoomName(rng, names)
		room := g.randomRoom(name)
		sx, sy := slots[i][0], slots[i][1]
		streets.Add(g.f.Portal(name, false, sx, sy, 0.5, 0.85))
		room.Add(g.f.Portal(game.StreetsName, false, 0.5, 0.93, sx, sy+0.06))
		rooms = append(rooms, room)
	}
	streets.Add(g.f.Portal(game.KeyRoomName, false, 0.93, 0.75, 0.5, 0.85))
	keyRoom.Add(g.f.Portal(game.StreetsName, false, 0.5, 0.93, 0.93, 0.69))

	for _, l := range append([]*game.Location{start, streets, keyRoom}, rooms...) {
		if err := w.AddLocation(l); err != nil {
			return nil, fmt.Errorf("adding %s: %w", l.Name(), err)
		}
	}
	return w, nil
}

func (g *Generator) startingLocation(rng *rand.Rand) *game.Location {
	loc := game.NewLocation(game.StartLocationName,
		game.WithTag(TagRoom),
		game.WithSpawnPoints(
			game.SpawnPoint{X: 0.8, Y: 0.2},
			game.SpawnPoint{X: 0.1, Y: 0.2},
		),
	)
	g.addBoundary(loc)

	cheese := g.f.Item("Cheese")
	cheese.Add(ecs.NewText("This is a tasty piece of cheddar"))
	loc.Add(g.f.Container(0.1, 0.1,
		g.f.Money(150),
		g.f.RandomWeapon(rng),
		g.f.Key(game.StreetsName),
		g.f.Potion(),
		cheese,
	))
	return loc
}

func (g *Generator) randomRoom(name string) *game.Location {
	loc := game.NewLocation(name,
		game.WithTag(TagRoom),
		game.WithSpawnPoints(
			game.SpawnPoint{X: 0.33, Y: 0.71},
			game.SpawnPoint{X: 0.26, Y: 0.43},
			game.SpawnPoint{X: 0.47, Y: 0.22},
			game.SpawnPoint{X: 0.75, Y: 0.36},
			game.SpawnPoint{X: 0.62, Y: 0.73},
		),
	)
	g.addBoundary(loc)
	return loc
}

func (g *Generator) keyRoom() *game.Location {
	loc := game.NewLocation(game.KeyRoomName,
		game.WithTag(TagRoom),
		game.WithPersistent(true),
	)
	g.addBoundary(loc)
	loc.Add(g.f.NPC("Marco", "Congratulations! You found me!", 0.53, 0.41))
	return loc
}

func (g *Generator) addBoundary(loc *game.Location) {
	loc.Add(g.f.Wall(0.5, -0.05, 1, 0.1))
	loc.Add(g.f.Wall(0.5, 1.05, 1, 0.1))
	loc.Add(g.f.Wall(-0.05, 0.5, 0.1, 1))
	loc.Add(g.f.Wall(1.05, 0.5, 0.1, 1))
}

func randomRoomName(rng *rand.Rand, used map[string]bool) string {
	for {
		name := fmt.Sprintf("Random Room %d", rng.IntN(10000))
		if !used[name] && name != game.KeyRoomName {
			used[name] = true
			return name
		}
	}
}
