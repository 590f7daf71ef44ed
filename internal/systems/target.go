package systems

import (
	"github.com/TomCrypto/Team-208-s-Game/internal/ecs"
	"github.com/TomCrypto/Team-208-s-Game/internal/game"
)

// Targeting points every entity with a Target at the nearest live entity of a wanted type
// within its radius.
type Targeting struct{}

func (Targeting) Process(w *game.World, loc *game.Location, dt float64) {
	entities := loc.Live()
	for _, e := range entities {
		tgt, ok := ecs.Get[*ecs.Target](e)
		if !ok {
			continue
		}
		radius, ok := ecs.Get[*ecs.TargetRadius](e)
		if !ok {
			continue
		}
		pos, ok := ecs.Get[*ecs.Position](e)
		if !ok {
			continue
		}
		tgt.SetCurrent(nearest(e, tgt, pos, radius.Radius(), entities))
	}
}

func nearest(self *ecs.Entity, tgt *ecs.Target, pos *ecs.Position, radius float64, entities []*ecs.Entity) uint64 {
	var best uint64
	bestDist := radius
	for _, o := range entities {
		if o == self || o.Removed() || !tgt.Accepts(o.Type()) {
			continue
		}
		op, ok := ecs.Get[*ecs.Position](o)
		if !ok {
			continue
		}
		if d := pos.Distance(op); d <= bestDist {
			best, bestDist = o.ID(), d
		}
	}
	return best
}
