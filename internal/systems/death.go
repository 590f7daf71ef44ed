package systems

import (
	"github.com/TomCrypto/Team-208-s-Game/internal/content"
	"github.com/TomCrypto/Team-208-s-Game/internal/ecs"
	"github.com/TomCrypto/Team-208-s-Game/internal/game"
)

// Death reaps entities whose health ran out. Zombies leave money behind. Players are
// revived at the respawn point without their weapon.
type Death struct {
	f *content.Factory
}

func NewDeath(f *content.Factory) Death {
	return Death{f: f}
}

func (d Death) Process(w *game.World, loc *game.Location, dt float64) {
	for _, e := range loc.Live() {
		h, ok := ecs.Get[*ecs.Health](e)
		if !ok || !h.Dead() {
			continue
		}

		switch e.Type() {
		case ecs.TypePlayer:
			d.respawn(e, h)
		case ecs.TypeZombie:
			if pos, ok := ecs.Get[*ecs.Position](e); ok {
				drop := d.f.Tuning().Zombie.MoneyDrop
				loc.Add(content.Place(d.f.Money(drop), pos.X(), pos.Y()))
			}
			e.MarkRemoved()
		default:
			e.MarkRemoved()
		}
	}
}

func (d Death) respawn(e *ecs.Entity, h *ecs.Health) {
	h.Restore()
	if pos, ok := ecs.Get[*ecs.Position](e); ok {
		pos.Set(d.f.RespawnPosition())
	}
	if eq, ok := ecs.Get[*ecs.Equipped](e); ok {
		eq.Set(d.f.NoWeapon())
	}
}
