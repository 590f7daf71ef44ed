package systems

import (
	"math"

	"github.com/TomCrypto/Team-208-s-Game/internal/ecs"
	"github.com/TomCrypto/Team-208-s-Game/internal/game"
)

// contactSlack is how far apart two volumes may be and still count as touching.
const contactSlack = 0.005

// AI steers zombies toward their target and lets them attack on contact. Homing bullets
// turn toward their target without changing speed.
type AI struct {
	speed float64
}

func NewAI(zombieSpeed float64) AI {
	return AI{speed: zombieSpeed}
}

func (a AI) Process(w *game.World, loc *game.Location, dt float64) {
	now := w.Now()
	for _, e := range loc.Live() {
		switch e.Type() {
		case ecs.TypeZombie:
			a.chase(e, loc, now)
		case ecs.TypeBullet:
			home(e, loc)
		}
	}
}

func (a AI) chase(e *ecs.Entity, loc *game.Location, now int64) {
	vel, ok := ecs.Get[*ecs.Velocity](e)
	if !ok {
		return
	}
	pos, ok := ecs.Get[*ecs.Position](e)
	if !ok {
		return
	}

	target, tpos, ok := currentTarget(e, loc)
	if !ok {
		vel.Set(0, 0)
		return
	}

	dx, dy := tpos.X()-pos.X(), tpos.Y()-pos.Y()
	dist := math.Hypot(dx, dy)

	if touching(e, target, dist) {
		vel.Set(0, 0)
		attack(e, target, now)
		return
	}
	if dist == 0 {
		vel.Set(0, 0)
		return
	}
	vel.Set(dx/dist*a.speed, dy/dist*a.speed)
}

func touching(a, b *ecs.Entity, dist float64) bool {
	av, ok := ecs.Get[*ecs.Volume](a)
	if !ok {
		return false
	}
	bv, ok := ecs.Get[*ecs.Volume](b)
	if !ok {
		return false
	}
	return dist <= (av.Width()+bv.Width())/2+contactSlack
}

func attack(e, target *ecs.Entity, now int64) {
	trigger, ok := ecs.Get[*ecs.EventTrigger](e)
	if !ok {
		return
	}
	dmg, ok := ecs.Get[*ecs.DamageFactor](e)
	if !ok {
		return
	}
	h, ok := ecs.Get[*ecs.Health](target)
	if !ok {
		return
	}
	if trigger.CanFire(now) {
		h.Damage(dmg.Value())
	}
}

func home(b *ecs.Entity, loc *game.Location) {
	vel, ok := ecs.Get[*ecs.Velocity](b)
	if !ok {
		return
	}
	pos, ok := ecs.Get[*ecs.Position](b)
	if !ok {
		return
	}
	_, tpos, ok := currentTarget(b, loc)
	if !ok {
		return
	}

	dx, dy := tpos.X()-pos.X(), tpos.Y()-pos.Y()
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return
	}
	speed := vel.Speed()
	vel.Set(dx/dist*speed, dy/dist*speed)
}

func currentTarget(e *ecs.Entity, loc *game.Location) (*ecs.Entity, *ecs.Position, bool) {
	tgt, ok := ecs.Get[*ecs.Target](e)
	if !ok || !tgt.HasTarget() {
		return nil, nil, false
	}
	target, ok := loc.Entity(tgt.Current())
	if !ok {
		return nil, nil, false
	}
	tpos, ok := ecs.Get[*ecs.Position](target)
	if !ok {
		return nil, nil, false
	}
	return target, tpos, true
}
