package systems

import (
	"github.com/TomCrypto/Team-208-s-Game/internal/content"
	"github.com/TomCrypto/Team-208-s-Game/internal/ecs"
	"github.com/TomCrypto/Team-208-s-Game/internal/game"
)

// Physics moves entities by their velocity, stops them at walls, resolves bullet hits and
// lets players collect money they touch.
type Physics struct{}

func (Physics) Process(w *game.World, loc *game.Location, dt float64) {
	entities := loc.Live()
	walls := Walls(entities)

	for _, e := range entities {
		if e.Type() == ecs.TypeBullet {
			if life, ok := ecs.Get[*ecs.Health](e); ok {
				life.Damage(1)
			}
		}
		move(e, walls, dt)
	}

	for _, b := range entities {
		if b.Type() == ecs.TypeBullet && !b.Removed() {
			hit(b, entities)
		}
	}

	for _, p := range entities {
		if p.Type() == ecs.TypePlayer && !p.Removed() {
			collectMoney(p, entities)
		}
	}
}

func move(e *ecs.Entity, walls []*ecs.Entity, dt float64) {
	p, ok := ecs.Get[*ecs.Position](e)
	if !ok {
		return
	}
	v, ok := ecs.Get[*ecs.Velocity](e)
	if !ok || (v.X() == 0 && v.Y() == 0) {
		return
	}

	nx, ny := p.X()+v.X()*dt, p.Y()+v.Y()*dt
	bullet := e.Type() == ecs.TypeBullet
	if bullet && !ecs.InBounds(nx, ny) {
		e.MarkRemoved()
		return
	}
	if vol, ok := ecs.Get[*ecs.Volume](e); ok && HitsWall(nx, ny, vol, walls) {
		if bullet {
			e.MarkRemoved()
		}
		return
	}
	p.Set(nx, ny)
}

// Walls returns the live walls among entities.
func Walls(entities []*ecs.Entity) []*ecs.Entity {
	var out []*ecs.Entity
	for _, e := range entities {
		if e.Type() == ecs.TypeWall && !e.Removed() && e.Has(ecs.KindPosition, ecs.KindVolume) {
			out = append(out, e)
		}
	}
	return out
}

// HitsWall reports whether a volume placed at (x, y) would overlap any of the walls.
func HitsWall(x, y float64, vol *ecs.Volume, walls []*ecs.Entity) bool {
	at := ecs.NewPosition(x, y)
	for _, wall := range walls {
		wp, _ := ecs.Get[*ecs.Position](wall)
		wv, _ := ecs.Get[*ecs.Volume](wall)
		if ecs.Overlaps(at, vol, wp, wv) {
			return true
		}
	}
	return false
}

func damageable(e *ecs.Entity) bool {
	switch e.Type() {
	case ecs.TypePlayer, ecs.TypeZombie, ecs.TypeNPC:
		return e.Has(ecs.KindHealth, ecs.KindPosition, ecs.KindVolume)
	}
	return false
}

func hit(b *ecs.Entity, entities []*ecs.Entity) {
	bp, ok := ecs.Get[*ecs.Position](b)
	if !ok {
		return
	}
	bv, ok := ecs.Get[*ecs.Volume](b)
	if !ok {
		return
	}

	for _, e := range entities {
		if e.Removed() || !damageable(e) {
			continue
		}
		ep, _ := ecs.Get[*ecs.Position](e)
		ev, _ := ecs.Get[*ecs.Volume](e)
		if !ecs.Overlaps(bp, bv, ep, ev) {
			continue
		}

		damage := 0
		if d, ok := ecs.Get[*ecs.DamageFactor](b); ok {
			damage = d.Value()
		}
		h, _ := ecs.Get[*ecs.Health](e)
		if soothing(b) && e.Type() == ecs.TypePlayer {
			h.Heal(damage)
		} else {
			h.Damage(damage)
		}
		b.MarkRemoved()
		return
	}
}

func soothing(b *ecs.Entity) bool {
	n, ok := ecs.Get[*ecs.Name](b)
	return ok && n.HasSuffixFold(content.SuffixSoothing)
}

func collectMoney(p *ecs.Entity, entities []*ecs.Entity) {
	pp, ok := ecs.Get[*ecs.Position](p)
	if !ok {
		return
	}
	pv, ok := ecs.Get[*ecs.Volume](p)
	if !ok {
		return
	}
	wallet, ok := ecs.Get[*ecs.Worth](p)
	if !ok {
		return
	}

	for _, m := range entities {
		if m.Type() != ecs.TypeMoney || m.Removed() {
			continue
		}
		mp, ok := ecs.Get[*ecs.Position](m)
		if !ok {
			continue
		}
		mv, ok := ecs.Get[*ecs.Volume](m)
		if !ok {
			continue
		}
		worth, ok := ecs.Get[*ecs.Worth](m)
		if !ok {
			continue
		}
		if ecs.Overlaps(pp, pv, mp, mv) {
			wallet.Add(worth.Value())
			m.MarkRemoved()
		}
	}
}
