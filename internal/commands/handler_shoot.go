package commands

import (
	"math"

	"github.com/TomCrypto/Team-208-s-Game/internal/content"
	"github.com/TomCrypto/Team-208-s-Game/internal/ecs"
	"github.com/TomCrypto/Team-208-s-Game/internal/game"
	"github.com/TomCrypto/Team-208-s-Game/internal/protocol"
)

// muzzleGap keeps a new bullet clear of the shooter's own volume.
const muzzleGap = 0.013

func (h *Handler) shoot(c Client, s protocol.PlayerShoot, w *game.World) error {
	p := c.Player()
	eq, ok := ecs.Get[*ecs.Equipped](p)
	if !ok {
		return missing(p, ecs.KindEquipped)
	}
	weapon := eq.Item()
	if content.IsNoWeapon(weapon) {
		return NewUserError("You have no weapon")
	}
	pos, ok := ecs.Get[*ecs.Position](p)
	if !ok {
		return missing(p, ecs.KindPosition)
	}
	vol, ok := ecs.Get[*ecs.Volume](p)
	if !ok {
		return missing(p, ecs.KindVolume)
	}
	trigger, ok := ecs.Get[*ecs.EventTrigger](p)
	if !ok {
		return missing(p, ecs.KindEventTrigger)
	}

	dx, dy := s.X-pos.X(), s.Y-pos.Y()
	dist := math.Hypot(dx, dy)
	if dist == 0 || !trigger.CanFire(w.Now()) {
		return nil
	}
	ux, uy := dx/dist, dy/dist

	damage := 0
	if d, ok := ecs.Get[*ecs.DamageFactor](weapon); ok {
		damage += d.Value()
	}
	if d, ok := ecs.Get[*ecs.DamageFactor](p); ok {
		damage += d.Value()
	}

	name, named := ecs.Get[*ecs.Name](weapon)
	life := h.t.Weapons.BulletLife
	if named && name.HasSuffixFold(content.SuffixLongevity) {
		life = h.t.Weapons.LongevityLife
	}

	offset := vol.Width()/2 + muzzleGap
	speed := h.t.Weapons.BulletSpeed
	bullet := h.f.Bullet(pos.X()+ux*offset, pos.Y()+uy*offset, ux*speed, uy*speed, damage, life)
	if named {
		bullet.Add(ecs.NewSuffixedName(name.Name(), name.Suffix()))
		if name.HasSuffixFold(content.SuffixHoming) {
			bullet.Add(ecs.NewTarget(ecs.TypeZombie))
			bullet.Add(ecs.NewTargetRadius(h.t.Weapons.HomingRadius))
		}
	}
	c.Location().Add(bullet)
	return nil
}
