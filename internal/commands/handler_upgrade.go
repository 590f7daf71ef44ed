package commands

import (
	"fmt"

	"github.com/TomCrypto/Team-208-s-Game/internal/ecs"
	"github.com/TomCrypto/Team-208-s-Game/internal/protocol"
)

// upgrade spends money on a permanent improvement of the player.
func (h *Handler) upgrade(c Client, u protocol.Upgrade) error {
	if !ecs.ValidUpgrade(u.Kind) {
		return fmt.Errorf("%w: %q", ErrUnknownUpgrade, u.Kind)
	}
	if u.Cost < 0 {
		return fmt.Errorf("%w: negative cost %d", ErrInvalidAction, u.Cost)
	}

	p := c.Player()
	wallet, ok := ecs.Get[*ecs.Worth](p)
	if !ok {
		return missing(p, ecs.KindWorth)
	}
	levels, ok := ecs.Get[*ecs.Upgrades](p)
	if !ok {
		return missing(p, ecs.KindUpgrades)
	}

	var apply func()
	switch u.Kind {
	case ecs.UpgradeHealth:
		health, ok := ecs.Get[*ecs.Health](p)
		if !ok {
			return missing(p, ecs.KindHealth)
		}
		apply = func() {
			health.SetMax(health.Max() + h.t.Upgrades.HealthStep)
			health.Restore()
		}
	case ecs.UpgradeWeaponStrength:
		dmg, ok := ecs.Get[*ecs.DamageFactor](p)
		if !ok {
			return missing(p, ecs.KindDamageFactor)
		}
		apply = func() {
			dmg.Set(dmg.Value() + h.t.Upgrades.DamageStep)
		}
	case ecs.UpgradeRateOfFire:
		mult, ok := ecs.Get[*ecs.Multiplier](p)
		if !ok {
			return missing(p, ecs.KindMultiplier)
		}
		apply = func() {
			mult.Set(mult.Value() * h.t.Upgrades.FireRateFactor)
			h.updateFireRate(p)
		}
	case ecs.UpgradeInventoryCapacity:
		inv, ok := ecs.Get[*ecs.Inventory](p)
		if !ok {
			return missing(p, ecs.KindInventory)
		}
		apply = func() {
			inv.SetMaxSize(inv.MaxSize() + h.t.Upgrades.CapacityStep)
		}
	}

	if !wallet.Spend(u.Cost) {
		return NewUserError("You can't afford that")
	}
	apply()
	levels.Upgrade(u.Kind)
	return nil
}
