package commands

import (
	"fmt"

	"github.com/TomCrypto/Team-208-s-Game/internal/content"
	"github.com/TomCrypto/Team-208-s-Game/internal/ecs"
	"github.com/TomCrypto/Team-208-s-Game/internal/protocol"
)

func (h *Handler) use(c Client, u protocol.Use) error {
	p := c.Player()
	inv, ok := ecs.Get[*ecs.Inventory](p)
	if !ok {
		return missing(p, ecs.KindInventory)
	}
	item, ok := inv.Get(u.ItemID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownItem, u.ItemID)
	}

	switch item.Type() {
	case ecs.TypeWeapon:
		if _, err := inv.Remove(item.ID()); err != nil {
			return err
		}
		return h.equip(c, item)

	case ecs.TypeHealthPotion:
		health, ok := ecs.Get[*ecs.Health](p)
		if !ok {
			return missing(p, ecs.KindHealth)
		}
		if health.Full() {
			return NewUserError("Your health is already full!")
		}
		if _, err := inv.Remove(item.ID()); err != nil {
			return err
		}
		health.Heal(h.t.Items.PotionHeal)
		return nil

	default:
		return NewUserError("You can't do anything with this")
	}
}

// drop takes an item out of the inventory and leaves it at the player's feet.
func (h *Handler) drop(c Client, d protocol.Drop) error {
	p := c.Player()
	inv, ok := ecs.Get[*ecs.Inventory](p)
	if !ok {
		return missing(p, ecs.KindInventory)
	}
	pos, ok := ecs.Get[*ecs.Position](p)
	if !ok {
		return missing(p, ecs.KindPosition)
	}

	item, err := inv.Remove(d.ItemID)
	if err != nil {
		return fmt.Errorf("%w: %d", ErrUnknownItem, d.ItemID)
	}
	c.Location().Add(content.Place(item, pos.X(), pos.Y()))
	return nil
}

// equip puts weapon in the player's hand. The weapon it displaces goes back into the
// inventory, or onto the ground when the inventory cannot take it. The default weapon and
// the empty placeholder are simply discarded.
func (h *Handler) equip(c Client, weapon *ecs.Entity) error {
	p := c.Player()
	eq, ok := ecs.Get[*ecs.Equipped](p)
	if !ok {
		return missing(p, ecs.KindEquipped)
	}

	old := eq.Set(weapon)
	h.updateFireRate(p)

	if old == nil || content.IsNoWeapon(old) || h.f.IsDefaultWeapon(old) {
		return nil
	}
	if inv, ok := ecs.Get[*ecs.Inventory](p); ok && inv.Add(old) == nil {
		return nil
	}

	pos, ok := ecs.Get[*ecs.Position](p)
	if !ok {
		return missing(p, ecs.KindPosition)
	}
	c.Location().Add(content.Place(old, pos.X(), pos.Y()))
	c.Notify(fmt.Sprintf("Your inventory is full! %s was dropped", old.Name()))
	return nil
}

// updateFireRate writes weaponInterval x multiplier into the player's own trigger.
func (h *Handler) updateFireRate(p *ecs.Entity) {
	trigger, ok := ecs.Get[*ecs.EventTrigger](p)
	if !ok {
		return
	}
	eq, ok := ecs.Get[*ecs.Equipped](p)
	if !ok || !eq.HasItem() {
		return
	}
	interval := h.t.Weapons.DefaultInterval
	if wt, ok := ecs.Get[*ecs.EventTrigger](eq.Item()); ok {
		interval = wt.Interval()
	}
	mult := 1.0
	if m, ok := ecs.Get[*ecs.Multiplier](p); ok {
		mult = m.Value()
	}
	trigger.SetInterval(int64(float64(interval) * mult))
}
