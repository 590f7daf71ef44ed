package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/TomCrypto/Team-208-s-Game/internal/content"
	"github.com/TomCrypto/Team-208-s-Game/internal/display"
	"github.com/TomCrypto/Team-208-s-Game/internal/ecs"
	"github.com/TomCrypto/Team-208-s-Game/internal/game"
)

// interact acts on whatever the player is currently targeting.
func (h *Handler) interact(ctx context.Context, c Client, w *game.World) error {
	p := c.Player()
	tgt, ok := ecs.Get[*ecs.Target](p)
	if !ok || !tgt.HasTarget() {
		return ErrNoTarget
	}
	e, ok := c.Location().Entity(tgt.Current())
	if !ok {
		return fmt.Errorf("%w: entity %d is gone", ErrNoTarget, tgt.Current())
	}

	switch e.Type() {
	case ecs.TypeItem, ecs.TypeKey, ecs.TypeHealthPotion:
		return h.pickUp(c, e)
	case ecs.TypePortal:
		return h.usePortal(ctx, c, e, w)
	case ecs.TypeMoney:
		return h.collect(c, e)
	case ecs.TypeWeapon:
		eq, ok := ecs.Get[*ecs.Equipped](p)
		if ok && (content.IsNoWeapon(eq.Item()) || h.f.IsDefaultWeapon(eq.Item())) {
			e.MarkRemoved()
			return h.equip(c, e)
		}
		return h.pickUp(c, e)
	case ecs.TypeContainer:
		return h.loot(c, e)
	case ecs.TypeNPC:
		return h.talk(c, e)
	default:
		return NewUserError("You can't interact with that")
	}
}

// pickUp moves an entity from the ground into the player's inventory.
func (h *Handler) pickUp(c Client, e *ecs.Entity) error {
	p := c.Player()
	inv, ok := ecs.Get[*ecs.Inventory](p)
	if !ok {
		return missing(p, ecs.KindInventory)
	}

	if err := inv.Add(e); err != nil {
		switch {
		case errors.Is(err, ecs.ErrInventoryFull):
			return NewUserError("Your inventory is full!")
		case errors.Is(err, ecs.ErrTooHeavy):
			return NewUserError("The item is too heavy!")
		default:
			return NewUserError("You can't pick that up")
		}
	}
	e.MarkRemoved()
	return nil
}

func (h *Handler) collect(c Client, money *ecs.Entity) error {
	p := c.Player()
	wallet, ok := ecs.Get[*ecs.Worth](p)
	if !ok {
		return missing(p, ecs.KindWorth)
	}
	worth, ok := ecs.Get[*ecs.Worth](money)
	if !ok {
		return missing(money, ecs.KindWorth)
	}
	wallet.Add(worth.Value())
	money.MarkRemoved()
	return nil
}

// loot empties a container into the player's inventory, taking whatever fits.
func (h *Handler) loot(c Client, chest *ecs.Entity) error {
	p := c.Player()
	inv, ok := ecs.Get[*ecs.Inventory](p)
	if !ok {
		return missing(p, ecs.KindInventory)
	}
	wallet, _ := ecs.Get[*ecs.Worth](p)
	contents, ok := ecs.Get[*ecs.Inventory](chest)
	if !ok {
		return missing(chest, ecs.KindInventory)
	}
	if contents.Len() == 0 {
		return NewUserError("It's empty")
	}

	taken := 0
	for _, it := range contents.Items() {
		if it.Type() == ecs.TypeMoney && wallet != nil {
			if worth, ok := ecs.Get[*ecs.Worth](it); ok {
				_, _ = contents.Remove(it.ID())
				wallet.Add(worth.Value())
				taken++
				continue
			}
		}
		if inv.Fits(it) != nil {
			continue
		}
		if _, err := contents.Remove(it.ID()); err != nil {
			continue
		}
		_ = inv.Add(it)
		taken++
	}

	if taken == 0 {
		return NewUserError("Your inventory is full!")
	}
	return nil
}

func (h *Handler) talk(c Client, npc *ecs.Entity) error {
	text, ok := ecs.Get[*ecs.Text](npc)
	if !ok {
		return missing(npc, ecs.KindText)
	}
	c.Notify(display.Speech(npc.Name(), text.Text()))
	return nil
}

// usePortal moves the player through a portal. Locked portals need a matching key, which
// unlocks the portal for good and stays in the inventory.
func (h *Handler) usePortal(ctx context.Context, c Client, portal *ecs.Entity, w *game.World) error {
	p := c.Player()
	exit, ok := ecs.Get[*ecs.Exit](portal)
	if !ok {
		return missing(portal, ecs.KindExit)
	}
	pos, ok := ecs.Get[*ecs.Position](p)
	if !ok {
		return missing(p, ecs.KindPosition)
	}

	if exit.Locked() {
		inv, ok := ecs.Get[*ecs.Inventory](p)
		if !ok {
			return NewUserError("You require the correct key")
		}
		if _, ok := inv.FindKey(exit.Exit()); !ok {
			return NewUserError("You require the correct key")
		}
		exit.Unlock()
	}

	dest, ok := w.Location(exit.Exit())
	if !ok {
		return fmt.Errorf("portal to %q: %w", exit.Exit(), game.ErrLocationNotFound)
	}
	from := c.Location()
	if dest == from {
		pos.Set(exit.Destination())
		return nil
	}

	empty := !dest.HasPlayers()
	from.Remove(p.ID())
	pos.Set(exit.Destination())
	dest.Add(p)
	c.SetLocation(dest)

	if !from.Persistent() && !from.HasPlayers() {
		n := content.Despawn(from)
		slog.DebugContext(ctx, "despawned location", "location", from.Name(), "count", n)
	}
	if empty {
		n := h.f.Populate(dest, w.Rand())
		slog.DebugContext(ctx, "populated location", "location", dest.Name(), "count", n)
	}
	if dest == w.StartLocation() {
		h.refresh(ctx, c)
	}

	c.Notify(fmt.Sprintf("You have moved to : %s", dest.Name()))
	return nil
}

// refresh heals the player and hands a new default weapon to players who lost theirs.
func (h *Handler) refresh(ctx context.Context, c Client) {
	p := c.Player()
	if health, ok := ecs.Get[*ecs.Health](p); ok && !health.Full() {
		health.Restore()
	}
	if eq, ok := ecs.Get[*ecs.Equipped](p); ok && content.IsNoWeapon(eq.Item()) {
		if err := h.equip(c, h.f.DefaultWeapon()); err != nil {
			slog.WarnContext(ctx, "rearming player", "player", c.Name(), "error", err)
		}
	}
}
