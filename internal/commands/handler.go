package commands

import (
	"context"
	"fmt"

	"github.com/TomCrypto/Team-208-s-Game/internal/content"
	"github.com/TomCrypto/Team-208-s-Game/internal/ecs"
	"github.com/TomCrypto/Team-208-s-Game/internal/game"
	"github.com/TomCrypto/Team-208-s-Game/internal/protocol"
	"github.com/TomCrypto/Team-208-s-Game/internal/tuning"
)

// Client is the part of a session the handlers may touch.
type Client interface {
	Name() string
	Player() *ecs.Entity
	Location() *game.Location
	SetLocation(loc *game.Location)
	// Notify sends a private notice to the client.
	Notify(text string)
}

// Handler applies player actions to the world. It never broadcasts; the server commits all
// changes once per tick.
type Handler struct {
	f *content.Factory
	t tuning.Tuning
}

func NewHandler(f *content.Factory) *Handler {
	return &Handler{f: f, t: f.Tuning()}
}

// Dispatch runs the handler for action. A *UserError result should be shown to the player.
func (h *Handler) Dispatch(ctx context.Context, c Client, action protocol.Action, w *game.World) error {
	if c.Player() == nil || c.Location() == nil {
		return ErrNotLoggedIn
	}

	switch a := action.(type) {
	case protocol.Movement:
		return h.move(c, a)
	case protocol.Interact:
		return h.interact(ctx, c, w)
	case protocol.PlayerShoot:
		return h.shoot(c, a, w)
	case protocol.Use:
		return h.use(c, a)
	case protocol.Drop:
		return h.drop(c, a)
	case protocol.Upgrade:
		return h.upgrade(c, a)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAction, action.Channel())
	}
}

func missing(e *ecs.Entity, k ecs.Kind) error {
	return fmt.Errorf("%s: %w: %s", e, ecs.ErrMissingComponent, k)
}
