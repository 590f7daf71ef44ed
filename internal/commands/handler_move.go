package commands

import (
	"fmt"

	"github.com/TomCrypto/Team-208-s-Game/internal/ecs"
	"github.com/TomCrypto/Team-208-s-Game/internal/protocol"
	"github.com/TomCrypto/Team-208-s-Game/internal/systems"
)

// move steps the player one unit in a direction. Steps into walls or off the map are ignored.
func (h *Handler) move(c Client, m protocol.Movement) error {
	p := c.Player()
	pos, ok := ecs.Get[*ecs.Position](p)
	if !ok {
		return missing(p, ecs.KindPosition)
	}
	vol, ok := ecs.Get[*ecs.Volume](p)
	if !ok {
		return missing(p, ecs.KindVolume)
	}

	step := h.t.Player.MoveStep
	x, y := pos.X(), pos.Y()
	switch m.Direction {
	case protocol.DirectionUp:
		y -= step
	case protocol.DirectionDown:
		y += step
	case protocol.DirectionLeft:
		x -= step
	case protocol.DirectionRight:
		x += step
	default:
		return fmt.Errorf("%w: direction %q", ErrInvalidAction, m.Direction)
	}

	if !ecs.InBounds(x, y) {
		return nil
	}
	if systems.HitsWall(x, y, vol, systems.Walls(c.Location().Live())) {
		return nil
	}
	pos.Set(x, y)
	return nil
}
