// Package systems holds the per-tick transformations run over every location.
//
// Systems skip entities that lack a component they need. They never evict entities
// themselves; anything that should disappear is flagged and swept at the end of the tick.
package systems

import (
	"github.com/TomCrypto/Team-208-s-Game/internal/content"
	"github.com/TomCrypto/Team-208-s-Game/internal/game"
)

// Default returns the systems in the order they must run: physics resolves positions
// before targets are re-evaluated, and death runs last.
func Default(f *content.Factory) []game.System {
	return []game.System{
		Physics{},
		Targeting{},
		NewAI(f.Tuning().Zombie.Speed),
		NewDeath(f),
	}
}
