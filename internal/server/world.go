package server

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/TomCrypto/Team-208-s-Game/internal/content"
	"github.com/TomCrypto/Team-208-s-Game/internal/game"
	"github.com/TomCrypto/Team-208-s-Game/internal/storage"
	"github.com/TomCrypto/Team-208-s-Game/internal/systems"
)

// LoadWorld restores the world saved in p, or generates the default world when nothing has
// been saved yet. p may be nil.
func LoadWorld(p storage.Persistence, f *content.Factory, seed uint64) (*game.World, error) {
	var w *game.World

	if p != nil {
		snap, err := p.Load()
		switch {
		case err == nil:
			w, err = snap.World(game.WithSeed(seed))
			if err != nil {
				return nil, fmt.Errorf("restoring world: %w", err)
			}
			slog.Info("world restored", "locations", len(snap.Locations), "saved_players", len(snap.Players))
		case errors.Is(err, storage.ErrNoSnapshot):
			slog.Info("no saved world, generating")
		default:
			return nil, fmt.Errorf("loading world: %w", err)
		}
	}

	if w == nil {
		var err error
		w, err = content.NewGenerator(f, seed).GenerateDefaultWorld()
		if err != nil {
			return nil, fmt.Errorf("generating world: %w", err)
		}
	}

	w.SetSystems(systems.Default(f)...)
	return w, nil
}
