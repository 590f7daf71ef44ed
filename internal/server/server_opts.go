package server

import (
	"time"

	"github.com/TomCrypto/Team-208-s-Game/internal/storage"
	"github.com/TomCrypto/Team-208-s-Game/internal/transport"
)

type GameServerOpt func(*GameServer)

// WithBus routes chat through a message bus. Without one, chat is delivered in process.
func WithBus(b Bus) GameServerOpt {
	return func(s *GameServer) {
		s.bus = b
	}
}

// WithPersistence saves the world when the server stops.
func WithPersistence(p storage.Persistence) GameServerOpt {
	return func(s *GameServer) {
		s.store = p
	}
}

// WithBlacklist refuses connections from the given hosts.
func WithBlacklist(hosts ...string) GameServerOpt {
	return func(s *GameServer) {
		for _, h := range hosts {
			s.blacklist[h] = true
		}
	}
}

func WithMaxPlayers(n int) GameServerOpt {
	return func(s *GameServer) {
		if n > 0 {
			s.maxPlayers = n
		}
	}
}

func WithTickLength(d time.Duration) GameServerOpt {
	return func(s *GameServer) {
		if d > 0 {
			s.tickLength = d
		}
	}
}

// WithConnOpts configures the framing of every connection.
func WithConnOpts(opts ...transport.Opt) GameServerOpt {
	return func(s *GameServer) {
		s.connOpts = append(s.connOpts, opts...)
	}
}
