package server

import (
	"github.com/TomCrypto/Team-208-s-Game/internal/protocol"
	"github.com/TomCrypto/Team-208-s-Game/internal/session"
)

// Commit sends every change made since the last commit to the sessions viewing the
// location it happened in. A commit with nothing to report sends nothing.
func (s *GameServer) Commit() {
	for _, loc := range s.world.Locations() {
		for _, e := range loc.ClearRemovedEntities() {
			s.sessions.Broadcast(loc, protocol.EntityDeleted{ID: e.ID()})
		}

		for _, e := range loc.Entities() {
			removed := e.ClearRemovedComponents()
			modified := e.ClearModifiedComponents()
			if len(removed) == 0 && len(modified) == 0 {
				continue
			}
			s.sessions.Broadcast(loc, protocol.ComponentsUpdated{
				ID:         e.ID(),
				Components: modified,
				Removed:    removed,
			})
		}
	}

	moved := s.sessions.Filter((*session.Session).LocationChanged)
	for _, sess := range moved {
		player := sess.Player()
		from, to := sess.Viewed(), sess.Location()

		// Sessions that moved this tick get a full snapshot instead.
		settled := func(o *session.Session) bool {
			return o != sess && o.LoggedIn() && !o.LocationChanged()
		}
		if from != nil {
			for _, o := range s.sessions.Filter(func(o *session.Session) bool { return settled(o) && o.Location() == from }) {
				o.Send(protocol.EntityDeleted{ID: player.ID()})
			}
		}
		for _, o := range s.sessions.Filter(func(o *session.Session) bool { return settled(o) && o.Location() == to }) {
			o.Send(protocol.EntityCreated{Entity: player})
		}
	}

	for _, sess := range moved {
		loc := sess.Location()
		sess.Send(protocol.LocationChanged{
			Name:     loc.Name(),
			Tag:      loc.Tag(),
			Entities: loc.Live(),
		})
		sess.UpdateLocation()
	}
}
