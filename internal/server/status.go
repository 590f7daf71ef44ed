package server

import (
	"context"
	"time"

	"github.com/TomCrypto/Team-208-s-Game/internal/report"
)

// Status collects a report on the driver goroutine.
func (s *GameServer) Status(ctx context.Context) (report.Status, error) {
	var st report.Status
	err := s.driver.Do(ctx, func(context.Context) {
		st = s.status()
	})
	return st, err
}

func (s *GameServer) status() report.Status {
	st := report.Status{
		Started:    s.started,
		Now:        time.Now(),
		Ticks:      s.ticks,
		TickLength: s.tickLength,
		Clock:      s.world.Now(),
		MaxPlayers: s.maxPlayers,
	}

	for _, loc := range s.world.Locations() {
		st.Locations = append(st.Locations, report.LocationStatus{
			Name:     loc.Name(),
			Entities: len(loc.Live()),
			Players:  len(loc.Players()),
		})
	}

	for _, sess := range s.sessions.All() {
		c := report.ClientStatus{
			ID:     sess.ID().String(),
			Remote: sess.Remote(),
			Name:   sess.Name(),
			State:  sess.State().String(),
		}
		if loc := sess.Location(); loc != nil {
			c.Location = loc.Name()
		}
		if link, ok := sess.Link(); ok {
			c.Latency = link.Latency()
			c.InboundThroughput = link.InboundThroughput()
			c.OutboundThroughput = link.OutboundThroughput()
		}
		st.Clients = append(st.Clients, c)
	}

	for name, rec := range s.world.SavedPlayers() {
		st.Saved = append(st.Saved, report.SavedPlayer{Name: name, Location: rec.Location})
	}
	report.SortSaved(st.Saved)

	return st
}
