package session

import (
	"errors"

	"github.com/TomCrypto/Team-208-s-Game/internal/game"
	"github.com/TomCrypto/Team-208-s-Game/internal/protocol"
	"github.com/google/uuid"
)

const DefaultMaxSessions = 64

var (
	ErrFull          = errors.New("server is full")
	ErrSessionExists = errors.New("session already registered")
)

// List holds the open sessions in the order they connected. It is owned by the goroutine
// driving ticks.
type List struct {
	max      int
	sessions map[uuid.UUID]*Session
	order    []*Session

	filtering int
	deferred  []*Session

	onDisconnect func(*Session)
}

type ListOpt func(*List)

func WithMaxSessions(n int) ListOpt {
	return func(l *List) {
		l.max = n
	}
}

// WithDisconnectHook runs fn for every session right before it is closed.
func WithDisconnectHook(fn func(*Session)) ListOpt {
	return func(l *List) {
		l.onDisconnect = fn
	}
}

func NewList(opts ...ListOpt) *List {
	l := &List{
		max:      DefaultMaxSessions,
		sessions: map[uuid.UUID]*Session{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *List) Add(s *Session) error {
	if _, ok := l.sessions[s.ID()]; ok {
		return ErrSessionExists
	}
	if len(l.sessions) >= l.max {
		return ErrFull
	}
	l.sessions[s.ID()] = s
	l.order = append(l.order, s)
	return nil
}

func (l *List) Get(id uuid.UUID) (*Session, bool) {
	s, ok := l.sessions[id]
	return s, ok
}

// ByName finds the logged-in session for a player name. Names are case sensitive.
func (l *List) ByName(name string) (*Session, bool) {
	for _, s := range l.order {
		if s.LoggedIn() && s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

func (l *List) Len() int {
	return len(l.sessions)
}

// All returns a snapshot of the open sessions.
func (l *List) All() []*Session {
	out := make([]*Session, len(l.order))
	copy(out, l.order)
	return out
}

// Filter returns the sessions for which fn holds. Sessions closed while the filter runs
// are skipped, and disconnects requested from fn take effect once the traversal is done.
func (l *List) Filter(fn func(*Session) bool) []*Session {
	l.filtering++
	var out []*Session
	for _, s := range l.All() {
		if s.Closed() {
			continue
		}
		if fn(s) {
			out = append(out, s)
		}
	}
	l.filtering--

	if l.filtering == 0 && len(l.deferred) > 0 {
		pending := l.deferred
		l.deferred = nil
		for _, s := range pending {
			l.Disconnect(s)
		}
	}
	return out
}

// Broadcast sends p to every logged-in session viewing loc and returns how many got it.
func (l *List) Broadcast(loc *game.Location, p protocol.Packet) int {
	return l.BroadcastExcept(loc, nil, p)
}

// BroadcastExcept is Broadcast skipping one session.
func (l *List) BroadcastExcept(loc *game.Location, skip *Session, p protocol.Packet) int {
	targets := l.Filter(func(s *Session) bool {
		return s != skip && s.LoggedIn() && s.Location() == loc
	})
	for _, s := range targets {
		s.Send(p)
	}
	return len(targets)
}

// Disconnect removes and closes s. Unknown sessions are ignored.
func (l *List) Disconnect(s *Session) {
	if l.filtering > 0 {
		l.deferred = append(l.deferred, s)
		return
	}
	if _, ok := l.sessions[s.ID()]; !ok {
		return
	}

	if l.onDisconnect != nil {
		l.onDisconnect(s)
	}
	l.Remove(s)
	s.Close()
}

// Remove drops s from the list without closing it.
func (l *List) Remove(s *Session) bool {
	if _, ok := l.sessions[s.ID()]; !ok {
		return false
	}
	delete(l.sessions, s.ID())
	for i, o := range l.order {
		if o == s {
			l.order = append(l.order[:i:i], l.order[i+1:]...)
			break
		}
	}
	return true
}

// DisconnectKicked disconnects every session flagged by Kick and returns them.
func (l *List) DisconnectKicked() []*Session {
	kicked := l.Filter(func(s *Session) bool {
		return s.Kicked()
	})
	for _, s := range kicked {
		l.Disconnect(s)
	}
	return kicked
}

// DisconnectAll closes every session.
func (l *List) DisconnectAll() {
	for _, s := range l.All() {
		l.Disconnect(s)
	}
}
