package session

import (
	"errors"
	"testing"

	"github.com/TomCrypto/Team-208-s-Game/internal/ecs"
	"github.com/TomCrypto/Team-208-s-Game/internal/game"
	"github.com/TomCrypto/Team-208-s-Game/internal/protocol"
	"github.com/pixil98/go-testutil"
)

func loggedIn(name string, loc *game.Location) *Session {
	s := New("", jsonEncoder{})
	s.Login(name, ecs.NewEntity(), loc)
	return s
}

func TestList_Add(t *testing.T) {
	tests := map[string]struct {
		max    int
		adds   int
		expLen int
		expErr error
	}{
		"under limit": {max: 3, adds: 2, expLen: 2},
		"at limit":    {max: 2, adds: 2, expLen: 2},
		"over limit":  {max: 2, adds: 3, expLen: 2, expErr: ErrFull},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			l := NewList(WithMaxSessions(tt.max))
			var err error
			for i := 0; i < tt.adds; i++ {
				err = l.Add(New("", jsonEncoder{}))
			}
			testutil.AssertEqual(t, "len", l.Len(), tt.expLen)
			testutil.AssertEqual(t, "error", errors.Is(err, tt.expErr), true)
		})
	}
}

func TestList_AddTwice(t *testing.T) {
	l := NewList()
	s := New("", jsonEncoder{})
	if err := l.Add(s); err != nil {
		t.Fatalf("add: %v", err)
	}
	testutil.AssertErrorContains(t, l.Add(s), "already registered")
}

func TestList_ByName(t *testing.T) {
	town := game.NewLocation("Town")
	l := NewList()
	alice := loggedIn("alice", town)
	anon := New("", jsonEncoder{})
	_ = l.Add(alice)
	_ = l.Add(anon)

	got, ok := l.ByName("alice")
	testutil.AssertEqual(t, "found", ok, true)
	testutil.AssertEqual(t, "session", got.ID(), alice.ID())

	_, ok = l.ByName("Alice")
	testutil.AssertEqual(t, "case sensitive", ok, false)

	_, ok = l.ByName("")
	testutil.AssertEqual(t, "anonymous", ok, false)
}

func TestList_Broadcast(t *testing.T) {
	town := game.NewLocation("Town")
	streets := game.NewLocation("Streets")

	l := NewList()
	alice := loggedIn("alice", town)
	bob := loggedIn("bob", town)
	carol := loggedIn("carol", streets)
	anon := New("", jsonEncoder{})
	for _, s := range []*Session{alice, bob, carol, anon} {
		_ = l.Add(s)
	}

	pkt := protocol.EntityDeleted{ID: 7}
	testutil.AssertEqual(t, "town", l.Broadcast(town, pkt), 2)
	testutil.AssertEqual(t, "streets", l.Broadcast(streets, pkt), 1)
	testutil.AssertEqual(t, "except", l.BroadcastExcept(town, alice, pkt), 1)

	testutil.AssertEqual(t, "alice queued", len(alice.Outbound()), 1)
	testutil.AssertEqual(t, "bob queued", len(bob.Outbound()), 2)
	testutil.AssertEqual(t, "carol queued", len(carol.Outbound()), 1)
	testutil.AssertEqual(t, "anon queued", len(anon.Outbound()), 0)
}

func TestList_DisconnectDuringFilter(t *testing.T) {
	town := game.NewLocation("Town")
	var hooked []string
	l := NewList(WithDisconnectHook(func(s *Session) {
		hooked = append(hooked, s.Name())
	}))
	alice := loggedIn("alice", town)
	bob := loggedIn("bob", town)
	_ = l.Add(alice)
	_ = l.Add(bob)

	visited := l.Filter(func(s *Session) bool {
		if s == alice {
			l.Disconnect(bob)
		}
		return true
	})

	testutil.AssertEqual(t, "visited", len(visited), 2)
	testutil.AssertEqual(t, "len", l.Len(), 1)
	testutil.AssertEqual(t, "bob closed", bob.Closed(), true)
	testutil.AssertEqual(t, "hooked", len(hooked), 1)
	testutil.AssertEqual(t, "hooked name", hooked[0], "bob")
}

func TestList_DisconnectKicked(t *testing.T) {
	town := game.NewLocation("Town")
	l := NewList()
	alice := loggedIn("alice", town)
	bob := loggedIn("bob", town)
	_ = l.Add(alice)
	_ = l.Add(bob)

	bob.Kick(ErrOutboundFull)
	kicked := l.DisconnectKicked()

	testutil.AssertEqual(t, "kicked", len(kicked), 1)
	testutil.AssertEqual(t, "len", l.Len(), 1)
	_, ok := l.ByName("bob")
	testutil.AssertEqual(t, "bob gone", ok, false)

	l.Disconnect(bob)
	testutil.AssertEqual(t, "len after repeat", l.Len(), 1)
}

func TestList_DisconnectAll(t *testing.T) {
	town := game.NewLocation("Town")
	count := 0
	l := NewList(WithDisconnectHook(func(*Session) { count++ }))
	for _, name := range []string{"a", "b", "c"} {
		_ = l.Add(loggedIn(name, town))
	}

	l.DisconnectAll()
	testutil.AssertEqual(t, "len", l.Len(), 0)
	testutil.AssertEqual(t, "hook calls", count, 3)
}

func TestList_Remove(t *testing.T) {
	l := NewList()
	s := New("", jsonEncoder{})
	_ = l.Add(s)

	testutil.AssertEqual(t, "removed", l.Remove(s), true)
	testutil.AssertEqual(t, "removed twice", l.Remove(s), false)
	testutil.AssertEqual(t, "len", l.Len(), 0)
	testutil.AssertEqual(t, "still open", s.Closed(), false)
}
