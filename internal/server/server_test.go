package server

import (
	"context"
	"errors"
	"testing"

	"github.com/TomCrypto/Team-208-s-Game/internal/content"
	"github.com/TomCrypto/Team-208-s-Game/internal/ecs"
	"github.com/TomCrypto/Team-208-s-Game/internal/game"
	"github.com/TomCrypto/Team-208-s-Game/internal/messaging"
	"github.com/TomCrypto/Team-208-s-Game/internal/protocol"
	"github.com/TomCrypto/Team-208-s-Game/internal/session"
	"github.com/TomCrypto/Team-208-s-Game/internal/tuning"
	"github.com/pixil98/go-testutil"
)

type recordingBus struct {
	ready     chan struct{}
	published map[string][][]byte
	subs      map[string]func([]byte)
}

func newRecordingBus() *recordingBus {
	b := &recordingBus{
		ready:     make(chan struct{}),
		published: map[string][][]byte{},
		subs:      map[string]func([]byte){},
	}
	close(b.ready)
	return b
}

func (b *recordingBus) Ready() <-chan struct{} { return b.ready }

func (b *recordingBus) Publish(subject string, data []byte) error {
	b.published[subject] = append(b.published[subject], data)
	return nil
}

func (b *recordingBus) Subscribe(subject string, handler func([]byte)) (func(), error) {
	b.subs[subject] = handler
	return func() { delete(b.subs, subject) }, nil
}

type fixture struct {
	s       *GameServer
	codec   *protocol.Codec
	f       *content.Factory
	start   *game.Location
	streets *game.Location
}

func newFixture(t *testing.T, opts ...GameServerOpt) *fixture {
	t.Helper()

	f := content.NewFactory(tuning.Default())
	w := game.NewWorld(game.WithSeed(3))
	start := game.NewLocation(game.StartLocationName)
	streets := game.NewLocation(game.StreetsName)
	for _, l := range []*game.Location{start, streets} {
		if err := w.AddLocation(l); err != nil {
			t.Fatalf("adding location: %v", err)
		}
	}

	codec, err := protocol.NewCodec()
	if err != nil {
		t.Fatalf("codec: %v", err)
	}

	return &fixture{
		s:       NewGameServer(w, f, codec, opts...),
		codec:   codec,
		f:       f,
		start:   start,
		streets: streets,
	}
}

func (fx *fixture) connect(t *testing.T, remote string) *session.Session {
	t.Helper()
	sess, err := fx.s.Accept(remote)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	return sess
}

func (fx *fixture) login(t *testing.T, name string) *session.Session {
	t.Helper()
	sess := fx.connect(t, "127.0.0.1:4000")
	fx.s.HandlePacket(context.Background(), sess, protocol.LoginRequest{Name: name})
	if !sess.LoggedIn() {
		t.Fatalf("%s did not log in", name)
	}
	fx.drain(t, sess)
	return sess
}

// drain decodes everything queued for sess.
func (fx *fixture) drain(t *testing.T, sess *session.Session) []protocol.Packet {
	t.Helper()
	var out []protocol.Packet
	for {
		select {
		case payload, ok := <-sess.Outbound():
			if !ok {
				return out
			}
			p, err := fx.codec.Decode(payload)
			if err != nil {
				t.Fatalf("decoding: %v", err)
			}
			out = append(out, p)
		default:
			return out
		}
	}
}

func channels(pkts []protocol.Packet) []protocol.Channel {
	out := make([]protocol.Channel, 0, len(pkts))
	for _, p := range pkts {
		out = append(out, p.Channel())
	}
	return out
}

func TestAccept(t *testing.T) {
	tests := map[string]struct {
		opts   []GameServerOpt
		remote string
		prior  int
		expErr error
	}{
		"accepted": {
			remote: "10.0.0.1:5000",
		},
		"blacklisted host": {
			opts:   []GameServerOpt{WithBlacklist("10.0.0.1")},
			remote: "10.0.0.1:5000",
			expErr: ErrBlacklisted,
		},
		"blacklist without port": {
			opts:   []GameServerOpt{WithBlacklist("pipe")},
			remote: "pipe",
			expErr: ErrBlacklisted,
		},
		"server full": {
			opts:   []GameServerOpt{WithMaxPlayers(2)},
			remote: "10.0.0.3:5000",
			prior:  2,
			expErr: session.ErrFull,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			fx := newFixture(t, tt.opts...)
			for i := 0; i < tt.prior; i++ {
				fx.connect(t, "10.0.0.2:5000")
			}

			sess, err := fx.s.Accept(tt.remote)
			if tt.expErr != nil {
				testutil.AssertEqual(t, "error", errors.Is(err, tt.expErr), true)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "state", sess.State(), session.StateAnonymous)
			testutil.AssertEqual(t, "registered", fx.s.Sessions().Len(), tt.prior+1)
		})
	}
}

func TestLogin(t *testing.T) {
	tests := map[string]struct {
		setup     func(t *testing.T, fx *fixture, sess *session.Session)
		name      string
		expStatus protocol.LoginStatus
	}{
		"new player": {
			name:      "alice",
			expStatus: protocol.LoginOK,
		},
		"invalid name": {
			name:      "alice!",
			expStatus: protocol.LoginInvalidName,
		},
		"empty name": {
			name:      "",
			expStatus: protocol.LoginInvalidName,
		},
		"name taken": {
			setup: func(t *testing.T, fx *fixture, _ *session.Session) {
				fx.login(t, "alice")
			},
			name:      "alice",
			expStatus: protocol.LoginNameTaken,
		},
		"already logged in": {
			setup: func(t *testing.T, fx *fixture, sess *session.Session) {
				fx.s.HandlePacket(context.Background(), sess, protocol.LoginRequest{Name: "bob"})
				fx.drain(t, sess)
			},
			name:      "alice",
			expStatus: protocol.LoginAlreadyIn,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			fx := newFixture(t)
			sess := fx.connect(t, "127.0.0.1:4001")
			if tt.setup != nil {
				tt.setup(t, fx, sess)
			}

			fx.s.HandlePacket(context.Background(), sess, protocol.LoginRequest{Name: tt.name})

			pkts := fx.drain(t, sess)
			if len(pkts) != 1 {
				t.Fatalf("expected one reply, got %v", channels(pkts))
			}
			reply, ok := pkts[0].(protocol.LoginReply)
			testutil.AssertEqual(t, "reply", ok, true)
			testutil.AssertEqual(t, "status", reply.Status, tt.expStatus)
		})
	}
}

func TestLogin_NewPlayerAtStart(t *testing.T) {
	fx := newFixture(t)
	sess := fx.login(t, "alice")

	testutil.AssertEqual(t, "location", sess.Location().Name(), game.StartLocationName)
	testutil.AssertEqual(t, "in location", len(fx.start.Players()), 1)
	testutil.AssertEqual(t, "player name", sess.Player().Name(), "alice")
}

func TestLogin_RestoresSavedPlayer(t *testing.T) {
	fx := newFixture(t)
	saved := fx.f.Player("alice")
	fx.streets.Add(saved)
	fx.s.World().SavePlayer("alice", fx.streets, saved)
	fx.s.Commit()

	sess := fx.login(t, "alice")

	testutil.AssertEqual(t, "location", sess.Location().Name(), game.StreetsName)
	testutil.AssertEqual(t, "same entity", sess.Player().ID(), saved.ID())
	testutil.AssertEqual(t, "record consumed", fx.s.World().HasSavedPlayer("alice"), false)
	testutil.AssertEqual(t, "live again", saved.Removed(), false)
}

func TestHandlePacket_ActionBeforeLogin(t *testing.T) {
	fx := newFixture(t)
	sess := fx.connect(t, "127.0.0.1:4002")

	fx.s.HandlePacket(context.Background(), sess, protocol.Movement{Direction: protocol.DirectionUp})
	fx.s.HandlePacket(context.Background(), sess, protocol.PublicMessage{Text: "hello"})

	testutil.AssertEqual(t, "queued", sess.Pending(), 0)
	testutil.AssertEqual(t, "replies", len(fx.drain(t, sess)), 0)
}

func TestHandlePacket_QueuesActions(t *testing.T) {
	fx := newFixture(t)
	sess := fx.login(t, "alice")

	fx.s.HandlePacket(context.Background(), sess, protocol.Movement{Direction: protocol.DirectionUp})
	fx.s.HandlePacket(context.Background(), sess, protocol.Interact{})

	testutil.AssertEqual(t, "queued", sess.Pending(), 2)
}

func TestCommit_LoginSnapshot(t *testing.T) {
	fx := newFixture(t)
	bob := fx.login(t, "bob")
	fx.s.Commit()
	fx.drain(t, bob)

	alice := fx.login(t, "alice")
	fx.s.Commit()

	alicePkts := fx.drain(t, alice)
	testutil.AssertEqual(t, "alice packets", len(alicePkts), 1)
	snap, ok := alicePkts[0].(protocol.LocationChanged)
	testutil.AssertEqual(t, "snapshot", ok, true)
	testutil.AssertEqual(t, "snapshot name", snap.Name, game.StartLocationName)
	testutil.AssertEqual(t, "snapshot entities", len(snap.Entities), 2)

	bobPkts := fx.drain(t, bob)
	testutil.AssertEqual(t, "bob packets", len(bobPkts), 1)
	created, ok := bobPkts[0].(protocol.EntityCreated)
	testutil.AssertEqual(t, "created", ok, true)
	testutil.AssertEqual(t, "created id", created.Entity.ID(), alice.Player().ID())
}

func TestCommit_Idempotent(t *testing.T) {
	fx := newFixture(t)
	alice := fx.login(t, "alice")
	zombie := fx.f.Zombie(0.5, 0.5)
	fx.start.Add(zombie)

	fx.s.Commit()
	first := fx.drain(t, alice)
	testutil.AssertEqual(t, "first commit", len(first) > 0, true)

	fx.s.Commit()
	testutil.AssertEqual(t, "second commit", len(fx.drain(t, alice)), 0)

	h, _ := ecs.Get[*ecs.Health](zombie)
	h.Damage(5)
	fx.s.Commit()

	pkts := fx.drain(t, alice)
	testutil.AssertEqual(t, "update count", len(pkts), 1)
	upd, ok := pkts[0].(protocol.ComponentsUpdated)
	testutil.AssertEqual(t, "update", ok, true)
	testutil.AssertEqual(t, "update id", upd.ID, zombie.ID())
	testutil.AssertEqual(t, "components", len(upd.Components), 1)
	testutil.AssertEqual(t, "kind", upd.Components[0].Kind(), ecs.KindHealth)
}

func TestCommit_OnlyViewersReceive(t *testing.T) {
	fx := newFixture(t)
	alice := fx.login(t, "alice")
	bob := fx.login(t, "bob")
	fx.s.Commit()

	// Move bob to the street directly.
	fx.start.Remove(bob.Player().ID())
	fx.streets.Add(bob.Player())
	bob.SetLocation(fx.streets)
	fx.s.Commit()
	fx.drain(t, alice)
	fx.drain(t, bob)

	zombie := fx.f.Zombie(0.5, 0.5)
	fx.streets.Add(zombie)
	fx.s.Commit()
	zombie.MarkRemoved()
	fx.s.Commit()

	testutil.AssertEqual(t, "alice sees nothing", len(fx.drain(t, alice)), 0)
	testutil.AssertEqual(t, "bob sees update and delete", channels(fx.drain(t, bob)), []protocol.Channel{
		protocol.ChannelComponentsUpdated,
		protocol.ChannelEntityDeleted,
	})
}

func TestCommit_LocationChange(t *testing.T) {
	fx := newFixture(t)
	alice := fx.login(t, "alice")
	bob := fx.login(t, "bob")
	carol := fx.login(t, "carol")
	fx.start.Remove(carol.Player().ID())
	fx.streets.Add(carol.Player())
	carol.SetLocation(fx.streets)
	fx.s.Commit()
	for _, sess := range []*session.Session{alice, bob, carol} {
		fx.drain(t, sess)
	}

	fx.start.Remove(alice.Player().ID())
	fx.streets.Add(alice.Player())
	alice.SetLocation(fx.streets)
	alice.Player().ClearModifiedComponents()
	fx.s.Commit()

	alicePkts := fx.drain(t, alice)
	testutil.AssertEqual(t, "alice", channels(alicePkts), []protocol.Channel{protocol.ChannelLocationChanged})
	testutil.AssertEqual(t, "alice location", alicePkts[0].(protocol.LocationChanged).Name, game.StreetsName)

	bobPkts := fx.drain(t, bob)
	testutil.AssertEqual(t, "bob", channels(bobPkts), []protocol.Channel{protocol.ChannelEntityDeleted})
	testutil.AssertEqual(t, "bob deleted id", bobPkts[0].(protocol.EntityDeleted).ID, alice.Player().ID())

	carolPkts := fx.drain(t, carol)
	testutil.AssertEqual(t, "carol", channels(carolPkts), []protocol.Channel{protocol.ChannelEntityCreated})

	fx.s.Commit()
	testutil.AssertEqual(t, "alice after", len(fx.drain(t, alice)), 0)
}

func TestDisconnect_SavesPlayer(t *testing.T) {
	fx := newFixture(t)
	alice := fx.login(t, "alice")
	bob := fx.login(t, "bob")
	for _, sess := range []*session.Session{alice, bob} {
		fx.start.Remove(sess.Player().ID())
		fx.streets.Add(sess.Player())
		sess.SetLocation(fx.streets)
	}
	fx.s.Commit()
	fx.drain(t, bob)

	player := alice.Player()
	fx.s.Sessions().Disconnect(alice)

	rec, ok := fx.s.World().SavedPlayer("alice")
	testutil.AssertEqual(t, "saved", ok, true)
	testutil.AssertEqual(t, "saved location", rec.Location, game.StreetsName)
	testutil.AssertEqual(t, "saved entity", rec.Player.ID(), player.ID())
	testutil.AssertEqual(t, "flagged", player.Removed(), true)
	testutil.AssertEqual(t, "closed", alice.Closed(), true)

	fx.s.Commit()
	bobPkts := fx.drain(t, bob)
	testutil.AssertEqual(t, "bob", channels(bobPkts), []protocol.Channel{protocol.ChannelEntityDeleted})
	testutil.AssertEqual(t, "deleted id", bobPkts[0].(protocol.EntityDeleted).ID, player.ID())

	_, present := fx.streets.Entity(player.ID())
	testutil.AssertEqual(t, "excluded from street", present, false)
	testutil.AssertEqual(t, "street players", len(fx.streets.Players()), 1)
}

func TestLogin_SameTickAsDisconnect(t *testing.T) {
	fx := newFixture(t)
	alice := fx.login(t, "alice")
	bob := fx.login(t, "bob")
	fx.s.Commit()
	fx.drain(t, bob)
	player := alice.Player()
	fx.s.Sessions().Disconnect(alice)

	again := fx.connect(t, "127.0.0.1:4006")
	fx.s.HandlePacket(context.Background(), again, protocol.LoginRequest{Name: "alice"})
	pkts := fx.drain(t, again)
	testutil.AssertEqual(t, "early status", pkts[0].(protocol.LoginReply).Status, protocol.LoginNameTaken)
	testutil.AssertEqual(t, "still saved", fx.s.World().HasSavedPlayer("alice"), true)

	fx.s.Commit()
	testutil.AssertEqual(t, "bob", channels(fx.drain(t, bob)), []protocol.Channel{protocol.ChannelEntityDeleted})

	fx.s.HandlePacket(context.Background(), again, protocol.LoginRequest{Name: "alice"})
	pkts = fx.drain(t, again)
	testutil.AssertEqual(t, "status", pkts[0].(protocol.LoginReply).Status, protocol.LoginOK)
	testutil.AssertEqual(t, "same entity", again.Player().ID(), player.ID())

	fx.s.Commit()
	testutil.AssertEqual(t, "bob sees return", channels(fx.drain(t, bob)), []protocol.Channel{protocol.ChannelEntityCreated})
}

func TestDisconnect_Anonymous(t *testing.T) {
	fx := newFixture(t)
	sess := fx.connect(t, "127.0.0.1:4003")

	fx.s.Sessions().Disconnect(sess)

	testutil.AssertEqual(t, "saved", len(fx.s.World().SavedPlayers()), 0)
	testutil.AssertEqual(t, "sessions", fx.s.Sessions().Len(), 0)
}

func TestTick_EmptyTicksSendNothing(t *testing.T) {
	fx := newFixture(t)
	alice := fx.login(t, "alice")
	fx.s.Commit()
	fx.drain(t, alice)

	for i := 0; i < 2; i++ {
		if err := fx.s.Tick(context.Background()); err != nil {
			t.Fatalf("tick: %v", err)
		}
	}

	testutil.AssertEqual(t, "packets", len(fx.drain(t, alice)), 0)
	testutil.AssertEqual(t, "clock advanced", fx.s.World().Now() > 0, true)
}

func TestTick_DispatchesActions(t *testing.T) {
	fx := newFixture(t)
	alice := fx.login(t, "alice")
	fx.s.Commit()
	fx.drain(t, alice)

	fx.s.HandlePacket(context.Background(), alice, protocol.Upgrade{Cost: 100, Kind: ecs.UpgradeHealth})
	fx.s.HandlePacket(context.Background(), alice, protocol.Movement{Direction: protocol.DirectionRight})
	if err := fx.s.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	pkts := fx.drain(t, alice)
	testutil.AssertEqual(t, "packets", channels(pkts), []protocol.Channel{
		protocol.ChannelPrivate,
		protocol.ChannelComponentsUpdated,
	})
	testutil.AssertEqual(t, "notice", pkts[0].(protocol.PrivateMessage).Text, "You can't afford that")
	testutil.AssertEqual(t, "queue emptied", alice.Pending(), 0)
}

func TestTick_KickedSessionDisconnected(t *testing.T) {
	fx := newFixture(t)
	alice := fx.login(t, "alice")

	alice.Kick(session.ErrOutboundFull)
	if err := fx.s.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	testutil.AssertEqual(t, "closed", alice.Closed(), true)
	testutil.AssertEqual(t, "saved", fx.s.World().HasSavedPlayer("alice"), true)
}

func TestChat_InProcess(t *testing.T) {
	fx := newFixture(t)
	alice := fx.login(t, "alice")
	bob := fx.login(t, "bob")

	fx.s.HandlePacket(context.Background(), alice, protocol.PublicMessage{Sender: "spoofed", Text: "hi all"})
	for name, sess := range map[string]*session.Session{"alice": alice, "bob": bob} {
		pkts := fx.drain(t, sess)
		if len(pkts) != 1 {
			t.Fatalf("%s: expected one packet, got %v", name, channels(pkts))
		}
		msg := pkts[0].(protocol.PublicMessage)
		testutil.AssertEqual(t, name+" sender", msg.Sender, "alice")
		testutil.AssertEqual(t, name+" text", msg.Text, "hi all")
	}

	fx.s.HandlePacket(context.Background(), alice, protocol.PrivateMessage{Recipient: "bob", Text: "psst"})
	bobPkts := fx.drain(t, bob)
	testutil.AssertEqual(t, "bob private", len(bobPkts), 1)
	testutil.AssertEqual(t, "private sender", bobPkts[0].(protocol.PrivateMessage).Sender, "alice")
	testutil.AssertEqual(t, "alice echo", len(fx.drain(t, alice)), 0)

	fx.s.HandlePacket(context.Background(), alice, protocol.PrivateMessage{Recipient: "carol", Text: "hello?"})
	alicePkts := fx.drain(t, alice)
	testutil.AssertEqual(t, "not online", alicePkts[0].(protocol.PrivateMessage).Text, "carol is not online")
}

func TestChat_Bus(t *testing.T) {
	bus := newRecordingBus()
	fx := newFixture(t, WithBus(bus))
	alice := fx.login(t, "alice")
	fx.login(t, "bob")

	_, subscribed := bus.subs[messaging.PlayerSubject("alice")]
	testutil.AssertEqual(t, "private subscription", subscribed, true)

	fx.s.HandlePacket(context.Background(), alice, protocol.PublicMessage{Text: "hi all"})
	fx.s.HandlePacket(context.Background(), alice, protocol.PrivateMessage{Recipient: "bob", Text: "psst"})

	testutil.AssertEqual(t, "public published", len(bus.published[messaging.PublicSubject]), 1)
	testutil.AssertEqual(t, "private published", len(bus.published[messaging.PlayerSubject("bob")]), 1)
	testutil.AssertEqual(t, "nothing delivered directly", len(fx.drain(t, alice)), 0)

	fx.s.Sessions().Disconnect(alice)
	_, subscribed = bus.subs[messaging.PlayerSubject("alice")]
	testutil.AssertEqual(t, "unsubscribed", subscribed, false)
}

type fixedLink struct{ rtt, in, out float64 }

func (l fixedLink) Latency() float64            { return l.rtt }
func (l fixedLink) InboundThroughput() float64  { return l.in }
func (l fixedLink) OutboundThroughput() float64 { return l.out }

func TestStatus(t *testing.T) {
	fx := newFixture(t)
	alice := fx.login(t, "alice")
	alice.SetLink(fixedLink{rtt: 0.05, in: 300, out: 1200})
	fx.connect(t, "127.0.0.1:4005")
	saved := fx.f.Player("zed")
	fx.streets.Add(saved)
	fx.s.World().SavePlayer("zed", fx.streets, saved)

	st := fx.s.status()

	testutil.AssertEqual(t, "clients", len(st.Clients), 2)
	testutil.AssertEqual(t, "locations", len(st.Locations), 2)
	testutil.AssertEqual(t, "start players", st.Locations[0].Players, 1)
	testutil.AssertEqual(t, "saved", len(st.Saved), 1)
	testutil.AssertEqual(t, "saved name", st.Saved[0].Name, "zed")
	testutil.AssertEqual(t, "latency", st.Clients[0].Latency, 0.05)
	testutil.AssertEqual(t, "inbound", st.Clients[0].InboundThroughput, 300.0)
	testutil.AssertEqual(t, "outbound", st.Clients[0].OutboundThroughput, 1200.0)
	testutil.AssertEqual(t, "unlinked outbound", st.Clients[1].OutboundThroughput, 0.0)
}
