package server

import (
	"context"
	"net"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TomCrypto/Team-208-s-Game/internal/content"
	"github.com/TomCrypto/Team-208-s-Game/internal/game"
	"github.com/TomCrypto/Team-208-s-Game/internal/protocol"
	"github.com/TomCrypto/Team-208-s-Game/internal/storage"
	"github.com/TomCrypto/Team-208-s-Game/internal/transport"
	"github.com/TomCrypto/Team-208-s-Game/internal/tuning"
	"github.com/pixil98/go-testutil"
)

func waitFor[T any](t *testing.T, label string, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", label)
	}
	var zero T
	return zero
}

func TestServe_LoginSaveOnShutdown(t *testing.T) {
	f := content.NewFactory(tuning.Default())
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "world.zst"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	w, err := LoadWorld(store, f, 1)
	if err != nil {
		t.Fatalf("loading world: %v", err)
	}
	codec, err := protocol.NewCodec()
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	s := NewGameServer(w, f, codec, WithPersistence(store), WithTickLength(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	started := make(chan error, 1)
	go func() { started <- s.Start(ctx) }()

	serverSide, clientSide := net.Pipe()
	served := make(chan error, 1)
	go func() { served <- s.Serve(ctx, serverSide, "pipe") }()

	client := transport.NewConn(clientSide)
	payload, err := codec.Encode(protocol.LoginRequest{Name: "alice"})
	if err != nil {
		t.Fatalf("encoding: %v", err)
	}
	if err := client.WritePacket(payload); err != nil {
		t.Fatalf("writing login: %v", err)
	}

	reply, err := client.ReadPacket()
	if err != nil {
		t.Fatalf("reading reply: %v", err)
	}
	pkt, err := codec.Decode(reply)
	if err != nil {
		t.Fatalf("decoding reply: %v", err)
	}
	testutil.AssertEqual(t, "status", pkt.(protocol.LoginReply).Status, protocol.LoginOK)

	_ = clientSide.Close()
	if err := waitFor(t, "serve", served); err != nil {
		t.Fatalf("serve: %v", err)
	}

	st, err := s.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	testutil.AssertEqual(t, "clients", len(st.Clients), 0)
	testutil.AssertEqual(t, "saved", len(st.Saved), 1)
	testutil.AssertEqual(t, "saved location", st.Saved[0].Location, game.StartLocationName)

	cancel()
	if err := waitFor(t, "start", started); err != nil {
		t.Fatalf("start: %v", err)
	}

	restored, err := LoadWorld(store, f, 1)
	if err != nil {
		t.Fatalf("reloading world: %v", err)
	}
	testutil.AssertEqual(t, "persisted player", restored.HasSavedPlayer("alice"), true)
	testutil.AssertEqual(t, "systems", len(restored.Systems()) > 0, true)
}

// steppingClock advances one second on every reading.
func steppingClock(start time.Time) func() time.Time {
	var n atomic.Int64
	return func() time.Time {
		return start.Add(time.Duration(n.Add(1)) * time.Second)
	}
}

func TestServe_ReportsLinkStats(t *testing.T) {
	fx := newFixture(t,
		WithTickLength(5*time.Millisecond),
		WithConnOpts(transport.WithClock(steppingClock(time.Now()))),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	started := make(chan error, 1)
	go func() { started <- fx.s.Start(ctx) }()

	serverSide, clientSide := net.Pipe()
	defer clientSide.Close()
	go func() { _ = fx.s.Serve(ctx, serverSide, "pipe") }()

	client := transport.NewConn(clientSide)
	for _, p := range []protocol.Packet{
		protocol.LoginRequest{Name: "alice"},
		protocol.PublicMessage{Text: "hello"},
	} {
		payload, err := fx.codec.Encode(p)
		if err != nil {
			t.Fatalf("encoding: %v", err)
		}
		if err := client.WritePacket(payload); err != nil {
			t.Fatalf("writing %s: %v", p.Channel(), err)
		}
	}

	// The chat echo is sent after both inbound frames were read and after the login reply.
	echoed := false
	for i := 0; i < 20 && !echoed; i++ {
		data, err := client.ReadPacket()
		if err != nil {
			t.Fatalf("reading: %v", err)
		}
		pkt, err := fx.codec.Decode(data)
		if err != nil {
			t.Fatalf("decoding: %v", err)
		}
		echoed = pkt.Channel() == protocol.ChannelPublic
	}
	testutil.AssertEqual(t, "echoed", echoed, true)

	st, err := fx.s.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	testutil.AssertEqual(t, "clients", len(st.Clients), 1)
	testutil.AssertEqual(t, "name", st.Clients[0].Name, "alice")
	testutil.AssertEqual(t, "inbound", st.Clients[0].InboundThroughput > 0, true)
	testutil.AssertEqual(t, "outbound", st.Clients[0].OutboundThroughput > 0, true)

	cancel()
	waitFor(t, "start", started)
}

func TestServe_Rejects(t *testing.T) {
	tests := map[string]struct {
		remote string
		raw    []byte
		pkt    protocol.Packet
		expErr string
	}{
		"blacklisted": {
			remote: "10.1.1.1:5000",
			expErr: "blacklisted",
		},
		"malformed packet": {
			remote: "10.2.2.2:5000",
			raw:    []byte(`{"type":"message"`),
			expErr: "protocol violation",
		},
		"update from client": {
			remote: "10.2.2.2:5000",
			pkt:    protocol.EntityDeleted{ID: 1},
			expErr: "protocol violation",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			fx := newFixture(t, WithBlacklist("10.1.1.1"), WithTickLength(5*time.Millisecond))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			started := make(chan error, 1)
			go func() { started <- fx.s.Start(ctx) }()

			serverSide, clientSide := net.Pipe()
			defer clientSide.Close()
			served := make(chan error, 1)
			go func() { served <- fx.s.Serve(ctx, serverSide, tt.remote) }()

			payload := tt.raw
			if tt.pkt != nil {
				var err error
				if payload, err = fx.codec.Encode(tt.pkt); err != nil {
					t.Fatalf("encoding: %v", err)
				}
			}
			if payload != nil {
				if err := transport.NewConn(clientSide).WritePacket(payload); err != nil {
					t.Fatalf("writing: %v", err)
				}
			}

			testutil.AssertErrorContains(t, waitFor(t, "serve", served), tt.expErr)

			cancel()
			waitFor(t, "start", started)
			testutil.AssertEqual(t, "sessions", fx.s.Sessions().Len(), 0)
		})
	}
}

func TestLoadWorld_Generates(t *testing.T) {
	f := content.NewFactory(tuning.Default())

	w, err := LoadWorld(nil, f, 11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "start location", w.StartLocation() != nil, true)
	_, ok := w.Location(game.StreetsName)
	testutil.AssertEqual(t, "streets", ok, true)
	testutil.AssertEqual(t, "systems", len(w.Systems()) > 0, true)
}
