package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

var ErrNotStarted = errors.New("nats server not started")

type NatsServer struct {
	ns   *server.Server
	conn *nats.Conn

	ready chan struct{}

	startupTimeout time.Duration
	host           string
	port           int
	inProcess      bool
}

func NewNatsServer(opts ...NatsServerOpt) (*NatsServer, error) {
	s := &NatsServer{
		startupTimeout: 10 * time.Second,
		host:           "127.0.0.1",
		ready:          make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	ns, err := server.NewServer(&server.Options{
		Host:       s.host,
		Port:       s.port,
		DontListen: s.inProcess,
		NoSigs:     true, // Let the application handle signals
	})
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	s.ns = ns

	return s, nil
}

func (n *NatsServer) Start(ctx context.Context) error {
	n.ns.Start()

	if !n.ns.ReadyForConnections(n.startupTimeout) {
		return fmt.Errorf("nats server not ready for connections")
	}

	var conn *nats.Conn
	var err error
	if n.inProcess {
		conn, err = nats.Connect("", nats.InProcessServer(n.ns))
	} else {
		conn, err = nats.Connect(n.ns.ClientURL())
	}
	if err != nil {
		n.ns.Shutdown()
		return fmt.Errorf("creating nats client connection: %w", err)
	}
	n.conn = conn
	close(n.ready)

	if n.inProcess {
		slog.InfoContext(ctx, "nats server running in process")
	} else {
		slog.InfoContext(ctx, "nats server listening", "addr", n.ns.Addr())
	}

	<-ctx.Done()
	n.conn.Close()
	n.ns.Shutdown()
	n.ns.WaitForShutdown()

	return nil
}

// Ready is closed once the server accepts subscriptions.
func (n *NatsServer) Ready() <-chan struct{} {
	return n.ready
}

// Subscribe creates a subscription on the given subject.
// The handler is called for each message received.
// Returns an unsubscribe function to remove the subscription.
func (n *NatsServer) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	if n.conn == nil {
		return nil, ErrNotStarted
	}
	sub, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", subject, err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// Publish sends a message to the given subject
func (n *NatsServer) Publish(subject string, data []byte) error {
	if n.conn == nil {
		return ErrNotStarted
	}
	return n.conn.Publish(subject, data)
}

// Respond answers every request on subject with the output of handler.
func (n *NatsServer) Respond(subject string, handler func(data []byte) []byte) (func(), error) {
	if n.conn == nil {
		return nil, ErrNotStarted
	}
	sub, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		if err := msg.Respond(handler(msg.Data)); err != nil {
			slog.Warn("responding to request", "subject", subject, "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribing to %s: %w", subject, err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// Request sends data on subject and waits for a single reply.
func (n *NatsServer) Request(ctx context.Context, subject string, data []byte) ([]byte, error) {
	if n.conn == nil {
		return nil, ErrNotStarted
	}
	msg, err := n.conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", subject, err)
	}
	return msg.Data, nil
}
