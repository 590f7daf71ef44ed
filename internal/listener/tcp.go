package listener

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
)

type TCPListener struct {
	addr string
	cm   *ConnectionManager
}

func NewTCPListener(addr string, cm *ConnectionManager) *TCPListener {
	return &TCPListener{
		addr: addr,
		cm:   cm,
	}
}

func (l *TCPListener) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", l.addr, err)
	}
	return l.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled, then waits for every
// connection to finish.
func (l *TCPListener) Serve(ctx context.Context, listener net.Listener) error {
	slog.InfoContext(ctx, "listening for tcp", "addr", listener.Addr().String())

	connCtx, cancelConns := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	// Close the listener when the parent context is canceled
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				cancelConns()
				wg.Wait()
				return nil
			default:
			}
			slog.ErrorContext(ctx, "accepting tcp connection", "error", err)
			continue
		}

		if tc, ok := conn.(*net.TCPConn); ok {
			_ = tc.SetNoDelay(true)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer conn.Close()
			l.cm.AcceptConnection(connCtx, conn, conn.RemoteAddr().String())
		}()
	}
}
