package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const DefaultWebSocketPath = "/ws"

// WebSocketListener serves clients over WebSocket. Each binary message carries a slice of
// the same framed stream a TCP client would send.
type WebSocketListener struct {
	addr     string
	path     string
	cm       *ConnectionManager
	upgrader websocket.Upgrader
}

func NewWebSocketListener(addr, path string, cm *ConnectionManager) *WebSocketListener {
	if path == "" {
		path = DefaultWebSocketPath
	}
	return &WebSocketListener{
		addr: addr,
		path: path,
		cm:   cm,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (l *WebSocketListener) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", l.addr, err)
	}

	connCtx, cancelConns := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	mux := http.NewServeMux()
	mux.Handle(l.path, l.Handler(connCtx, &wg))
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.InfoContext(ctx, "listening for websocket", "addr", listener.Addr().String(), "path", l.path)

	err = srv.Serve(listener)

	// Upgraded connections are hijacked, so Shutdown does not wait for them.
	cancelConns()
	wg.Wait()

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("serving websocket on %s: %w", l.addr, err)
}

// Handler upgrades requests and runs each connection until it ends or ctx is cancelled.
// wg tracks the running connections.
func (l *WebSocketListener) Handler(ctx context.Context, wg *sync.WaitGroup) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wg.Add(1)
		defer wg.Done()

		conn, err := l.upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.WarnContext(ctx, "upgrading websocket", "remote", r.RemoteAddr, "error", err)
			return
		}

		rw := newWSConn(conn)
		defer rw.Close()

		l.cm.AcceptConnection(ctx, rw, r.RemoteAddr)
	})
}

// wsConn exposes the binary messages of a websocket as a byte stream.
type wsConn struct {
	conn *websocket.Conn
	r    io.Reader
	wmu  sync.Mutex
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{conn: conn}
}

func (c *wsConn) Read(p []byte) (int, error) {
	for {
		if c.r == nil {
			typ, r, err := c.conn.NextReader()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return 0, io.EOF
				}
				return 0, err
			}
			if typ != websocket.BinaryMessage {
				continue
			}
			c.r = r
		}

		n, err := c.r.Read(p)
		if errors.Is(err, io.EOF) {
			c.r = nil
			if n == 0 {
				continue
			}
			err = nil
		}
		return n, err
	}
}

func (c *wsConn) Write(p []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if err := c.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
