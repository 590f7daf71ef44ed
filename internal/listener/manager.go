package listener

import (
	"context"
	"io"
	"log/slog"
)

// Server runs one client connection to completion.
type Server interface {
	Serve(ctx context.Context, rw io.ReadWriter, remote string) error
}

type ConnectionManager struct {
	srv Server
}

func NewConnectionManager(srv Server) *ConnectionManager {
	return &ConnectionManager{
		srv: srv,
	}
}

func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter, remote string) {
	if err := m.srv.Serve(ctx, conn, remote); err != nil {
		slog.WarnContext(ctx, "client session", "remote", remote, "error", err)
	}
}
