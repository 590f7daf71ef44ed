package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/TomCrypto/Team-208-s-Game/internal/driver"
	"github.com/TomCrypto/Team-208-s-Game/internal/session"
	"github.com/TomCrypto/Team-208-s-Game/internal/transport"
)

// Serve runs one client connection until either side closes it. rw is closed when the
// session ends if it implements io.Closer.
func (s *GameServer) Serve(ctx context.Context, rw io.ReadWriter, remote string) error {
	conn := transport.NewConn(rw, s.connOpts...)

	var sess *session.Session
	var acceptErr error
	if err := s.driver.Do(ctx, func(context.Context) {
		sess, acceptErr = s.Accept(remote)
		if acceptErr == nil {
			sess.SetLink(conn)
		}
	}); err != nil {
		return err
	}
	if acceptErr != nil {
		return fmt.Errorf("accepting %s: %w", remote, acceptErr)
	}

	// Session fields belong to the driver goroutine; only the immutable ID is logged here.
	logArgs := []any{"session", sess.ID().String(), "remote", remote}
	closeConn := sync.OnceFunc(func() {
		if c, ok := rw.(io.Closer); ok {
			_ = c.Close()
		}
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.writeLoop(conn, sess, closeConn, logArgs)
	}()
	go func() {
		defer wg.Done()
		select {
		case <-sess.Done():
		case <-ctx.Done():
		}
		closeConn()
	}()

	readErr := s.readLoop(ctx, conn, sess, logArgs)

	err := s.driver.Do(context.Background(), func(context.Context) {
		s.sessions.Disconnect(sess)
	})
	if errors.Is(err, driver.ErrStopped) {
		// Start disconnects whatever is left once the driver stops.
		<-sess.Done()
	}

	wg.Wait()
	return readErr
}

func (s *GameServer) readLoop(ctx context.Context, conn *transport.Conn, sess *session.Session, logArgs []any) error {
	for {
		payload, err := conn.ReadPacket()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			select {
			case <-sess.Done():
				return nil
			default:
			}
			return fmt.Errorf("reading packet: %w", err)
		}

		pkt, err := s.codec.DecodeInbound(payload)
		if err != nil {
			slog.WarnContext(ctx, "closing connection", append(logArgs, "error", err)...)
			return err
		}

		err = s.driver.Do(ctx, func(ctx context.Context) {
			s.HandlePacket(ctx, sess, pkt)
		})
		if err != nil {
			return nil
		}
	}
}

func (s *GameServer) writeLoop(conn *transport.Conn, sess *session.Session, closeConn func(), logArgs []any) {
	for payload := range sess.Outbound() {
		if err := conn.WritePacket(payload); err != nil {
			slog.Warn("writing packet", append(logArgs, "error", err)...)
			closeConn()
			for range sess.Outbound() {
			}
			return
		}
	}
}
