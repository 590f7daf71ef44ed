package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/TomCrypto/Team-208-s-Game/internal/messaging"
	"github.com/TomCrypto/Team-208-s-Game/internal/protocol"
	"github.com/TomCrypto/Team-208-s-Game/internal/session"
)

func (s *GameServer) publicChat(ctx context.Context, sess *session.Session, p protocol.PublicMessage) {
	if !sess.LoggedIn() {
		slog.WarnContext(ctx, "ignoring chat before login", sess.LogArgs()...)
		return
	}

	msg := protocol.PublicMessage{Sender: sess.Name(), Text: p.Text}
	if s.bus == nil {
		s.deliverPublic(msg)
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		slog.ErrorContext(ctx, "encoding chat", append(sess.LogArgs(), "error", err)...)
		return
	}
	if err := s.bus.Publish(messaging.PublicSubject, data); err != nil {
		slog.ErrorContext(ctx, "publishing chat", append(sess.LogArgs(), "error", err)...)
	}
}

func (s *GameServer) privateChat(ctx context.Context, sess *session.Session, p protocol.PrivateMessage) {
	if !sess.LoggedIn() {
		slog.WarnContext(ctx, "ignoring chat before login", sess.LogArgs()...)
		return
	}

	recipient, ok := s.sessions.ByName(p.Recipient)
	if !ok {
		sess.Notify(fmt.Sprintf("%s is not online", p.Recipient))
		return
	}

	msg := protocol.PrivateMessage{Sender: sess.Name(), Recipient: p.Recipient, Text: p.Text}
	if s.bus == nil {
		recipient.Send(msg)
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		slog.ErrorContext(ctx, "encoding chat", append(sess.LogArgs(), "error", err)...)
		return
	}
	if err := s.bus.Publish(messaging.PlayerSubject(p.Recipient), data); err != nil {
		slog.ErrorContext(ctx, "publishing chat", append(sess.LogArgs(), "error", err)...)
	}
}

// deliverPublic sends msg to every logged-in session.
func (s *GameServer) deliverPublic(msg protocol.PublicMessage) {
	for _, sess := range s.sessions.Filter((*session.Session).LoggedIn) {
		sess.Send(msg)
	}
}

// onPublicChat is called by the bus for every public message.
func (s *GameServer) onPublicChat(data []byte) {
	var msg protocol.PublicMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("dropping malformed chat", "subject", messaging.PublicSubject, "error", err)
		return
	}
	if err := s.driver.Do(context.Background(), func(context.Context) {
		s.deliverPublic(msg)
	}); err != nil {
		slog.Debug("chat not delivered", "error", err)
	}
}

// onPrivateChat is called by the bus for messages addressed to sess.
func (s *GameServer) onPrivateChat(sess *session.Session, data []byte) {
	var msg protocol.PrivateMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("dropping malformed chat", append(sess.LogArgs(), "error", err)...)
		return
	}
	if err := s.driver.Do(context.Background(), func(context.Context) {
		sess.Send(msg)
	}); err != nil {
		slog.Debug("chat not delivered", append(sess.LogArgs(), "error", err)...)
	}
}
