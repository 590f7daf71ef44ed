package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	goerrors "github.com/pixil98/go-errors"

	"github.com/TomCrypto/Team-208-s-Game/internal/commands"
	"github.com/TomCrypto/Team-208-s-Game/internal/content"
	"github.com/TomCrypto/Team-208-s-Game/internal/driver"
	"github.com/TomCrypto/Team-208-s-Game/internal/game"
	"github.com/TomCrypto/Team-208-s-Game/internal/messaging"
	"github.com/TomCrypto/Team-208-s-Game/internal/protocol"
	"github.com/TomCrypto/Team-208-s-Game/internal/session"
	"github.com/TomCrypto/Team-208-s-Game/internal/storage"
	"github.com/TomCrypto/Team-208-s-Game/internal/transport"
)

// Bus fans chat out between sessions.
type Bus interface {
	Ready() <-chan struct{}
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// GameServer owns the world and every session. Apart from Serve, Start and Status, its
// methods must run on the driver goroutine.
type GameServer struct {
	world    *game.World
	factory  *content.Factory
	handler  *commands.Handler
	codec    *protocol.Codec
	sessions *session.List
	driver   *driver.Driver

	bus       Bus
	store     storage.Persistence
	blacklist map[string]bool
	connOpts  []transport.Opt

	maxPlayers int
	tickLength time.Duration
	started    time.Time
	ticks      uint64
}

func NewGameServer(w *game.World, f *content.Factory, codec *protocol.Codec, opts ...GameServerOpt) *GameServer {
	s := &GameServer{
		world:      w,
		factory:    f,
		handler:    commands.NewHandler(f),
		codec:      codec,
		blacklist:  map[string]bool{},
		maxPlayers: session.DefaultMaxSessions,
		tickLength: driver.DefaultTickLength,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.sessions = session.NewList(
		session.WithMaxSessions(s.maxPlayers),
		session.WithDisconnectHook(s.onDisconnect),
	)
	s.driver = driver.NewDriver([]driver.Manager{s}, driver.WithTickLength(s.tickLength))

	return s
}

func (s *GameServer) World() *game.World {
	return s.world
}

func (s *GameServer) Sessions() *session.List {
	return s.sessions
}

// Do runs fn on the driver goroutine.
func (s *GameServer) Do(ctx context.Context, fn func(context.Context)) error {
	return s.driver.Do(ctx, fn)
}

// Start runs the game loop until ctx is cancelled, then disconnects everyone and saves the
// world.
func (s *GameServer) Start(ctx context.Context) error {
	if s.bus != nil {
		select {
		case <-s.bus.Ready():
		case <-ctx.Done():
			return nil
		}

		unsub, err := s.bus.Subscribe(messaging.PublicSubject, s.onPublicChat)
		if err != nil {
			return fmt.Errorf("subscribing to public chat: %w", err)
		}
		defer unsub()
	}

	s.started = time.Now()
	slog.InfoContext(ctx, "game server started",
		"tick_length", s.tickLength,
		"locations", len(s.world.Locations()),
		"max_players", s.maxPlayers,
	)

	el := goerrors.NewErrorList()
	el.Add(s.driver.Start(ctx))

	// The driver has stopped, so this goroutine owns the world again.
	s.sessions.DisconnectAll()
	el.Add(s.Save())

	slog.InfoContext(ctx, "game server stopped", "ticks", s.ticks)
	return el.Err()
}

// Save persists the world. It is a no-op without a store.
func (s *GameServer) Save() error {
	if s.store == nil {
		return nil
	}
	snap, err := storage.NewSnapshot(s.world, time.Now())
	if err != nil {
		return fmt.Errorf("capturing world: %w", err)
	}
	if err := s.store.Save(snap); err != nil {
		return fmt.Errorf("saving world: %w", err)
	}
	slog.Info("world saved", "locations", len(snap.Locations), "saved_players", len(snap.Players))
	return nil
}

// Accept registers a session for a new connection from remote.
func (s *GameServer) Accept(remote string) (*session.Session, error) {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		host = remote
	}
	if s.blacklist[host] {
		return nil, fmt.Errorf("%w: %s", ErrBlacklisted, host)
	}

	sess := session.New(remote, s.codec)
	if err := s.sessions.Add(sess); err != nil {
		return nil, err
	}

	slog.Info("client connected", append(sess.LogArgs(), "remote", remote)...)
	return sess, nil
}

// HandlePacket routes one decoded client packet. Actions are queued for the next tick.
func (s *GameServer) HandlePacket(ctx context.Context, sess *session.Session, pkt protocol.Packet) {
	if sess.Closed() {
		return
	}

	switch p := pkt.(type) {
	case protocol.LoginRequest:
		s.login(ctx, sess, p.Name)
	case protocol.PublicMessage:
		s.publicChat(ctx, sess, p)
	case protocol.PrivateMessage:
		s.privateChat(ctx, sess, p)
	case protocol.Action:
		if !sess.Enqueue(p) {
			slog.WarnContext(ctx, "ignoring action before login", append(sess.LogArgs(), "channel", p.Channel())...)
		}
	default:
		slog.WarnContext(ctx, "ignoring unexpected packet", append(sess.LogArgs(), "channel", pkt.Channel())...)
	}
}

func (s *GameServer) login(ctx context.Context, sess *session.Session, name string) {
	status := s.tryLogin(ctx, sess, name)
	sess.Send(protocol.LoginReply{Status: status})
}

func (s *GameServer) tryLogin(ctx context.Context, sess *session.Session, name string) protocol.LoginStatus {
	if sess.LoggedIn() {
		return protocol.LoginAlreadyIn
	}
	if !session.ValidName(name) {
		return protocol.LoginInvalidName
	}
	if _, ok := s.sessions.ByName(name); ok {
		return protocol.LoginNameTaken
	}
	// Viewers still hold the entity of a player who left this tick.
	if rec, ok := s.world.SavedPlayer(name); ok && rec.Player.Removed() {
		slog.InfoContext(ctx, "login before previous session was committed", append(sess.LogArgs(), "name", name)...)
		return protocol.LoginNameTaken
	}

	loc, player, err := s.world.LoadPlayer(name)
	switch {
	case errors.Is(err, game.ErrPlayerNotFound):
		loc = s.world.StartLocation()
		if loc == nil {
			slog.ErrorContext(ctx, "no start location for new player", append(sess.LogArgs(), "name", name)...)
			return protocol.LoginInvalidName
		}
		player = s.factory.Player(name)
		loc.Add(player)
	case err != nil:
		slog.ErrorContext(ctx, "restoring player", append(sess.LogArgs(), "name", name, "error", err)...)
		return protocol.LoginInvalidName
	}

	// EntityCreated carries the full entity to everyone else in loc.
	player.ClearModifiedComponents()
	sess.Login(name, player, loc)

	if s.bus != nil {
		unsub, err := s.bus.Subscribe(messaging.PlayerSubject(name), func(data []byte) {
			s.onPrivateChat(sess, data)
		})
		if err != nil {
			slog.ErrorContext(ctx, "subscribing to private chat", append(sess.LogArgs(), "error", err)...)
		} else {
			sess.SetUnsubscribe(unsub)
		}
	}

	slog.InfoContext(ctx, "player logged in", append(sess.LogArgs(), "location", loc.Name())...)
	return protocol.LoginOK
}

// onDisconnect runs right before a session is closed.
func (s *GameServer) onDisconnect(sess *session.Session) {
	if sess.LoggedIn() {
		s.world.SavePlayer(sess.Name(), sess.Location(), sess.Player())
	}

	args := sess.LogArgs()
	if sess.Kicked() {
		args = append(args, "reason", sess.KickReason())
	}
	slog.Info("client disconnected", args...)
}

// Tick advances the world by one step and broadcasts what changed.
func (s *GameServer) Tick(ctx context.Context) error {
	dt := s.tickLength.Seconds()
	s.world.Advance(dt)

	for _, sess := range s.sessions.Filter((*session.Session).LoggedIn) {
		for _, action := range sess.TakeActions() {
			s.dispatch(ctx, sess, action)
		}
	}

	for _, loc := range s.world.Locations() {
		s.world.Process(loc, dt)
	}

	s.Commit()
	s.sessions.DisconnectKicked()
	s.ticks++
	return nil
}

func (s *GameServer) dispatch(ctx context.Context, sess *session.Session, action protocol.Action) {
	err := s.handler.Dispatch(ctx, sess, action, s.world)
	if err == nil {
		return
	}

	var userErr *commands.UserError
	if errors.As(err, &userErr) {
		sess.Notify(userErr.Message)
	}
	slog.WarnContext(ctx, "action failed", append(sess.LogArgs(), "channel", action.Channel(), "error", err)...)
}
