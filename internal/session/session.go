package session

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/TomCrypto/Team-208-s-Game/internal/ecs"
	"github.com/TomCrypto/Team-208-s-Game/internal/game"
	"github.com/TomCrypto/Team-208-s-Game/internal/protocol"
	"github.com/google/uuid"
)

const DefaultOutboundSize = 256

var ErrOutboundFull = errors.New("outbound queue full")

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,16}$`)

// ValidName reports whether name may be used to log in.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

type State int

const (
	StateAnonymous State = iota
	StateLoggedIn
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateLoggedIn:
		return "logged_in"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Encoder turns packets into payloads for the wire.
type Encoder interface {
	Encode(p protocol.Packet) ([]byte, error)
}

// LinkStats reports how the connection behind a session performs. Estimates may be read
// from any goroutine.
type LinkStats interface {
	// Latency is the smoothed round-trip time in seconds.
	Latency() float64
	InboundThroughput() float64
	OutboundThroughput() float64
}

// Session binds one connection to the player it controls. Everything except the outbound
// channel is owned by the goroutine driving ticks.
type Session struct {
	id     uuid.UUID
	remote string
	enc    Encoder

	out  chan []byte
	done chan struct{}

	state  State
	name   string
	player *ecs.Entity
	loc    *game.Location
	viewed *game.Location

	link    LinkStats
	queue   []protocol.Action
	kick    error
	unsub   func()
	logArgs []any
}

type SessionOpt func(*Session)

// WithOutboundSize sets how many payloads may wait for the connection writer.
func WithOutboundSize(n int) SessionOpt {
	return func(s *Session) {
		s.out = make(chan []byte, n)
	}
}

func New(remote string, enc Encoder, opts ...SessionOpt) *Session {
	s := &Session{
		id:     uuid.New(),
		remote: remote,
		enc:    enc,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.out == nil {
		s.out = make(chan []byte, DefaultOutboundSize)
	}
	s.logArgs = []any{"session", s.id.String()}
	return s
}

func (s *Session) ID() uuid.UUID  { return s.id }
func (s *Session) Remote() string { return s.remote }
func (s *Session) State() State   { return s.state }
func (s *Session) LoggedIn() bool { return s.state == StateLoggedIn }
func (s *Session) Closed() bool   { return s.state == StateClosed }

// Name is empty until the session logs in.
func (s *Session) Name() string {
	return s.name
}

func (s *Session) Player() *ecs.Entity {
	return s.player
}

func (s *Session) Location() *game.Location {
	return s.loc
}

func (s *Session) SetLocation(l *game.Location) {
	s.loc = l
}

// SetLink attaches the estimates of the connection serving this session.
func (s *Session) SetLink(l LinkStats) {
	s.link = l
}

// Link returns the connection estimates, if a connection was attached.
func (s *Session) Link() (LinkStats, bool) {
	return s.link, s.link != nil
}

// LogArgs returns the key/value pairs identifying this session in log lines.
func (s *Session) LogArgs() []any {
	return s.logArgs
}

// Login binds the session to a player standing in loc.
func (s *Session) Login(name string, player *ecs.Entity, loc *game.Location) {
	s.state = StateLoggedIn
	s.name = name
	s.player = player
	s.loc = loc
	s.viewed = nil
	s.logArgs = []any{"session", s.id.String(), "player", name}
}

// LocationChanged reports whether the session moved since its location was last broadcast.
func (s *Session) LocationChanged() bool {
	return s.LoggedIn() && s.loc != s.viewed
}

// Viewed is the location the client was last told about.
func (s *Session) Viewed() *game.Location {
	return s.viewed
}

// UpdateLocation records the current location as broadcast.
func (s *Session) UpdateLocation() {
	s.viewed = s.loc
}

// Enqueue queues an action for the next tick. Actions of anonymous or closed sessions
// are dropped.
func (s *Session) Enqueue(a protocol.Action) bool {
	if !s.LoggedIn() {
		return false
	}
	s.queue = append(s.queue, a)
	return true
}

// TakeActions returns the queued actions and empties the queue.
func (s *Session) TakeActions() []protocol.Action {
	q := s.queue
	s.queue = nil
	return q
}

func (s *Session) Pending() int {
	return len(s.queue)
}

// Send encodes p and queues it for the connection. It never blocks: a session whose queue
// is full is flagged for disconnection.
func (s *Session) Send(p protocol.Packet) {
	if s.Closed() || s.kick != nil {
		return
	}
	payload, err := s.enc.Encode(p)
	if err != nil {
		slog.Error("encoding packet", append(s.LogArgs(), "channel", p.Channel(), "error", err)...)
		return
	}
	select {
	case s.out <- payload:
	default:
		slog.Warn("outbound queue full, disconnecting", s.LogArgs()...)
		s.Kick(ErrOutboundFull)
	}
}

// Notify sends a server notice to the player.
func (s *Session) Notify(text string) {
	s.Send(protocol.PrivateMessage{Recipient: s.name, Text: text})
}

// Kick flags the session for disconnection at the end of the tick.
func (s *Session) Kick(reason error) {
	if s.kick == nil {
		s.kick = reason
	}
}

func (s *Session) Kicked() bool {
	return s.kick != nil
}

// KickReason is the error passed to the first Kick.
func (s *Session) KickReason() error {
	return s.kick
}

// SetUnsubscribe registers a function run when the session closes.
func (s *Session) SetUnsubscribe(fn func()) {
	s.unsub = fn
}

// Outbound yields encoded payloads until the session closes.
func (s *Session) Outbound() <-chan []byte {
	return s.out
}

// Done is closed when the session closes.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close drops queued actions and stops the outbound channel. Closing twice is a no-op.
func (s *Session) Close() {
	if s.Closed() {
		return
	}
	s.state = StateClosed
	s.queue = nil
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
	close(s.out)
	close(s.done)
}
