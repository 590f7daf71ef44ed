package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	// HeaderSize is a big-endian int32 payload length followed by an int64 send time in ms.
	HeaderSize = 12

	DefaultMaxPacketSize = 1 << 20
)

var (
	ErrProtocolViolation = errors.New("protocol violation")
	ErrPacketTooLarge    = errors.New("packet too large")
	ErrEmptyPacket       = errors.New("empty packet")
)

type config struct {
	maxPacketSize int
	smoothing     float64
	window        time.Duration
	now           func() time.Time
}

type Opt func(*config)

func WithMaxPacketSize(n int) Opt {
	return func(c *config) {
		c.maxPacketSize = n
	}
}

// WithClock replaces time.Now for stamping and measuring frames.
func WithClock(now func() time.Time) Opt {
	return func(c *config) {
		c.now = now
	}
}

func WithSmoothing(alpha float64) Opt {
	return func(c *config) {
		c.smoothing = alpha
	}
}

func WithThroughputWindow(d time.Duration) Opt {
	return func(c *config) {
		c.window = d
	}
}

func newConfig(opts []Opt) config {
	c := config{
		maxPacketSize: DefaultMaxPacketSize,
		smoothing:     DefaultSmoothing,
		window:        DefaultWindow,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Reader splits a byte stream into frames and measures latency and throughput of what it reads.
type Reader struct {
	cfg        config
	latency    *EWMA
	throughput *Throughput
}

func NewReader(opts ...Opt) *Reader {
	cfg := newConfig(opts)
	return &Reader{
		cfg:        cfg,
		latency:    NewEWMA(cfg.smoothing),
		throughput: NewThroughput(cfg.smoothing, cfg.window, cfg.now),
	}
}

// Next parses one frame from the front of buf. It returns the payload and the number of bytes
// consumed. When buf does not hold a whole frame yet, nothing is consumed and payload is nil.
func (r *Reader) Next(buf []byte) ([]byte, int, error) {
	if len(buf) < HeaderSize {
		return nil, 0, nil
	}

	size := int32(binary.BigEndian.Uint32(buf[0:4]))
	sent := int64(binary.BigEndian.Uint64(buf[4:12]))

	if size <= 0 || int(size) > r.cfg.maxPacketSize {
		slog.Warn("rejecting invalid frame", "size", size)
		return nil, 0, fmt.Errorf("%w: invalid frame size %d", ErrProtocolViolation, size)
	}

	total := HeaderSize + int(size)
	if len(buf) < total {
		return nil, 0, nil
	}

	payload := make([]byte, size)
	copy(payload, buf[HeaderSize:total])

	r.throughput.Offer(total)
	r.latency.Offer(RoundTrip(r.cfg.now(), sent))
	return payload, total, nil
}

// Latency is the smoothed round-trip time in seconds.
func (r *Reader) Latency() float64 {
	return r.latency.Estimate()
}

// Throughput is the smoothed inbound rate in bytes per second.
func (r *Reader) Throughput() float64 {
	return r.throughput.Estimate()
}

// RoundTrip estimates the round-trip time in seconds from a frame's embedded send time.
// Clock skew can make the result negative; it is clamped to zero.
func RoundTrip(now time.Time, sentMillis int64) float64 {
	rtt := 2 * float64(now.UnixMilli()-sentMillis) / 1000
	if rtt < 0 {
		slog.Debug("frame yielded negative latency, assuming zero", "rtt", rtt)
		return 0
	}
	return rtt
}

// Writer frames outbound payloads.
type Writer struct {
	cfg        config
	throughput *Throughput
}

func NewWriter(opts ...Opt) *Writer {
	cfg := newConfig(opts)
	return &Writer{
		cfg:        cfg,
		throughput: NewThroughput(cfg.smoothing, cfg.window, cfg.now),
	}
}

// Frame returns payload prefixed with its header.
func (w *Writer) Frame(payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyPacket
	}
	if len(payload) > w.cfg.maxPacketSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrPacketTooLarge, len(payload), w.cfg.maxPacketSize)
	}

	out := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint32(out[0:4], uint32(len(payload)))
	binary.BigEndian.PutUint64(out[4:12], uint64(w.cfg.now().UnixMilli()))
	copy(out[HeaderSize:], payload)

	w.throughput.Offer(len(out))
	return out, nil
}

// Throughput is the smoothed outbound rate in bytes per second.
func (w *Writer) Throughput() float64 {
	return w.throughput.Estimate()
}
