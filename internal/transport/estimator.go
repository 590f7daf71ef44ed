package transport

import (
	"sync"
	"time"
)

const (
	DefaultSmoothing = 0.125
	DefaultWindow    = time.Second
)

// EWMA is an exponentially weighted moving average. The first sample seeds the average.
type EWMA struct {
	mu     sync.Mutex
	alpha  float64
	value  float64
	seeded bool
}

func NewEWMA(alpha float64) *EWMA {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultSmoothing
	}
	return &EWMA{alpha: alpha}
}

func (e *EWMA) Offer(sample float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.seeded {
		e.value, e.seeded = sample, true
		return
	}
	e.value += e.alpha * (sample - e.value)
}

// Estimate returns the current average, or zero before any sample.
func (e *EWMA) Estimate() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}

// Throughput estimates bytes per second. Bytes are accumulated over a window and each
// closed window feeds its rate into an EWMA.
type Throughput struct {
	mu      sync.Mutex
	avg     *EWMA
	window  time.Duration
	now     func() time.Time
	started time.Time
	bytes   int
}

func NewThroughput(alpha float64, window time.Duration, now func() time.Time) *Throughput {
	if window <= 0 {
		window = DefaultWindow
	}
	if now == nil {
		now = time.Now
	}
	return &Throughput{avg: NewEWMA(alpha), window: window, now: now}
}

func (t *Throughput) Offer(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if t.started.IsZero() {
		t.started = now
	}
	t.bytes += n

	elapsed := now.Sub(t.started)
	if elapsed < t.window {
		return
	}
	t.avg.Offer(float64(t.bytes) / elapsed.Seconds())
	t.started, t.bytes = now, 0
}

func (t *Throughput) Estimate() float64 {
	return t.avg.Estimate()
}
