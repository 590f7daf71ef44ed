package driver

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const (
	DefaultTickLength = time.Second / 30
)

var ErrStopped = errors.New("driver stopped")

type Manager interface {
	Tick(context.Context) error
}

type request struct {
	fn   func(context.Context)
	done chan struct{}
}

// Driver runs its managers on a fixed period and serializes every other access to their
// state through Do. Everything the managers own is touched only by the Start goroutine.
type Driver struct {
	tickLength time.Duration
	managers   []Manager

	inbox   chan request
	stopped chan struct{}
}

func NewDriver(managers []Manager, opts ...DriverOpt) *Driver {
	d := &Driver{
		tickLength: DefaultTickLength,
		managers:   managers,
		inbox:      make(chan request),
		stopped:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Driver) TickLength() time.Duration {
	return d.tickLength
}

// Start runs ticks until ctx is cancelled or a manager fails. Pending Do calls return
// ErrStopped once Start has returned.
func (d *Driver) Start(ctx context.Context) error {
	defer close(d.stopped)

	timer := time.NewTimer(d.tickLength)
	defer timer.Stop()
	next := time.Now().Add(d.tickLength)

	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-d.inbox:
			req.fn(ctx)
			close(req.done)
		case <-timer.C:
			if err := d.Tick(ctx); err != nil {
				return err
			}

			next = next.Add(d.tickLength)
			wait := time.Until(next)
			if wait < 0 {
				slog.WarnContext(ctx, "tick overran", "behind", -wait, "tick_length", d.tickLength)
				next = time.Now()
				wait = 0
			}
			timer.Reset(wait)
		}
	}
}

func (d *Driver) Tick(ctx context.Context) error {
	for _, m := range d.managers {
		if err := m.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Do runs fn on the driver goroutine between ticks and waits for it to finish.
func (d *Driver) Do(ctx context.Context, fn func(context.Context)) error {
	req := request{fn: fn, done: make(chan struct{})}

	select {
	case d.inbox <- req:
	case <-d.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	<-req.done
	return nil
}

// Stopped is closed once Start returns.
func (d *Driver) Stopped() <-chan struct{} {
	return d.stopped
}
