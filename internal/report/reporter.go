package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const DefaultInterval = time.Minute

// Source produces the current status. It may be called from any goroutine.
type Source interface {
	Status(ctx context.Context) (Status, error)
}

// Responder answers requests on a subject.
type Responder interface {
	Ready() <-chan struct{}
	Respond(subject string, handler func(data []byte) []byte) (func(), error)
}

// Reporter logs the status report periodically and serves it on request.
type Reporter struct {
	source   Source
	renderer *Renderer
	interval time.Duration

	bus     Responder
	subject string
	timeout time.Duration
}

type ReporterOpt func(*Reporter)

func WithInterval(d time.Duration) ReporterOpt {
	return func(r *Reporter) {
		r.interval = d
	}
}

// WithResponder serves the report to requests on subject.
func WithResponder(bus Responder, subject string) ReporterOpt {
	return func(r *Reporter) {
		r.bus = bus
		r.subject = subject
	}
}

func NewReporter(source Source, renderer *Renderer, opts ...ReporterOpt) *Reporter {
	r := &Reporter{
		source:   source,
		renderer: renderer,
		interval: DefaultInterval,
		timeout:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report renders the current status.
func (r *Reporter) Report(ctx context.Context) (string, error) {
	st, err := r.source.Status(ctx)
	if err != nil {
		return "", fmt.Errorf("collecting status: %w", err)
	}
	return r.renderer.Render(st)
}

func (r *Reporter) Start(ctx context.Context) error {
	if r.bus != nil {
		select {
		case <-r.bus.Ready():
		case <-ctx.Done():
			return nil
		}
		unsub, err := r.bus.Respond(r.subject, r.respond)
		if err != nil {
			return fmt.Errorf("serving report: %w", err)
		}
		defer unsub()
	}

	if r.interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			text, err := r.Report(ctx)
			if err != nil {
				slog.WarnContext(ctx, "rendering status report", "error", err)
				continue
			}
			slog.InfoContext(ctx, "status report", "report", text)
		}
	}
}

func (r *Reporter) respond([]byte) []byte {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	text, err := r.Report(ctx)
	if err != nil {
		slog.Warn("rendering status report", "error", err)
		return []byte("status unavailable: " + err.Error())
	}
	return []byte(text)
}
