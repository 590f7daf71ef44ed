package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkg/profile"
)

type ProfileConfig struct {
	// Mode is one of cpu, mem, block, mutex, goroutine or trace. Empty disables profiling.
	Mode string `json:"mode"`
	Path string `json:"path"`
}

var profileModes = map[string]func(*profile.Profile){
	"cpu":       profile.CPUProfile,
	"mem":       profile.MemProfile,
	"block":     profile.BlockProfile,
	"mutex":     profile.MutexProfile,
	"goroutine": profile.GoroutineProfile,
	"trace":     profile.TraceProfile,
}

func (c *ProfileConfig) Validate() error {
	if c.Mode == "" {
		return nil
	}
	if _, ok := profileModes[c.Mode]; !ok {
		return fmt.Errorf("unknown profile mode %q", c.Mode)
	}
	return nil
}

func (c *ProfileConfig) enabled() bool {
	return c.Mode != ""
}

// profiler records a profile for as long as the application runs.
type profiler struct {
	cfg ProfileConfig
}

func (p *profiler) Start(ctx context.Context) error {
	opts := []func(*profile.Profile){profileModes[p.cfg.Mode], profile.NoShutdownHook, profile.Quiet}
	if p.cfg.Path != "" {
		opts = append(opts, profile.ProfilePath(p.cfg.Path))
	}

	slog.InfoContext(ctx, "profiling", "mode", p.cfg.Mode, "path", p.cfg.Path)
	stop := profile.Start(opts...)
	<-ctx.Done()
	stop.Stop()
	return nil
}
