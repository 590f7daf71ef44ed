package command

import (
	"fmt"
	"net"
	"time"

	"github.com/pixil98/go-errors"

	"github.com/TomCrypto/Team-208-s-Game/internal/driver"
	"github.com/TomCrypto/Team-208-s-Game/internal/report"
	"github.com/TomCrypto/Team-208-s-Game/internal/session"
)

type Config struct {
	TickInterval   string           `json:"tick_interval"`
	MaxPlayers     int              `json:"max_players"`
	Blacklist      []string         `json:"blacklist"`
	Listeners      []ListenerConfig `json:"listeners"`
	Nats           NatsConfig       `json:"nats"`
	Storage        StorageConfig    `json:"storage"`
	TuningPath     string           `json:"tuning_path"`
	ReportInterval string           `json:"report_interval"`
	ReportTemplate string           `json:"report_template"`
	Profile        ProfileConfig    `json:"profile"`
	Seed           uint64           `json:"seed"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.TickInterval != "" {
		d, err := time.ParseDuration(c.TickInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing tick_interval: %w", err))
		} else if d <= 0 {
			el.Add(fmt.Errorf("tick_interval must be positive"))
		}
	}

	if c.MaxPlayers < 0 {
		el.Add(fmt.Errorf("max_players must not be negative"))
	}

	for i, host := range c.Blacklist {
		if net.ParseIP(host) == nil {
			el.Add(fmt.Errorf("blacklist %d: %q is not an ip address", i, host))
		}
	}

	if len(c.Listeners) == 0 {
		el.Add(fmt.Errorf("at least one listener is required"))
	}
	for i, l := range c.Listeners {
		err := l.Validate()
		if err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}

	if c.ReportInterval != "" {
		d, err := time.ParseDuration(c.ReportInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing report_interval: %w", err))
		} else if d <= 0 {
			el.Add(fmt.Errorf("report_interval must be positive"))
		}
	}

	el.Add(c.Nats.Validate())
	el.Add(c.Storage.Validate())
	el.Add(c.Profile.Validate())

	return el.Err()
}

func (c *Config) tickLength() time.Duration {
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil || d <= 0 {
		return driver.DefaultTickLength
	}
	return d
}

func (c *Config) maxPlayers() int {
	if c.MaxPlayers == 0 {
		return session.DefaultMaxSessions
	}
	return c.MaxPlayers
}

func (c *Config) reportInterval() time.Duration {
	d, err := time.ParseDuration(c.ReportInterval)
	if err != nil || d <= 0 {
		return report.DefaultInterval
	}
	return d
}
