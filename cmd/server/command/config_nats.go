package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"

	"github.com/TomCrypto/Team-208-s-Game/internal/messaging"
)

type NatsConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	StartTimeout string `json:"start_timeout"`
	// InProcess keeps the embedded server off the network.
	InProcess bool `json:"in_process"`
}

func (n *NatsConfig) Validate() error {
	el := errors.NewErrorList()

	if n.StartTimeout != "" {
		_, err := time.ParseDuration(n.StartTimeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing nats start_timeout: %w", err))
		}
	}
	if n.Port < 0 || n.Port > 65535 {
		el.Add(fmt.Errorf("nats port %d out of range", n.Port))
	}
	if n.InProcess && (n.Host != "" || n.Port != 0) {
		el.Add(fmt.Errorf("nats host and port cannot be set with in_process"))
	}

	return el.Err()
}

func (c *NatsConfig) buildNatsServer() (*messaging.NatsServer, error) {
	var opts []messaging.NatsServerOpt
	if c.StartTimeout != "" {
		d, err := time.ParseDuration(c.StartTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing start_timeout: %w", err)
		}
		opts = append(opts, messaging.WithStartTimeout(d))
	}
	if c.Host != "" {
		opts = append(opts, messaging.WithHost(c.Host))
	}
	if c.Port != 0 {
		opts = append(opts, messaging.WithPort(c.Port))
	}
	if c.InProcess {
		opts = append(opts, messaging.WithInProcess())
	}

	s, err := messaging.NewNatsServer(opts...)
	if err != nil {
		return nil, err
	}

	return s, nil
}
