package command

import (
	"fmt"
	"net"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-service/service"

	"github.com/TomCrypto/Team-208-s-Game/internal/listener"
)

type ListenerType int

const (
	ListenerTypeTCP ListenerType = iota
	ListenerTypeWebSocket
)

func (lt *ListenerType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "tcp":
		*lt = ListenerTypeTCP
	case "websocket":
		*lt = ListenerTypeWebSocket
	default:
		return fmt.Errorf("unknown listener type: %s", text)
	}
	return nil
}

func (lt ListenerType) String() string {
	switch lt {
	case ListenerTypeTCP:
		return "tcp"
	case ListenerTypeWebSocket:
		return "websocket"
	default:
		return fmt.Sprintf("ListenerType(%d)", int(lt))
	}
}

type ListenerConfig struct {
	Protocol ListenerType `json:"protocol"`
	Address  string       `json:"address"`
	Path     string       `json:"path,omitempty"`
}

func (cl *ListenerConfig) Validate() error {
	el := errors.NewErrorList()

	if _, _, err := net.SplitHostPort(cl.Address); err != nil {
		el.Add(fmt.Errorf("address %q: %w", cl.Address, err))
	}
	if cl.Path != "" && cl.Protocol != ListenerTypeWebSocket {
		el.Add(fmt.Errorf("path is only valid for websocket listeners"))
	}

	return el.Err()
}

func (cl *ListenerConfig) BuildListener(cm *listener.ConnectionManager) (service.Worker, error) {
	switch cl.Protocol {
	case ListenerTypeTCP:
		return listener.NewTCPListener(cl.Address, cm), nil
	case ListenerTypeWebSocket:
		return listener.NewWebSocketListener(cl.Address, cl.Path, cm), nil
	default:
		return nil, fmt.Errorf("unknown listener type: %v", cl.Protocol)
	}
}
