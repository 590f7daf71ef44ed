package protocol

import (
	"errors"
	"strings"
	"testing"

	"github.com/TomCrypto/Team-208-s-Game/internal/ecs"
	"github.com/pixil98/go-testutil"
)

func raw(s string) []byte {
	return append([]byte{flagRaw}, s...)
}

func TestCodec_DecodeInbound(t *testing.T) {
	tests := map[string]struct {
		payload []byte
		exp     Packet
		expErr  string
	}{
		"movement": {
			payload: raw(`{"type":"action","channel":"movement","body":{"direction":"LEFT"}}`),
			exp:     Movement{Direction: DirectionLeft},
		},
		"interact": {
			payload: raw(`{"type":"action","channel":"interact","body":{}}`),
			exp:     Interact{},
		},
		"login": {
			payload: raw(`{"type":"message","channel":"login","body":{"name":"alice"}}`),
			exp:     LoginRequest{Name: "alice"},
		},
		"upgrade": {
			payload: raw(`{"type":"action","channel":"upgrade","body":{"cost":50,"type":"Health"}}`),
			exp:     Upgrade{Cost: 50, Kind: "Health"},
		},
		"use": {
			payload: raw(`{"type":"action","channel":"use","body":{"item_id":7}}`),
			exp:     Use{ItemID: 7},
		},
		"bad direction": {
			payload: raw(`{"type":"action","channel":"movement","body":{"direction":"NORTH"}}`),
			expErr:  "protocol violation",
		},
		"update from client": {
			payload: raw(`{"type":"update","channel":"entity_deleted","body":{"id":3}}`),
			expErr:  "protocol violation",
		},
		"unknown channel": {
			payload: raw(`{"type":"action","channel":"teleport","body":{}}`),
			expErr:  "protocol violation",
		},
		"not json": {
			payload: raw(`{"type":`),
			expErr:  "protocol violation",
		},
		"empty": {
			payload: nil,
			expErr:  "empty payload",
		},
		"bad flag": {
			payload: append([]byte{9}, `{}`...),
			expErr:  "unknown payload flag",
		},
	}

	c, err := NewCodec()
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p, err := c.DecodeInbound(tt.payload)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				testutil.AssertEqual(t, "is violation", errors.Is(err, ErrProtocolViolation), true)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "packet", p, tt.exp)
		})
	}
}

func TestCodec_EncodeCompresses(t *testing.T) {
	tests := map[string]struct {
		text    string
		expFlag byte
	}{
		"short message stays raw": {
			text:    "hello",
			expFlag: flagRaw,
		},
		"long message is compressed": {
			text:    strings.Repeat("brains ", 400),
			expFlag: flagZstd,
		},
	}

	c, err := NewCodec()
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			payload, err := c.Encode(PublicMessage{Sender: "bob", Text: tt.text})
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			testutil.AssertEqual(t, "flag", payload[0], tt.expFlag)

			p, err := c.DecodeInbound(payload)
			if tt.expFlag == flagZstd {
				// Inbound chat is length limited, but Decode accepts anything the server sends.
				testutil.AssertErrorContains(t, err, "protocol violation")
				p, err = c.Decode(payload)
			}
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			testutil.AssertEqual(t, "text", p.(PublicMessage).Text, tt.text)
		})
	}
}

func TestCodec_ComponentsUpdated(t *testing.T) {
	c, err := NewCodec(WithCompressThreshold(0))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	payload, err := c.Encode(ComponentsUpdated{
		ID:         12,
		Components: []ecs.Component{ecs.NewPosition(0.25, 0.5), ecs.NewHealth(80)},
		Removed:    []ecs.Kind{ecs.KindTarget},
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	testutil.AssertEqual(t, "flag", payload[0], flagRaw)

	p, err := c.Decode(payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	u, ok := p.(ComponentsUpdated)
	testutil.AssertEqual(t, "type", ok, true)
	testutil.AssertEqual(t, "id", u.ID, uint64(12))
	testutil.AssertEqual(t, "components", len(u.Components), 2)
	testutil.AssertEqual(t, "removed", len(u.Removed), 1)
	testutil.AssertEqual(t, "removed kind", u.Removed[0], ecs.KindTarget)

	var x float64
	for _, comp := range u.Components {
		if pos, ok := comp.(*ecs.Position); ok {
			x = pos.X()
		}
	}
	testutil.AssertEqual(t, "position x", x, 0.25)
}
