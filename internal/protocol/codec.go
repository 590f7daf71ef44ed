package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrProtocolViolation = errors.New("protocol violation")
	ErrUnknownPacket     = fmt.Errorf("%w: unknown packet", ErrProtocolViolation)
)

const (
	flagRaw  byte = 0
	flagZstd byte = 1

	DefaultCompressThreshold = 1024
	DefaultMaxDecoded        = 1 << 20
)

type envelope struct {
	Type    Type            `json:"type"`
	Channel Channel         `json:"channel"`
	Body    json.RawMessage `json:"body"`
}

// Codec turns packets into transport payloads and back. Payloads start with a flag byte
// telling whether the JSON envelope that follows is zstd compressed.
//
// A Codec is safe for concurrent use.
type Codec struct {
	threshold  int
	maxDecoded uint64
	enc        *zstd.Encoder
	dec        *zstd.Decoder
	inbound    *jsonschema.Schema
}

type CodecOpt func(*Codec)

// WithCompressThreshold sets the envelope size from which payloads are compressed.
// Zero or less disables compression.
func WithCompressThreshold(n int) CodecOpt {
	return func(c *Codec) {
		c.threshold = n
	}
}

// WithMaxDecoded bounds the size of a decompressed envelope.
func WithMaxDecoded(n uint64) CodecOpt {
	return func(c *Codec) {
		c.maxDecoded = n
	}
}

func NewCodec(opts ...CodecOpt) (*Codec, error) {
	c := &Codec{
		threshold:  DefaultCompressThreshold,
		maxDecoded: DefaultMaxDecoded,
	}
	for _, opt := range opts {
		opt(c)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(c.maxDecoded))
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	schema, err := jsonschema.CompileString("inbound.schema.json", inboundSchema)
	if err != nil {
		return nil, fmt.Errorf("compiling inbound schema: %w", err)
	}

	c.enc, c.dec, c.inbound = enc, dec, schema
	return c, nil
}

// Encode serializes p into a payload.
func (c *Codec) Encode(p Packet) ([]byte, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding %s/%s: %w", p.Type(), p.Channel(), err)
	}
	data, err := json.Marshal(envelope{Type: p.Type(), Channel: p.Channel(), Body: body})
	if err != nil {
		return nil, fmt.Errorf("encoding envelope: %w", err)
	}

	if c.threshold > 0 && len(data) >= c.threshold {
		out := make([]byte, 1, len(data)/2)
		out[0] = flagZstd
		return c.enc.EncodeAll(data, out), nil
	}
	out := make([]byte, 0, len(data)+1)
	out = append(out, flagRaw)
	return append(out, data...), nil
}

// Decode parses any payload. Clients use it for everything the server sends.
func (c *Codec) Decode(payload []byte) (Packet, error) {
	data, err := c.unwrap(payload)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocolViolation, err)
	}
	return decodeBody(env)
}

// DecodeInbound parses a payload sent by a client. Only messages and actions are accepted,
// and they must match the inbound schema.
func (c *Codec) DecodeInbound(payload []byte) (Packet, error) {
	data, err := c.unwrap(payload)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocolViolation, err)
	}
	if err := c.inbound.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocolViolation, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocolViolation, err)
	}
	return decodeBody(env)
}

func (c *Codec) unwrap(payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrProtocolViolation)
	}
	switch payload[0] {
	case flagRaw:
		return payload[1:], nil
	case flagZstd:
		data, err := c.dec.DecodeAll(payload[1:], nil)
		if err != nil {
			return nil, fmt.Errorf("%w: decompressing: %v", ErrProtocolViolation, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: unknown payload flag %d", ErrProtocolViolation, payload[0])
	}
}

func decodeBody(env envelope) (Packet, error) {
	switch env.Type {
	case TypeMessage:
		switch env.Channel {
		case ChannelPublic:
			return unmarshalAs[PublicMessage](env.Body)
		case ChannelPrivate:
			return unmarshalAs[PrivateMessage](env.Body)
		case ChannelLogin:
			return unmarshalAs[LoginRequest](env.Body)
		case ChannelLoginReply:
			return unmarshalAs[LoginReply](env.Body)
		}
	case TypeAction:
		switch env.Channel {
		case ChannelMovement:
			return unmarshalAs[Movement](env.Body)
		case ChannelInteract:
			return Interact{}, nil
		case ChannelPlayerShoot:
			return unmarshalAs[PlayerShoot](env.Body)
		case ChannelUse:
			return unmarshalAs[Use](env.Body)
		case ChannelDrop:
			return unmarshalAs[Drop](env.Body)
		case ChannelUpgrade:
			return unmarshalAs[Upgrade](env.Body)
		}
	case TypeUpdate:
		switch env.Channel {
		case ChannelEntityCreated:
			return unmarshalAs[EntityCreated](env.Body)
		case ChannelEntityDeleted:
			return unmarshalAs[EntityDeleted](env.Body)
		case ChannelComponentsUpdated:
			return unmarshalAs[ComponentsUpdated](env.Body)
		case ChannelLocationChanged:
			return unmarshalAs[LocationChanged](env.Body)
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrUnknownPacket, env.Type, env.Channel)
}

func unmarshalAs[T Packet](body json.RawMessage) (Packet, error) {
	var p T
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: decoding %s/%s: %v", ErrProtocolViolation, p.Type(), p.Channel(), err)
	}
	return p, nil
}
