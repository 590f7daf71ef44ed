package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/TomCrypto/Team-208-s-Game/internal/ecs"
)

// Type is the top-level discriminant of every payload.
type Type string

const (
	TypeMessage Type = "message"
	TypeAction  Type = "action"
	TypeUpdate  Type = "update"
)

// Channel is the sub-discriminant within a Type.
type Channel string

const (
	ChannelPublic     Channel = "public"
	ChannelPrivate    Channel = "private"
	ChannelLogin      Channel = "login"
	ChannelLoginReply Channel = "login_reply"

	ChannelMovement    Channel = "movement"
	ChannelInteract    Channel = "interact"
	ChannelPlayerShoot Channel = "player_shoot"
	ChannelUse         Channel = "use"
	ChannelDrop        Channel = "drop"
	ChannelUpgrade     Channel = "upgrade"

	ChannelEntityCreated     Channel = "entity_created"
	ChannelEntityDeleted     Channel = "entity_deleted"
	ChannelComponentsUpdated Channel = "components_updated"
	ChannelLocationChanged   Channel = "location_changed"
)

// Packet is an application payload carried in one transport frame.
type Packet interface {
	Type() Type
	Channel() Channel
}

// Messages

type PublicMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

func (PublicMessage) Type() Type       { return TypeMessage }
func (PublicMessage) Channel() Channel { return ChannelPublic }

// PrivateMessage is addressed to one player. Server notices leave Sender empty.
type PrivateMessage struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Text      string `json:"text"`
}

func (PrivateMessage) Type() Type       { return TypeMessage }
func (PrivateMessage) Channel() Channel { return ChannelPrivate }

type LoginRequest struct {
	Name string `json:"name"`
}

func (LoginRequest) Type() Type       { return TypeMessage }
func (LoginRequest) Channel() Channel { return ChannelLogin }

type LoginStatus string

const (
	LoginOK          LoginStatus = "LOGGED_IN"
	LoginAlreadyIn   LoginStatus = "ALREADY_LOGGED_IN"
	LoginInvalidName LoginStatus = "INVALID_NAME"
	LoginNameTaken   LoginStatus = "NAME_TAKEN"
)

type LoginReply struct {
	Status LoginStatus `json:"status"`
}

func (LoginReply) Type() Type       { return TypeMessage }
func (LoginReply) Channel() Channel { return ChannelLoginReply }

// Actions

// Action is a typed intent submitted by a logged-in client.
type Action interface {
	Packet
	action()
}

type Direction string

const (
	DirectionUp    Direction = "UP"
	DirectionDown  Direction = "DOWN"
	DirectionLeft  Direction = "LEFT"
	DirectionRight Direction = "RIGHT"
)

type Movement struct {
	Direction Direction `json:"direction"`
}

type Interact struct{}

type PlayerShoot struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Use struct {
	ItemID uint64 `json:"item_id"`
}

type Drop struct {
	ItemID uint64 `json:"item_id"`
}

type Upgrade struct {
	Cost int    `json:"cost"`
	Kind string `json:"type"`
}

func (Movement) Type() Type          { return TypeAction }
func (Movement) Channel() Channel    { return ChannelMovement }
func (Movement) action()             {}
func (Interact) Type() Type          { return TypeAction }
func (Interact) Channel() Channel    { return ChannelInteract }
func (Interact) action()             {}
func (PlayerShoot) Type() Type       { return TypeAction }
func (PlayerShoot) Channel() Channel { return ChannelPlayerShoot }
func (PlayerShoot) action()          {}
func (Use) Type() Type               { return TypeAction }
func (Use) Channel() Channel         { return ChannelUse }
func (Use) action()                  {}
func (Drop) Type() Type              { return TypeAction }
func (Drop) Channel() Channel        { return ChannelDrop }
func (Drop) action()                 {}
func (Upgrade) Type() Type           { return TypeAction }
func (Upgrade) Channel() Channel     { return ChannelUpgrade }
func (Upgrade) action()              {}

// Updates

type EntityCreated struct {
	Entity *ecs.Entity `json:"entity"`
}

func (EntityCreated) Type() Type       { return TypeUpdate }
func (EntityCreated) Channel() Channel { return ChannelEntityCreated }

type EntityDeleted struct {
	ID uint64 `json:"id"`
}

func (EntityDeleted) Type() Type       { return TypeUpdate }
func (EntityDeleted) Channel() Channel { return ChannelEntityDeleted }

// ComponentsUpdated carries the components of one entity that changed since the last
// tick, and the kinds that were removed from it.
type ComponentsUpdated struct {
	ID         uint64
	Components []ecs.Component
	Removed    []ecs.Kind
}

func (ComponentsUpdated) Type() Type       { return TypeUpdate }
func (ComponentsUpdated) Channel() Channel { return ChannelComponentsUpdated }

type componentsUpdatedJSON struct {
	ID         uint64                       `json:"id"`
	Components map[ecs.Kind]json.RawMessage `json:"components"`
	Removed    []ecs.Kind                   `json:"removed"`
}

func (u ComponentsUpdated) MarshalJSON() ([]byte, error) {
	raw, err := ecs.MarshalComponents(u.Components)
	if err != nil {
		return nil, err
	}
	removed := u.Removed
	if removed == nil {
		removed = []ecs.Kind{}
	}
	return json.Marshal(componentsUpdatedJSON{ID: u.ID, Components: raw, Removed: removed})
}

func (u *ComponentsUpdated) UnmarshalJSON(data []byte) error {
	var w componentsUpdatedJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	u.ID, u.Removed, u.Components = w.ID, w.Removed, nil
	for _, k := range ecs.Kinds() {
		raw, ok := w.Components[k]
		if !ok {
			continue
		}
		c, err := ecs.UnmarshalComponent(k, raw)
		if err != nil {
			return fmt.Errorf("entity %d: %w", w.ID, err)
		}
		u.Components = append(u.Components, c)
	}
	return nil
}

// LocationChanged tells a client it now views a different location, with everything in it.
type LocationChanged struct {
	Name     string        `json:"name"`
	Tag      string        `json:"tag"`
	Entities []*ecs.Entity `json:"entities"`
}

func (LocationChanged) Type() Type       { return TypeUpdate }
func (LocationChanged) Channel() Channel { return ChannelLocationChanged }
