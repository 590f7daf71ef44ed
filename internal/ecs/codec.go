package ecs

import (
	"encoding/json"
	"fmt"
)

// registry maps each kind to a constructor for its empty payload.
var registry = [kindCount]func() Component{
	KindPosition:     func() Component { return &Position{} },
	KindVelocity:     func() Component { return &Velocity{} },
	KindHealth:       func() Component { return &Health{} },
	KindInventory:    func() Component { return &Inventory{} },
	KindEquipped:     func() Component { return &Equipped{} },
	KindTarget:       func() Component { return &Target{} },
	KindTargetRadius: func() Component { return &TargetRadius{} },
	KindEventTrigger: func() Component { return &EventTrigger{} },
	KindExit:         func() Component { return &Exit{} },
	KindName:         func() Component { return &Name{} },
	KindSize:         func() Component { return &Size{} },
	KindVolume:       func() Component { return &Volume{} },
	KindWorth:        func() Component { return &Worth{} },
	KindUpgrades:     func() Component { return NewUpgrades() },
	KindType:         func() Component { return &Type{} },
	KindDamageFactor: func() Component { return &DamageFactor{} },
	KindMultiplier:   func() Component { return &Multiplier{} },
	KindText:         func() Component { return &Text{} },
}

// NewComponent returns an empty component of the given kind.
func NewComponent(k Kind) (Component, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return registry[k](), nil
}

func UnmarshalComponent(k Kind, data []byte) (Component, error) {
	c, err := NewComponent(k)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", k, err)
	}
	return c, nil
}

// MarshalComponents encodes components keyed by kind.
func MarshalComponents(cs []Component) (map[Kind]json.RawMessage, error) {
	out := make(map[Kind]json.RawMessage, len(cs))
	for _, c := range cs {
		raw, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", c.Kind(), err)
		}
		out[c.Kind()] = raw
	}
	return out, nil
}
