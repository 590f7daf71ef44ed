package ecs

import "fmt"

// Kind identifies a component variant. An entity holds at most one component per kind.
type Kind int

const (
	KindPosition Kind = iota
	KindVelocity
	KindHealth
	KindInventory
	KindEquipped
	KindTarget
	KindTargetRadius
	KindEventTrigger
	KindExit
	KindName
	KindSize
	KindVolume
	KindWorth
	KindUpgrades
	KindType
	KindDamageFactor
	KindMultiplier
	KindText
	kindCount
)

var kindNames = [kindCount]string{
	KindPosition:     "position",
	KindVelocity:     "velocity",
	KindHealth:       "health",
	KindInventory:    "inventory",
	KindEquipped:     "equipped",
	KindTarget:       "target",
	KindTargetRadius: "target_radius",
	KindEventTrigger: "event_trigger",
	KindExit:         "exit",
	KindName:         "name",
	KindSize:         "size",
	KindVolume:       "volume",
	KindWorth:        "worth",
	KindUpgrades:     "upgrades",
	KindType:         "type",
	KindDamageFactor: "damage_factor",
	KindMultiplier:   "multiplier",
	KindText:         "text",
}

// Kinds returns every known kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// EntityType classifies what an entity is for gameplay purposes.
type EntityType string

const (
	TypePlayer       EntityType = "PLAYER"
	TypeZombie       EntityType = "ZOMBIE"
	TypeNPC          EntityType = "NPC"
	TypeWall         EntityType = "WALL"
	TypeItem         EntityType = "ITEM"
	TypeKey          EntityType = "KEY"
	TypeHealthPotion EntityType = "HEALTH_POTION"
	TypeMoney        EntityType = "MONEY"
	TypeWeapon       EntityType = "WEAPON"
	TypePortal       EntityType = "PORTAL"
	TypeContainer    EntityType = "CONTAINER"
	TypeBullet       EntityType = "BULLET"
)

func (t EntityType) Valid() bool {
	switch t {
	case TypePlayer, TypeZombie, TypeNPC, TypeWall, TypeItem, TypeKey, TypeHealthPotion,
		TypeMoney, TypeWeapon, TypePortal, TypeContainer, TypeBullet:
		return true
	}
	return false
}
