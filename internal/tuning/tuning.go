package tuning

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"
)

// Tuning holds the gameplay balance numbers. Missing keys keep their defaults.
type Tuning struct {
	Player    PlayerTuning    `yaml:"player"`
	Zombie    ZombieTuning    `yaml:"zombie"`
	Weapons   WeaponTuning    `yaml:"weapons"`
	Items     ItemTuning      `yaml:"items"`
	Upgrades  UpgradeTuning   `yaml:"upgrades"`
	Container ContainerTuning `yaml:"container"`
}

type PlayerTuning struct {
	Health         int     `yaml:"health"`
	InventorySize  int     `yaml:"inventory_size"`
	InventoryItems int     `yaml:"inventory_items"`
	DamageFactor   int     `yaml:"damage_factor"`
	MoveStep       float64 `yaml:"move_step"`
	Diameter       float64 `yaml:"diameter"`
	ReachRadius    float64 `yaml:"reach_radius"`
	SpawnX         float64 `yaml:"spawn_x"`
	SpawnY         float64 `yaml:"spawn_y"`
}

type ZombieTuning struct {
	Health         int     `yaml:"health"`
	Speed          float64 `yaml:"speed"`
	DamageFactor   int     `yaml:"damage_factor"`
	AttackInterval int64   `yaml:"attack_interval_ms"`
	SightRadius    float64 `yaml:"sight_radius"`
	Diameter       float64 `yaml:"diameter"`
	MoneyDrop      int     `yaml:"money_drop"`
}

type WeaponTuning struct {
	DefaultName     string  `yaml:"default_name"`
	DefaultDamage   int     `yaml:"default_damage"`
	DefaultInterval int64   `yaml:"default_interval_ms"`
	RandomSize      int     `yaml:"random_size"`
	BulletSpeed     float64 `yaml:"bullet_speed"`
	BulletDiameter  float64 `yaml:"bullet_diameter"`
	BulletLife      int     `yaml:"bullet_life_ticks"`
	LongevityLife   int     `yaml:"longevity_life_ticks"`
	HomingRadius    float64 `yaml:"homing_radius"`
}

type ItemTuning struct {
	ItemSize   int `yaml:"item_size"`
	KeySize    int `yaml:"key_size"`
	PotionSize int `yaml:"potion_size"`
	PotionHeal int `yaml:"potion_heal"`
}

type UpgradeTuning struct {
	HealthStep     int     `yaml:"health_step"`
	DamageStep     int     `yaml:"damage_step"`
	FireRateFactor float64 `yaml:"fire_rate_factor"`
	CapacityStep   int     `yaml:"capacity_step"`
}

type ContainerTuning struct {
	Size  int `yaml:"size"`
	Items int `yaml:"items"`
}

func Default() Tuning {
	return Tuning{
		Player: PlayerTuning{
			Health:         100,
			InventorySize:  100,
			InventoryItems: 6,
			DamageFactor:   10,
			MoveStep:       0.001,
			Diameter:       0.02,
			ReachRadius:    0.05,
			SpawnX:         0.3,
			SpawnY:         0.7,
		},
		Zombie: ZombieTuning{
			Health:         100,
			Speed:          0.1,
			DamageFactor:   10,
			AttackInterval: 1000,
			SightRadius:    0.3,
			Diameter:       0.02,
			MoneyDrop:      10,
		},
		Weapons: WeaponTuning{
			DefaultName:     "Shotgun",
			DefaultDamage:   10,
			DefaultInterval: 500,
			RandomSize:      60,
			BulletSpeed:     1.5,
			BulletDiameter:  0.005,
			BulletLife:      10,
			LongevityLife:   30,
			HomingRadius:    0.5,
		},
		Items: ItemTuning{
			ItemSize:   10,
			KeySize:    1,
			PotionSize: 2,
			PotionHeal: 10,
		},
		Upgrades: UpgradeTuning{
			HealthStep:     10,
			DamageStep:     5,
			FireRateFactor: 0.9,
			CapacityStep:   20,
		},
		Container: ContainerTuning{
			Size:  200,
			Items: 6,
		},
	}
}

// Load reads a YAML tuning file over the defaults.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("reading tuning: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("parsing tuning %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("validating tuning %s: %w", path, err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	el := errors.NewErrorList()

	if t.Player.Health <= 0 {
		el.Add(fmt.Errorf("player.health must be positive"))
	}
	if t.Player.InventoryItems <= 0 || t.Player.InventorySize <= 0 {
		el.Add(fmt.Errorf("player inventory limits must be positive"))
	}
	if t.Player.MoveStep <= 0 {
		el.Add(fmt.Errorf("player.move_step must be positive"))
	}
	if t.Player.Diameter <= 0 || t.Zombie.Diameter <= 0 || t.Weapons.BulletDiameter <= 0 {
		el.Add(fmt.Errorf("diameters must be positive"))
	}
	if t.Zombie.Health <= 0 {
		el.Add(fmt.Errorf("zombie.health must be positive"))
	}
	if t.Weapons.DefaultName == "" {
		el.Add(fmt.Errorf("weapons.default_name is required"))
	}
	if t.Weapons.BulletSpeed <= 0 {
		el.Add(fmt.Errorf("weapons.bullet_speed must be positive"))
	}
	if t.Upgrades.FireRateFactor <= 0 || t.Upgrades.FireRateFactor > 1 {
		el.Add(fmt.Errorf("upgrades.fire_rate_factor must be in (0, 1]"))
	}
	if t.Container.Size <= 0 || t.Container.Items <= 0 {
		el.Add(fmt.Errorf("container limits must be positive"))
	}

	return el.Err()
}
