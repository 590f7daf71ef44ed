package content

import (
	"fmt"
	"math/rand/v2"

	"github.com/TomCrypto/Team-208-s-Game/internal/ecs"
	"github.com/TomCrypto/Team-208-s-Game/internal/game"
	"github.com/TomCrypto/Team-208-s-Game/internal/tuning"
)

const (
	NoWeaponName = "None"

	SuffixSoothing  = "Soothing"
	SuffixLongevity = "Longevity"
	SuffixHoming    = "Homing"
)

var (
	weaponFirst  = []string{"Awesome", "Bombtastic", "Peow", "Heavy", "Daring", "Silly", "Thoughtful", "Angry", "Striking", "BoomBoom", "Dizzy"}
	weaponSecond = []string{"Machine", "Gun", "Device", "Burnanator", "Destroyer", "Boom", "Craziness", "Avenger", "Peow Peow"}
	suffixes     = []string{SuffixSoothing, SuffixLongevity, SuffixHoming}
	npcNames     = []string{"Guybrush", "Casius", "Hoodini", "Manal", "Dog", "Sir Pow", "Nick", "Marc", "Nainesh", "Thomas", "Patrick"}
	npcDialogue  = []string{
		"The streets are crawling with them. Stay close to the walls.",
		"I heard there is a key hidden somewhere around here.",
		"Potions will patch you up, but only if you are hurt.",
		"Money buys upgrades. Zombies drop plenty of it.",
	}
)

// Factory builds entities from the recipes the game knows about.
type Factory struct {
	t tuning.Tuning
}

func NewFactory(t tuning.Tuning) *Factory {
	return &Factory{t: t}
}

func (f *Factory) Tuning() tuning.Tuning {
	return f.t
}

// RespawnPosition is where new and dead players appear.
func (f *Factory) RespawnPosition() (float64, float64) {
	return f.t.Player.SpawnX, f.t.Player.SpawnY
}

func (f *Factory) Player(name string) *ecs.Entity {
	weapon := f.DefaultWeapon()
	return ecs.NewEntity(
		ecs.NewType(ecs.TypePlayer),
		ecs.NewName(name),
		ecs.NewPosition(f.t.Player.SpawnX, f.t.Player.SpawnY),
		ecs.NewCircle(f.t.Player.Diameter),
		ecs.NewHealth(f.t.Player.Health),
		ecs.NewInventory(f.t.Player.InventorySize, f.t.Player.InventoryItems),
		ecs.NewEquipped(weapon),
		ecs.NewTarget(ecs.TypeItem, ecs.TypeKey, ecs.TypeHealthPotion, ecs.TypeMoney,
			ecs.TypeWeapon, ecs.TypePortal, ecs.TypeContainer, ecs.TypeNPC),
		ecs.NewTargetRadius(f.t.Player.ReachRadius),
		ecs.NewMultiplier(1),
		ecs.NewDamageFactor(f.t.Player.DamageFactor),
		ecs.NewEventTrigger(f.t.Weapons.DefaultInterval),
		ecs.NewUpgrades(),
		ecs.NewWorth(0),
	)
}

// DefaultWeapon is the weapon every player starts with. It has no size so it can never
// be stored in an inventory.
func (f *Factory) DefaultWeapon() *ecs.Entity {
	return ecs.NewEntity(
		ecs.NewType(ecs.TypeWeapon),
		ecs.NewName(f.t.Weapons.DefaultName),
		ecs.NewDamageFactor(f.t.Weapons.DefaultDamage),
		ecs.NewEventTrigger(f.t.Weapons.DefaultInterval),
	)
}

// NoWeapon is the placeholder equipped by players who lost their weapon.
func (f *Factory) NoWeapon() *ecs.Entity {
	return ecs.NewEntity(
		ecs.NewType(ecs.TypeWeapon),
		ecs.NewName(NoWeaponName),
		ecs.NewDamageFactor(0),
		ecs.NewEventTrigger(f.t.Weapons.DefaultInterval),
	)
}

func (f *Factory) IsDefaultWeapon(e *ecs.Entity) bool {
	return e != nil && e.Name() == f.t.Weapons.DefaultName && !e.Has(ecs.KindSize)
}

func IsNoWeapon(e *ecs.Entity) bool {
	return e == nil || e.Name() == NoWeaponName
}

func (f *Factory) RandomWeapon(rng *rand.Rand) *ecs.Entity {
	name := weaponFirst[rng.IntN(len(weaponFirst))] + " " + weaponSecond[rng.IntN(len(weaponSecond))]
	return ecs.NewEntity(
		ecs.NewType(ecs.TypeWeapon),
		ecs.NewSuffixedName(name, suffixes[rng.IntN(len(suffixes))]),
		ecs.NewSize(f.t.Weapons.RandomSize),
		ecs.NewDamageFactor(5+rng.IntN(16)),
		ecs.NewEventTrigger(int64(200+rng.IntN(401))),
		ecs.NewCircle(0.02),
	)
}

func (f *Factory) Zombie(x, y float64) *ecs.Entity {
	return ecs.NewEntity(
		ecs.NewType(ecs.TypeZombie),
		ecs.NewName("Zombie"),
		ecs.NewPosition(x, y),
		ecs.NewVelocity(0, 0),
		ecs.NewCircle(f.t.Zombie.Diameter),
		ecs.NewHealth(f.t.Zombie.Health),
		ecs.NewDamageFactor(f.t.Zombie.DamageFactor),
		ecs.NewEventTrigger(f.t.Zombie.AttackInterval),
		ecs.NewTarget(ecs.TypePlayer),
		ecs.NewTargetRadius(f.t.Zombie.SightRadius),
	)
}

func (f *Factory) NPC(name, text string, x, y float64) *ecs.Entity {
	return ecs.NewEntity(
		ecs.NewType(ecs.TypeNPC),
		ecs.NewName(name),
		ecs.NewText(text),
		ecs.NewPosition(x, y),
		ecs.NewCircle(f.t.Player.Diameter),
		ecs.NewHealth(100),
	)
}

func (f *Factory) RandomNPC(rng *rand.Rand, x, y float64) *ecs.Entity {
	return f.NPC(npcNames[rng.IntN(len(npcNames))], npcDialogue[rng.IntN(len(npcDialogue))], x, y)
}

func (f *Factory) Wall(x, y, w, h float64) *ecs.Entity {
	return ecs.NewEntity(
		ecs.NewType(ecs.TypeWall),
		ecs.NewPosition(x, y),
		ecs.NewBox(w, h),
	)
}

func (f *Factory) Item(name string) *ecs.Entity {
	return ecs.NewEntity(
		ecs.NewType(ecs.TypeItem),
		ecs.NewName(name),
		ecs.NewSize(f.t.Items.ItemSize),
		ecs.NewCircle(0.02),
	)
}

// Key opens locked portals leading to exit.
func (f *Factory) Key(exit string) *ecs.Entity {
	return ecs.NewEntity(
		ecs.NewType(ecs.TypeKey),
		ecs.NewName(fmt.Sprintf("Key to %s", exit)),
		ecs.NewExit(exit, false, 0, 0),
		ecs.NewSize(f.t.Items.KeySize),
		ecs.NewCircle(0.02),
	)
}

func (f *Factory) Potion() *ecs.Entity {
	return ecs.NewEntity(
		ecs.NewType(ecs.TypeHealthPotion),
		ecs.NewName("Health Potion"),
		ecs.NewSize(f.t.Items.PotionSize),
		ecs.NewCircle(0.02),
	)
}

func (f *Factory) Money(value int) *ecs.Entity {
	return ecs.NewEntity(
		ecs.NewType(ecs.TypeMoney),
		ecs.NewName("Money"),
		ecs.NewWorth(value),
		ecs.NewSize(0),
		ecs.NewCircle(0.015),
	)
}

// Container builds a chest holding items. Items that do not fit are discarded.
func (f *Factory) Container(x, y float64, items ...*ecs.Entity) *ecs.Entity {
	inv := ecs.NewInventory(f.t.Container.Size, f.t.Container.Items)
	for _, it := range items {
		_ = inv.Add(it)
	}
	return ecs.NewEntity(
		ecs.NewType(ecs.TypeContainer),
		ecs.NewName("Chest"),
		ecs.NewPosition(x, y),
		ecs.NewBox(0.04, 0.04),
		inv,
	)
}

// Portal leads to exit, arriving at (dx, dy).
func (f *Factory) Portal(exit string, locked bool, x, y, dx, dy float64) *ecs.Entity {
	return ecs.NewEntity(
		ecs.NewType(ecs.TypePortal),
		ecs.NewName(exit),
		ecs.NewExit(exit, locked, dx, dy),
		ecs.NewPosition(x, y),
		ecs.NewCircle(0.05),
	)
}

// Bullet builds a projectile that lives for the given number of ticks.
func (f *Factory) Bullet(x, y, vx, vy float64, damage, life int) *ecs.Entity {
	return ecs.NewEntity(
		ecs.NewType(ecs.TypeBullet),
		ecs.NewPosition(x, y),
		ecs.NewVelocity(vx, vy),
		ecs.NewCircle(f.t.Weapons.BulletDiameter),
		ecs.NewDamageFactor(damage),
		ecs.NewHealth(life),
	)
}

// Place gives e a position and returns it.
func Place(e *ecs.Entity, x, y float64) *ecs.Entity {
	e.Add(ecs.NewPosition(x, y))
	return e
}

// Populate fills every unoccupied spawn point of loc with a zombie or an NPC and returns
// how many entities were spawned.
func (f *Factory) Populate(loc *game.Location, rng *rand.Rand) int {
	n := 0
	for _, sp := range loc.SpawnPoints() {
		if sp.Occupied() {
			continue
		}
		var e *ecs.Entity
		if rng.IntN(2) == 0 {
			e = f.Zombie(sp.X, sp.Y)
		} else {
			e = f.RandomNPC(rng, sp.X, sp.Y)
		}
		loc.Add(e)
		sp.Occupant = e.ID()
		n++
	}
	return n
}

// Despawn flags every zombie and NPC in loc for removal.
func Despawn(loc *game.Location) int {
	n := 0
	for _, e := range loc.Live() {
		switch e.Type() {
		case ecs.TypeZombie, ecs.TypeNPC:
			e.MarkRemoved()
			n++
		}
	}
	return n
}
