package ecs

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Position is a location-relative coordinate. Locations span the unit square.
type Position struct {
	Tracker
	x, y float64
}

func NewPosition(x, y float64) *Position {
	return &Position{x: x, y: y}
}

func (*Position) Kind() Kind   { return KindPosition }
func (p *Position) X() float64 { return p.x }
func (p *Position) Y() float64 { return p.y }

func (p *Position) Set(x, y float64) {
	p.x, p.y = x, y
	p.MarkChanged()
}

func (p *Position) Distance(o *Position) float64 {
	return math.Hypot(o.x-p.x, o.y-p.y)
}

func (p *Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}{p.x, p.y})
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var w struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	p.x, p.y = w.X, w.Y
	p.MarkChanged()
	return nil
}

// Velocity is measured in location units per second.
type Velocity struct {
	Tracker
	x, y float64
}

func NewVelocity(x, y float64) *Velocity {
	return &Velocity{x: x, y: y}
}

func (*Velocity) Kind() Kind   { return KindVelocity }
func (v *Velocity) X() float64 { return v.x }
func (v *Velocity) Y() float64 { return v.y }

func (v *Velocity) Speed() float64 {
	return math.Hypot(v.x, v.y)
}

func (v *Velocity) Set(x, y float64) {
	if v.x == x && v.y == y {
		return
	}
	v.x, v.y = x, y
	v.MarkChanged()
}

func (v *Velocity) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}{v.x, v.y})
}

func (v *Velocity) UnmarshalJSON(data []byte) error {
	var w struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	v.x, v.y = w.X, w.Y
	v.MarkChanged()
	return nil
}

// Health is clamped to [0, max].
type Health struct {
	Tracker
	current, max int
}

func NewHealth(max int) *Health {
	return &Health{current: max, max: max}
}

func (*Health) Kind() Kind     { return KindHealth }
func (h *Health) Current() int { return h.current }
func (h *Health) Max() int     { return h.max }
func (h *Health) Full() bool   { return h.current >= h.max }
func (h *Health) Dead() bool   { return h.current <= 0 }
func (h *Health) Damage(n int) { h.Set(h.current - n) }
func (h *Health) Heal(n int)   { h.Set(h.current + n) }
func (h *Health) Restore()     { h.Set(h.max) }

func (h *Health) Set(v int) {
	h.current = max(0, min(v, h.max))
	h.MarkChanged()
}

func (h *Health) SetMax(m int) {
	h.max = max(1, m)
	h.current = min(h.current, h.max)
	h.MarkChanged()
}

func (h *Health) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Current int `json:"current"`
		Max     int `json:"max"`
	}{h.current, h.max})
}

func (h *Health) UnmarshalJSON(data []byte) error {
	var w struct {
		Current int `json:"current"`
		Max     int `json:"max"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Max <= 0 {
		return fmt.Errorf("%w: health max must be positive", ErrInvalidComponent)
	}
	h.max = w.Max
	h.current = max(0, min(w.Current, w.Max))
	h.MarkChanged()
	return nil
}

// Equipped holds the single item a player wields.
type Equipped struct {
	Tracker
	item *Entity
}

func NewEquipped(item *Entity) *Equipped {
	return &Equipped{item: item}
}

func (*Equipped) Kind() Kind      { return KindEquipped }
func (e *Equipped) Item() *Entity { return e.item }
func (e *Equipped) HasItem() bool { return e.item != nil }

// Set replaces the equipped item and returns the one it displaced.
func (e *Equipped) Set(item *Entity) *Entity {
	old := e.item
	e.item = item
	e.MarkChanged()
	return old
}

func (e *Equipped) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Item *Entity `json:"item,omitempty"`
	}{e.item})
}

func (e *Equipped) UnmarshalJSON(data []byte) error {
	var w struct {
		Item *Entity `json:"item,omitempty"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	e.item = w.Item
	e.MarkChanged()
	return nil
}

// Target lists the entity types an entity is interested in and the one it currently
// tracks, by ID. Zero means no target.
type Target struct {
	Tracker
	types   []EntityType
	current uint64
}

func NewTarget(types ...EntityType) *Target {
	return &Target{types: types}
}

func (*Target) Kind() Kind            { return KindTarget }
func (t *Target) Types() []EntityType { return t.types }
func (t *Target) Current() uint64     { return t.current }
func (t *Target) HasTarget() bool     { return t.current != 0 }

func (t *Target) Accepts(et EntityType) bool {
	for _, want := range t.types {
		if want == et {
			return true
		}
	}
	return false
}

func (t *Target) SetCurrent(id uint64) {
	if t.current == id {
		return
	}
	t.current = id
	t.MarkChanged()
}

func (t *Target) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Types   []EntityType `json:"types"`
		Current uint64       `json:"current,omitempty"`
	}{t.types, t.current})
}

func (t *Target) UnmarshalJSON(data []byte) error {
	var w struct {
		Types   []EntityType `json:"types"`
		Current uint64       `json:"current,omitempty"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	for _, et := range w.Types {
		if !et.Valid() {
			return fmt.Errorf("%w: unknown target type %q", ErrInvalidComponent, et)
		}
	}
	t.types, t.current = w.Types, w.Current
	t.MarkChanged()
	return nil
}

type TargetRadius struct {
	Tracker
	radius float64
}

func NewTargetRadius(r float64) *TargetRadius {
	return &TargetRadius{radius: r}
}

func (*TargetRadius) Kind() Kind        { return KindTargetRadius }
func (t *TargetRadius) Radius() float64 { return t.radius }

func (t *TargetRadius) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Radius float64 `json:"radius"`
	}{t.radius})
}

func (t *TargetRadius) UnmarshalJSON(data []byte) error {
	var w struct {
		Radius float64 `json:"radius"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	t.radius = w.Radius
	t.MarkChanged()
	return nil
}

// EventTrigger rate-limits a repeated event such as firing. Times are in milliseconds.
type EventTrigger struct {
	Tracker
	interval int64
	last     int64
}

func NewEventTrigger(intervalMs int64) *EventTrigger {
	return &EventTrigger{interval: intervalMs}
}

func (*EventTrigger) Kind() Kind        { return KindEventTrigger }
func (e *EventTrigger) Interval() int64 { return e.interval }

func (e *EventTrigger) SetInterval(ms int64) {
	e.interval = max(0, ms)
	e.MarkChanged()
}

// CanFire reports whether more than the interval has passed since the last firing, and
// records now as the last firing when it has.
func (e *EventTrigger) CanFire(now int64) bool {
	if now-e.last <= e.interval {
		return false
	}
	e.last = now
	return true
}

func (e *EventTrigger) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Interval int64 `json:"interval"`
	}{e.interval})
}

func (e *EventTrigger) UnmarshalJSON(data []byte) error {
	var w struct {
		Interval int64 `json:"interval"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	e.interval = max(0, w.Interval)
	e.MarkChanged()
	return nil
}

// Exit routes to a named location. Portals and the keys that open them share the type.
type Exit struct {
	Tracker
	exit   string
	locked bool
	x, y   float64
}

func NewExit(exit string, locked bool, x, y float64) *Exit {
	return &Exit{exit: exit, locked: locked, x: x, y: y}
}

func (*Exit) Kind() Kind     { return KindExit }
func (e *Exit) Exit() string { return e.exit }
func (e *Exit) Locked() bool { return e.locked }

// Destination is where an entity arrives in the exit location.
func (e *Exit) Destination() (float64, float64) {
	return e.x, e.y
}

func (e *Exit) Unlock() {
	if !e.locked {
		return
	}
	e.locked = false
	e.MarkChanged()
}

func (e *Exit) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Exit   string  `json:"exit"`
		Locked bool    `json:"locked"`
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
	}{e.exit, e.locked, e.x, e.y})
}

func (e *Exit) UnmarshalJSON(data []byte) error {
	var w struct {
		Exit   string  `json:"exit"`
		Locked bool    `json:"locked"`
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Exit == "" {
		return fmt.Errorf("%w: exit requires a destination", ErrInvalidComponent)
	}
	e.exit, e.locked, e.x, e.y = w.Exit, w.Locked, w.X, w.Y
	e.MarkChanged()
	return nil
}

// Name is a display name with an optional suffix that grants special behaviour, such as
// "Homing" on weapons.
type Name struct {
	Tracker
	name   string
	suffix string
}

func NewName(name string) *Name {
	return &Name{name: name}
}

func NewSuffixedName(name, suffix string) *Name {
	return &Name{name: name, suffix: suffix}
}

func (*Name) Kind() Kind        { return KindName }
func (n *Name) Name() string    { return n.name }
func (n *Name) Suffix() string  { return n.suffix }
func (n *Name) HasSuffix() bool { return n.suffix != "" }

func (n *Name) FullName() string {
	if n.suffix == "" {
		return n.name
	}
	return n.name + " of " + n.suffix
}

func (n *Name) HasSuffixFold(suffix string) bool {
	return strings.EqualFold(n.suffix, suffix)
}

func (n *Name) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name   string `json:"name"`
		Suffix string `json:"suffix,omitempty"`
	}{n.name, n.suffix})
}

func (n *Name) UnmarshalJSON(data []byte) error {
	var w struct {
		Name   string `json:"name"`
		Suffix string `json:"suffix,omitempty"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	n.name, n.suffix = w.Name, w.Suffix
	n.MarkChanged()
	return nil
}

// Size is the weight an item occupies in an inventory.
type Size struct {
	Tracker
	size int
}

func NewSize(size int) *Size {
	return &Size{size: size}
}

func (*Size) Kind() Kind  { return KindSize }
func (s *Size) Size() int { return s.size }

func (s *Size) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Size int `json:"size"`
	}{s.size})
}

func (s *Size) UnmarshalJSON(data []byte) error {
	var w struct {
		Size int `json:"size"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Size < 0 {
		return fmt.Errorf("%w: size must not be negative", ErrInvalidComponent)
	}
	s.size = w.Size
	s.MarkChanged()
	return nil
}

type Shape string

const (
	ShapeCircle Shape = "circle"
	ShapeBox    Shape = "box"
)

// Volume is the collision footprint centred on the entity position. Circles use width as
// their diameter.
type Volume struct {
	Tracker
	shape         Shape
	width, height float64
}

func NewCircle(diameter float64) *Volume {
	return &Volume{shape: ShapeCircle, width: diameter, height: diameter}
}

func NewBox(width, height float64) *Volume {
	return &Volume{shape: ShapeBox, width: width, height: height}
}

func (*Volume) Kind() Kind        { return KindVolume }
func (v *Volume) Shape() Shape    { return v.shape }
func (v *Volume) Width() float64  { return v.width }
func (v *Volume) Height() float64 { return v.height }

func (v *Volume) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Shape  Shape   `json:"shape"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}{v.shape, v.width, v.height})
}

func (v *Volume) UnmarshalJSON(data []byte) error {
	var w struct {
		Shape  Shape   `json:"shape"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Shape != ShapeCircle && w.Shape != ShapeBox {
		return fmt.Errorf("%w: unknown shape %q", ErrInvalidComponent, w.Shape)
	}
	if w.Width <= 0 || w.Height <= 0 {
		return fmt.Errorf("%w: volume dimensions must be positive", ErrInvalidComponent)
	}
	v.shape, v.width, v.height = w.Shape, w.Width, w.Height
	v.MarkChanged()
	return nil
}

// Worth is money carried by an entity or dropped in the world.
type Worth struct {
	Tracker
	value int
}

func NewWorth(value int) *Worth {
	return &Worth{value: value}
}

func (*Worth) Kind() Kind   { return KindWorth }
func (w *Worth) Value() int { return w.value }

func (w *Worth) Add(n int) {
	w.value += n
	w.MarkChanged()
}

// Spend deducts n if enough is available.
func (w *Worth) Spend(n int) bool {
	if n < 0 || w.value < n {
		return false
	}
	w.value -= n
	w.MarkChanged()
	return true
}

func (w *Worth) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Value int `json:"value"`
	}{w.value})
}

func (w *Worth) UnmarshalJSON(data []byte) error {
	var v struct {
		Value int `json:"value"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	w.value = v.Value
	w.MarkChanged()
	return nil
}

// Upgrade names accepted by the Upgrades component.
const (
	UpgradeHealth            = "Health"
	UpgradeWeaponStrength    = "Weapon Strength"
	UpgradeRateOfFire        = "Rate of Fire"
	UpgradeInventoryCapacity = "Inventory Capacity"
)

var upgradeNames = []string{UpgradeHealth, UpgradeWeaponStrength, UpgradeRateOfFire, UpgradeInventoryCapacity}

func ValidUpgrade(name string) bool {
	for _, n := range upgradeNames {
		if n == name {
			return true
		}
	}
	return false
}

type Upgrades struct {
	Tracker
	levels map[string]int
}

func NewUpgrades() *Upgrades {
	u := &Upgrades{levels: make(map[string]int, len(upgradeNames))}
	for _, n := range upgradeNames {
		u.levels[n] = 0
	}
	return u
}

func (*Upgrades) Kind() Kind { return KindUpgrades }

func (u *Upgrades) Level(name string) int {
	return u.levels[name]
}

func (u *Upgrades) Upgrade(name string) {
	u.levels[name]++
	u.MarkChanged()
}

func (u *Upgrades) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Levels map[string]int `json:"levels"`
	}{u.levels})
}

func (u *Upgrades) UnmarshalJSON(data []byte) error {
	var w struct {
		Levels map[string]int `json:"levels"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	fresh := NewUpgrades()
	for name, level := range w.Levels {
		if !ValidUpgrade(name) {
			return fmt.Errorf("%w: unknown upgrade %q", ErrInvalidComponent, name)
		}
		fresh.levels[name] = level
	}
	u.levels = fresh.levels
	u.MarkChanged()
	return nil
}

type Type struct {
	Tracker
	t EntityType
}

func NewType(t EntityType) *Type {
	return &Type{t: t}
}

func (*Type) Kind() Kind         { return KindType }
func (t *Type) Type() EntityType { return t.t }

func (t *Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type EntityType `json:"type"`
	}{t.t})
}

func (t *Type) UnmarshalJSON(data []byte) error {
	var w struct {
		Type EntityType `json:"type"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if !w.Type.Valid() {
		return fmt.Errorf("%w: unknown entity type %q", ErrInvalidComponent, w.Type)
	}
	t.t = w.Type
	t.MarkChanged()
	return nil
}

type DamageFactor struct {
	Tracker
	value int
}

func NewDamageFactor(v int) *DamageFactor {
	return &DamageFactor{value: v}
}

func (*DamageFactor) Kind() Kind   { return KindDamageFactor }
func (d *DamageFactor) Value() int { return d.value }

func (d *DamageFactor) Set(v int) {
	d.value = v
	d.MarkChanged()
}

func (d *DamageFactor) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Value int `json:"value"`
	}{d.value})
}

func (d *DamageFactor) UnmarshalJSON(data []byte) error {
	var w struct {
		Value int `json:"value"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	d.value = w.Value
	d.MarkChanged()
	return nil
}

// Multiplier scales a player's weapon fire interval. Lower fires faster.
type Multiplier struct {
	Tracker
	value float64
}

func NewMultiplier(v float64) *Multiplier {
	return &Multiplier{value: v}
}

func (*Multiplier) Kind() Kind       { return KindMultiplier }
func (m *Multiplier) Value() float64 { return m.value }

func (m *Multiplier) Set(v float64) {
	m.value = v
	m.MarkChanged()
}

func (m *Multiplier) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Value float64 `json:"value"`
	}{m.value})
}

func (m *Multiplier) UnmarshalJSON(data []byte) error {
	var w struct {
		Value float64 `json:"value"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Value <= 0 {
		return fmt.Errorf("%w: multiplier must be positive", ErrInvalidComponent)
	}
	m.value = w.Value
	m.MarkChanged()
	return nil
}

// Text is dialogue spoken by NPCs.
type Text struct {
	Tracker
	text string
}

func NewText(text string) *Text {
	return &Text{text: text}
}

func (*Text) Kind() Kind     { return KindText }
func (t *Text) Text() string { return t.text }

func (t *Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Text string `json:"text"`
	}{t.text})
}

func (t *Text) UnmarshalJSON(data []byte) error {
	var w struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	t.text = w.Text
	t.MarkChanged()
	return nil
}
