package ecs

// Component is a typed fact attached to a single entity. The set of implementations is
// closed to this package; every kind is listed in the registry in codec.go.
type Component interface {
	Kind() Kind
	MarkChanged()
	MarkRemoved()
	IsRemoved() bool

	tracker() *Tracker
}

// Tracker carries the change and removal flags read by the delta broadcast.
// The zero value reports the component as changed.
//
// Game logic must not branch on these flags. Clearing them outside of the end-of-tick
// broadcast loses updates for connected clients.
type Tracker struct {
	clean   bool
	removed bool
}

func (t *Tracker) MarkChanged() {
	t.clean = false
}

// MarkRemoved flags the component for removal. It stays attached to its entity until
// the broadcast detaches it with Entity.ClearRemovedComponents.
func (t *Tracker) MarkRemoved() {
	t.removed = true
}

func (t *Tracker) IsRemoved() bool {
	return t.removed
}

func (t *Tracker) tracker() *Tracker {
	return t
}

func (t *Tracker) changed() bool {
	return !t.clean
}

func (t *Tracker) clearChanges() {
	t.clean = true
}
