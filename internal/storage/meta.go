package storage

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	MetaClock   = "clock"
	MetaSavedAt = "saved_at"
)

// Meta holds loosely typed values saved alongside a snapshot.
type Meta map[string]json.RawMessage

// Set stores v under key after marshalling it to JSON.
func (m *Meta) Set(k string, v any) error {
	if *m == nil {
		*m = Meta{}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal meta %q: %w", k, err)
	}

	(*m)[k] = json.RawMessage(b)
	return nil
}

// Get unmarshals the value at key into out.
// Returns (found=false, nil) if not present.
func (m Meta) Get(key string, out any) (bool, error) {
	if m == nil {
		return false, nil
	}

	raw, ok := m[key]
	if !ok || len(raw) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("unmarshal meta %q: %w", key, err)
	}
	return true, nil
}

// Delete removes the key, if present.
func (m Meta) Delete(key string) {
	if m == nil {
		return
	}
	delete(m, key)
}

// Clock is the world clock in milliseconds at save time, zero if absent.
func (m Meta) Clock() (int64, error) {
	var ms int64
	if _, err := m.Get(MetaClock, &ms); err != nil {
		return 0, err
	}
	return ms, nil
}

// SavedAt is the wall time the snapshot was taken, zero if absent.
func (m Meta) SavedAt() (time.Time, error) {
	var t time.Time
	if _, err := m.Get(MetaSavedAt, &t); err != nil {
		return time.Time{}, err
	}
	return t, nil
}
