package storage

import (
	"fmt"
	"regexp"

	"github.com/pixil98/go-errors"
)

// CurrentVersion is written into every saved asset.
const CurrentVersion = 1

var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9-]*$`)

type ValidatingSpec interface {
	Validate() error
}

type Identifier string

func (id Identifier) String() string {
	return string(id)
}

// Asset is the versioned envelope every persisted document is wrapped in.
type Asset[T ValidatingSpec] struct {
	Version    uint       `json:"version"`
	Identifier Identifier `json:"id"`
	Spec       T          `json:"spec"`
}

func NewAsset[T ValidatingSpec](id Identifier, spec T) *Asset[T] {
	return &Asset[T]{
		Version:    CurrentVersion,
		Identifier: id,
		Spec:       spec,
	}
}

func (a *Asset[T]) Id() Identifier {
	return a.Identifier
}

func (a *Asset[T]) Validate() error {
	el := errors.NewErrorList()

	if a.Version == 0 {
		el.Add(fmt.Errorf("version must be set"))
	}

	if a.Version > CurrentVersion {
		el.Add(fmt.Errorf("version %d is newer than supported version %d", a.Version, CurrentVersion))
	}

	if a.Identifier == "" {
		el.Add(fmt.Errorf("id must be set"))
	}

	if !identifierPattern.MatchString(a.Identifier.String()) {
		el.Add(fmt.Errorf("id must be alphanumeric"))
	}

	el.Add(a.Spec.Validate())

	return el.Err()
}
