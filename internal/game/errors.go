package game

import "errors"

var (
	ErrLocationExists   = errors.New("location already exists")
	ErrLocationNotFound = errors.New("location not found")
	ErrPlayerNotFound   = errors.New("player not found")
)
