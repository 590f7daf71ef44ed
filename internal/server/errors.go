package server

import "errors"

var ErrBlacklisted = errors.New("address is blacklisted")
