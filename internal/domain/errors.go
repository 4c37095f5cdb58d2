package domain

import "errors"

// ErrNotFound is the sentinel returned by entity stores when a lookup misses.
// The access-control core distinguishes a missing entity (404) from a store
// failure (500) by checking for this sentinel.
var ErrNotFound = errors.New("entity not found")
