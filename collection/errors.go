package collection

import "errors"

// ErrNotFound is returned when a lookup or removal finds no matching slot.
var ErrNotFound = errors.New("collection: not found")
