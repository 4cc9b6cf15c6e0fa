// Package history keeps each visitor's past prescriptions.
package history

import (
	"errors"

	"paperpharmacy/internal/prescription"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
	// maxPerVisitor bounds the in-memory store.
	maxPerVisitor = 50
)

var ErrMissingVisitor = errors.New("missing visitor id")

// Entry is one stored prescription.
type Entry = prescription.Record
