package prescription

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=prescription

import (
	"context"

	"paperpharmacy/internal/cover"
)

// Source produces exactly Count recommendations or an error.
type Source interface {
	Recommend(ctx context.Context, req Request) ([]AIBook, error)
}

// CoverResolver runs the cover fallback chain for one book.
type CoverResolver interface {
	Resolve(ctx context.Context, id cover.Identity) cover.State
}

// HistoryRecorder keeps successful prescriptions per visitor.
type HistoryRecorder interface {
	Record(ctx context.Context, rec Record) error
}
