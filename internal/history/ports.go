package history

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=history

import (
	"context"
)

type Repository interface {
	Append(ctx context.Context, e Entry) error
	List(ctx context.Context, visitorID string, limit int) ([]Entry, error)
	Clear(ctx context.Context, visitorID string) (int64, error)
}
