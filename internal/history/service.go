package history

import (
	"context"

	"paperpharmacy/internal/prescription"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record stores a finished prescription. It satisfies
// prescription.HistoryRecorder.
func (s *Service) Record(ctx context.Context, rec prescription.Record) error {
	if rec.VisitorID == "" {
		return ErrMissingVisitor
	}
	return s.repo.Append(ctx, rec)
}

func (s *Service) List(ctx context.Context, visitorID string, limit int) ([]Entry, error) {
	if visitorID == "" {
		return nil, ErrMissingVisitor
	}
	return s.repo.List(ctx, visitorID, clampLimit(limit))
}

// Books flattens the visitor's history into a list of books, newest
// first, each book listed once.
func (s *Service) Books(ctx context.Context, visitorID string, limit int) ([]prescription.BookRecommendation, error) {
	entries, err := s.List(ctx, visitorID, MaxLimit)
	if err != nil {
		return nil, err
	}

	limit = clampLimit(limit)
	seen := make(map[string]bool)
	books := []prescription.BookRecommendation{}
	for _, e := range entries {
		for _, b := range e.Books {
			if seen[b.ID] {
				continue
			}
			seen[b.ID] = true
			books = append(books, b)
			if len(books) == limit {
				return books, nil
			}
		}
	}
	return books, nil
}

func (s *Service) Clear(ctx context.Context, visitorID string) (int64, error) {
	if visitorID == "" {
		return 0, ErrMissingVisitor
	}
	return s.repo.Clear(ctx, visitorID)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
