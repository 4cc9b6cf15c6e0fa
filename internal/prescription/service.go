package prescription

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"paperpharmacy/internal/cover"
	"paperpharmacy/internal/logging"
	"paperpharmacy/internal/metrics"
)

type Service struct {
	source   Source
	enricher *Enricher
	covers   CoverResolver
	history  HistoryRecorder
	now      func() time.Time
}

// NewService creates the prescription service. covers and history are
// optional: without covers the client resolves them itself, without
// history nothing is recorded.
func NewService(source Source, enricher *Enricher, covers CoverResolver, history HistoryRecorder) *Service {
	if enricher == nil {
		enricher = NewEnricher(nil, nil)
	}
	return &Service{
		source:   source,
		enricher: enricher,
		covers:   covers,
		history:  history,
		now:      time.Now,
	}
}

// Prescribe runs one full submission for st and returns the resulting
// state. An empty mood is rejected before any upstream call and leaves
// st untouched. A failed recommendation returns the reset state
// together with ErrRecommendationFailed so the caller can still render it.
func (s *Service) Prescribe(ctx context.Context, visitorID string, st State, exclude []string) (State, error) {
	if strings.TrimSpace(st.Input.Mood) == "" {
		metrics.Prescriptions.WithLabelValues("invalid").Inc()
		return st, fmt.Errorf("%w: mood is required", ErrInvalidInput)
	}
	if st.Region == "" {
		st.Region = DefaultRegion
	}

	st = Reduce(st, Submitted{})
	log := logging.Ctx(ctx)

	books, err := s.source.Recommend(ctx, st.Request(exclude))
	if err == nil && len(books) < Count {
		err = fmt.Errorf("got %d recommendations, want %d", len(books), Count)
	}
	if err != nil {
		log.Error().Err(err).Str("mood", st.Input.Mood).Msg("recommendation failed")
		metrics.Prescriptions.WithLabelValues("failed").Inc()
		return Reduce(st, Failed{Message: MsgRecommendationFailed}), fmt.Errorf("%w: %v", ErrRecommendationFailed, err)
	}
	if len(books) > Count {
		books = books[:Count]
	}

	recs := s.enricher.Enrich(ctx, books)
	if s.covers != nil {
		s.attachCovers(ctx, recs)
	}
	st = Reduce(st, Succeeded{Books: recs})

	if s.history != nil && visitorID != "" {
		rec := Record{
			ID:        uuid.NewString(),
			VisitorID: visitorID,
			Input:     st.Input,
			Region:    st.RegionLabel(),
			Books:     recs,
			CreatedAt: s.now().UTC(),
		}
		if err := s.history.Record(ctx, rec); err != nil {
			log.Warn().Err(err).Str("visitor_id", visitorID).Msg("failed to record history")
		}
	}

	metrics.Prescriptions.WithLabelValues("success").Inc()
	log.Info().Str("mood", st.Input.Mood).Int("books", len(recs)).Msg("prescription served")
	return st, nil
}

func (s *Service) attachCovers(ctx context.Context, recs []BookRecommendation) {
	g, gctx := errgroup.WithContext(ctx)
	for i := range recs {
		g.Go(func() error {
			r := &recs[i]
			cs := s.covers.Resolve(gctx, cover.Identity{
				ISBN:     r.ISBN,
				Title:    r.Title,
				Author:   r.Author,
				CoverURL: r.CoverImageURL,
			})
			r.Cover = &Cover{
				URL:         cs.URL,
				Fallback:    cs.Fallback,
				Placeholder: cover.PlaceholderURL(r.Title, r.Author, cover.SizeLarge),
			}
			return nil
		})
	}
	_ = g.Wait()
}
