package cover

import (
	"context"
	"net/url"
)

// PlaceholderPath is where the placeholder SVG is served.
const PlaceholderPath = "/v1/covers/placeholder.svg"

// ImageFetcher downloads a validated image for display.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (*Image, error)
}

// Service resolves covers for books and renders placeholders.
type Service struct {
	resolver *Resolver
	fetcher  ImageFetcher
}

// NewService creates a cover service.
func NewService(prober Prober, fetcher ImageFetcher) *Service {
	return &Service{
		resolver: NewResolver(prober),
		fetcher:  fetcher,
	}
}

// NewCard returns a card bound to the service's resolver.
func (s *Service) NewCard() *Card {
	return NewCard(s.resolver)
}

// Resolve runs the fallback chain for id.
func (s *Service) Resolve(ctx context.Context, id Identity) State {
	_, st := s.NewCard().Load(ctx, id)
	return st
}

// Display is what a card finally shows: a fetched image, or the
// placeholder selection when Image is nil.
type Display struct {
	State       State
	Image       *Image
	Placeholder Selection
}

// Display resolves id and loads the winning image for rendering. A
// failed load at this point also falls back to the placeholder.
func (s *Service) Display(ctx context.Context, id Identity) Display {
	card := s.NewCard()
	ticket, st := card.Load(ctx, id)
	d := Display{Placeholder: Select(id.Title, id.Author)}

	if !st.Fallback && st.URL != "" {
		img, err := s.fetcher.Fetch(ctx, st.URL)
		if err == nil {
			d.State = st
			d.Image = img
			return d
		}
		card.RenderFailed(ticket)
	}
	d.State = card.Snapshot()
	return d
}

// PlaceholderURL returns the relative URL of the placeholder SVG.
func PlaceholderURL(title, author string, size Size) string {
	q := url.Values{}
	q.Set("title", title)
	q.Set("author", author)
	if size == SizeSmall {
		q.Set("size", string(SizeSmall))
	}
	return PlaceholderPath + "?" + q.Encode()
}
