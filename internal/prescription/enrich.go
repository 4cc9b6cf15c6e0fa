package prescription

import (
	"context"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"paperpharmacy/internal/logging"
	"paperpharmacy/internal/platform/aladin"
	"paperpharmacy/internal/platform/openlibrary"
)

const (
	yes24SearchURL   = "https://www.yes24.com/Product/Search?query="
	kyoboSearchURL   = "https://search.kyobobook.co.kr/search?keyword="
	aladinSearchURL  = "https://www.aladin.co.kr/search/wsearchresult.aspx?SearchWord="
	librarySearchURL = "https://www.nl.go.kr/seoji/SearchListSimple.do?searchType=SIMPLE&searchKeyword="
)

type BookSearcher interface {
	Search(ctx context.Context, query, queryType string) ([]aladin.Book, error)
}

type BookFinder interface {
	FindBook(ctx context.Context, title, author string) (*openlibrary.Match, error)
}

// Enricher checks AI picks against real catalogues and fills in ISBN,
// cover and store links. Every lookup is best effort.
type Enricher struct {
	search   BookSearcher
	fallback BookFinder
}

// NewEnricher creates an enricher. Either lookup may be nil.
func NewEnricher(search BookSearcher, fallback BookFinder) *Enricher {
	return &Enricher{search: search, fallback: fallback}
}

// Enrich enriches all books concurrently, keeping their order.
func (e *Enricher) Enrich(ctx context.Context, books []AIBook) []BookRecommendation {
	out := make([]BookRecommendation, len(books))
	g, gctx := errgroup.WithContext(ctx)
	for i, b := range books {
		g.Go(func() error {
			out[i] = e.enrichOne(gctx, b)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (e *Enricher) enrichOne(ctx context.Context, b AIBook) BookRecommendation {
	var hit *aladin.Book
	if e.search != nil {
		books, err := e.search.Search(ctx, b.Title+" "+b.Author, aladin.QueryTypeTitle)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("title", b.Title).Msg("bookseller lookup failed")
		} else if len(books) > 0 {
			hit = &books[0]
		}
	}

	rec := BookRecommendation{
		Title:       b.Title,
		Author:      b.Author,
		Publisher:   b.Publisher,
		Description: b.Description,
		AIReason:    b.AIReason,
		Vibe:        b.Vibe,
	}
	if rec.Vibe == nil {
		rec.Vibe = []string{}
	}
	if hit != nil {
		rec.ISBN = hit.ISBN
		rec.CoverImageURL = hit.Cover
		if rec.Publisher == "" {
			rec.Publisher = hit.Publisher
		}
	}

	if rec.ISBN == "" && e.fallback != nil {
		m, err := e.fallback.FindBook(ctx, b.Title, b.Author)
		if err != nil {
			logging.Ctx(ctx).Debug().Err(err).Str("title", b.Title).Msg("fallback isbn lookup failed")
		} else {
			rec.ISBN = m.ISBN
			if rec.CoverImageURL == "" {
				rec.CoverImageURL = m.CoverURL
			}
		}
	}
	if rec.ISBN == "" {
		rec.ISBN = FallbackISBN
	}

	title := encodeComponent(b.Title)
	rec.PurchaseLinks = PurchaseLinks{
		Yes24:  yes24SearchURL + title,
		Kyobo:  kyoboSearchURL + title,
		Aladin: aladinSearchURL + title,
	}
	if hit != nil && hit.Link != "" {
		rec.PurchaseLinks.Aladin = hit.Link
	}

	rec.Libraries = make([]LibraryInfo, 0, len(b.Libraries))
	for _, lib := range b.Libraries {
		lib = lib.Normalize()
		lib.URL = librarySearchURL + title
		rec.Libraries = append(rec.Libraries, lib)
	}

	rec.ID = BookID(rec.ISBN, rec.Title, rec.Author)
	return rec
}

// encodeComponent escapes s for use as a query value, with spaces as
// %20 rather than '+'.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
