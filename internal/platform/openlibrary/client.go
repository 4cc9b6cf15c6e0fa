// Package openlibrary is a small client for the Open Library search API,
// used to find an ISBN when the bookseller search comes back empty.
package openlibrary

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"paperpharmacy/internal/platform/breaker"
)

// ErrNoMatch is returned when a search has no result carrying an ISBN.
var ErrNoMatch = errors.New("openlibrary: no match")

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
	breaker    *breaker.Breaker[*SearchResponse]
	backoff    time.Duration
}

func NewClient(baseURL, userAgent string, rps int, maxRetries int) *Client {
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		userAgent:  userAgent,
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		maxRetries: maxRetries,
		breaker:    breaker.New[*SearchResponse]("openlibrary", breaker.Settings{}),
		backoff:    time.Second,
	}
}

// SearchResponse matches search.json
type SearchResponse struct {
	NumFound int   `json:"numFound"`
	Docs     []Doc `json:"docs"`
}

type Doc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorNames      []string `json:"author_name"`
	ISBN             []string `json:"isbn"`
	Publishers       []string `json:"publisher"`
	CoverID          int      `json:"cover_i"`
	FirstPublishYear int      `json:"first_publish_year"`
}

// Match is the best search hit for a title and author.
type Match struct {
	Title     string
	Author    string
	Publisher string
	ISBN      string
	CoverURL  string
}

func (c *Client) Search(ctx context.Context, title, author string, limit int) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("title", title)
	if author != "" {
		q.Set("author", author)
	}
	q.Set("fields", "key,title,author_name,isbn,publisher,cover_i,first_publish_year")
	q.Set("limit", fmt.Sprintf("%d", limit))
	u := c.baseURL + "/search.json?" + q.Encode()

	return c.breaker.Execute(func() (*SearchResponse, error) {
		var res SearchResponse
		if err := c.get(ctx, u, &res); err != nil {
			return nil, err
		}
		return &res, nil
	})
}

// FindBook returns the first hit that has an ISBN, preferring 13-digit ones.
func (c *Client) FindBook(ctx context.Context, title, author string) (*Match, error) {
	res, err := c.Search(ctx, title, author, 5)
	if err != nil {
		return nil, err
	}
	for _, d := range res.Docs {
		isbn := pickISBN(d.ISBN)
		if isbn == "" {
			continue
		}
		m := &Match{Title: d.Title, ISBN: isbn}
		if len(d.AuthorNames) > 0 {
			m.Author = d.AuthorNames[0]
		}
		if len(d.Publishers) > 0 {
			m.Publisher = d.Publishers[0]
		}
		if d.CoverID > 0 {
			m.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", d.CoverID)
		}
		return m, nil
	}
	return nil, ErrNoMatch
}

func pickISBN(isbns []string) string {
	for _, s := range isbns {
		if len(s) == 13 {
			return s
		}
	}
	if len(isbns) > 0 {
		return isbns[0]
	}
	return ""
}

func (c *Client) get(ctx context.Context, url string, target interface{}) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: 1s, 2s, 4s...
			backoff := time.Duration(1<<uint(i-1)) * c.backoff
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", c.userAgent)

		retry, err := c.do(req, target)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

// do runs one attempt and reports whether a failure is worth retrying.
func (c *Client) do(req *http.Request, target interface{}) (bool, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500, err
	}

	return false, json.NewDecoder(resp.Body).Decode(target)
}
