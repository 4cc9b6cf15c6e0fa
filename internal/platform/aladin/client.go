// Package aladin is a client for the Aladin TTB ItemSearch API and the
// search proxy the web client calls.
package aladin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"paperpharmacy/internal/logging"
	"paperpharmacy/internal/platform/breaker"
)

var (
	// ErrMissingAPIKey is returned when no TTB key is configured.
	ErrMissingAPIKey = errors.New("aladin: missing api key")
	// ErrEmptyQuery is returned for a blank search query.
	ErrEmptyQuery = errors.New("aladin: empty query")
)

// Query types accepted by ItemSearch.
const (
	QueryTypeTitle     = "Title"
	QueryTypeKeyword   = "Keyword"
	QueryTypeAuthor    = "Author"
	QueryTypePublisher = "Publisher"
)

// Cache stores raw search responses. searchcache.Cache satisfies it.
type Cache interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

// Book is one search hit in the shape the web client expects.
type Book struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Publisher   string `json:"publisher"`
	ISBN        string `json:"isbn"`
	Cover       string `json:"cover"`
	Link        string `json:"link"`
	Description string `json:"description"`
}

type searchResponse struct {
	ErrorCode    int    `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
	Item         []struct {
		Title       string `json:"title"`
		Author      string `json:"author"`
		Publisher   string `json:"publisher"`
		ISBN        string `json:"isbn"`
		ISBN13      string `json:"isbn13"`
		Cover       string `json:"cover"`
		Link        string `json:"link"`
		Description string `json:"description"`
	} `json:"item"`
}

const maxBodyBytes = 2 << 20

type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	maxResults int
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
	breaker    *breaker.Breaker[[]byte]
	cache      Cache
}

type Options struct {
	APIKey     string
	BaseURL    string
	MaxResults int
	RPS        int
	MaxRetries int
	Timeout    time.Duration
	Cache      Cache
}

func NewClient(opts Options) *Client {
	if opts.RPS <= 0 {
		opts.RPS = 1
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		apiKey:     opts.APIKey,
		baseURL:    opts.BaseURL,
		maxResults: opts.MaxResults,
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(opts.RPS)), 1),
		maxRetries: opts.MaxRetries,
		backoff:    500 * time.Millisecond,
		breaker:    breaker.New[[]byte]("aladin", breaker.Settings{}),
		cache:      opts.Cache,
	}
}

// Search runs ItemSearch for query. An empty queryType means Title.
func (c *Client) Search(ctx context.Context, query, queryType string) ([]Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if queryType == "" {
		queryType = QueryTypeTitle
	}

	cacheKey := queryType + ":" + query
	if c.cache != nil {
		if raw, ok, err := c.cache.Get(cacheKey); err == nil && ok {
			if books, err := decodeBooks(raw); err == nil {
				return books, nil
			}
		} else if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("aladin cache read failed")
		}
	}

	raw, err := c.breaker.Execute(func() ([]byte, error) {
		return c.get(ctx, c.searchURL(query, queryType))
	})
	if err != nil {
		return nil, err
	}

	books, err := decodeBooks(raw)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(cacheKey, raw); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("aladin cache write failed")
		}
	}
	return books, nil
}

func (c *Client) searchURL(query, queryType string) string {
	q := url.Values{}
	q.Set("ttbkey", c.apiKey)
	q.Set("Query", query)
	q.Set("QueryType", queryType)
	q.Set("MaxResults", strconv.Itoa(c.maxResults))
	q.Set("start", "1")
	q.Set("SearchTarget", "Book")
	q.Set("output", "js")
	q.Set("Version", "20131101")
	return c.baseURL + "?" + q.Encode()
}

func decodeBooks(raw []byte) ([]Book, error) {
	var res searchResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("aladin: decode response: %w", err)
	}
	if res.ErrorCode != 0 {
		return nil, fmt.Errorf("aladin: api error %d: %s", res.ErrorCode, res.ErrorMessage)
	}

	books := make([]Book, 0, len(res.Item))
	for _, it := range res.Item {
		isbn := it.ISBN13
		if isbn == "" {
			isbn = it.ISBN
		}
		books = append(books, Book{
			Title:       it.Title,
			Author:      it.Author,
			Publisher:   it.Publisher,
			ISBN:        isbn,
			Cover:       it.Cover,
			Link:        it.Link,
			Description: it.Description,
		})
	}
	return books, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * c.backoff
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, readErr := readBody(resp)
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return nil, lastErr
		}
		if readErr != nil {
			lastErr = readErr
			continue
		}
		return body, nil
	}
	return nil, fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}
