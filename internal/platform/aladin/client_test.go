package aladin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{"version":"20131101","totalResults":1,"item":[
	{"title":"아몬드","author":"손원평 (지은이)","publisher":"창비","isbn":"8936434128","isbn13":"9788936434120","cover":"https://image.aladin.co.kr/a.jpg","link":"https://www.aladin.co.kr/p/1","description":"감정을 느끼지 못하는 소년"},
	{"title":"No13","author":"x","publisher":"y","isbn":"1111111111","cover":"","link":"","description":""}
]}`

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memCache) Get(k string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[k]
	return v, ok, nil
}

func (m *memCache) Set(k string, v []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[k] = v
	return nil
}

func newTestClient(baseURL string, cache Cache) *Client {
	c := NewClient(Options{APIKey: "ttb-test", BaseURL: baseURL, RPS: 100, MaxRetries: 1, Cache: cache})
	c.backoff = time.Millisecond
	return c
}

func TestSearch(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{}
		for k := range r.URL.Query() {
			got[k] = r.URL.Query().Get(k)
		}
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	books, err := newTestClient(srv.URL, nil).Search(context.Background(), "아몬드 손원평", "")

	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"ttbkey":       "ttb-test",
		"Query":        "아몬드 손원평",
		"QueryType":    "Title",
		"MaxResults":   "3",
		"start":        "1",
		"SearchTarget": "Book",
		"output":       "js",
		"Version":      "20131101",
	}, got)
	require.Len(t, books, 2)
	assert.Equal(t, "9788936434120", books[0].ISBN, "isbn13 preferred")
	assert.Equal(t, "1111111111", books[1].ISBN)
	assert.Equal(t, "https://www.aladin.co.kr/p/1", books[0].Link)
}

func TestSearch_Errors(t *testing.T) {
	_, err := NewClient(Options{BaseURL: "http://unused"}).Search(context.Background(), "q", "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = newTestClient("http://unused", nil).Search(context.Background(), "  ", "")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errorCode":100,"errorMessage":"잘못된 TTBKey"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, nil).Search(context.Background(), "q", "")
	assert.ErrorContains(t, err, "api error 100")
}

func TestSearch_UsesCache(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	cache := &memCache{data: map[string][]byte{}}
	c := newTestClient(srv.URL, cache)

	first, err := c.Search(context.Background(), "아몬드", QueryTypeTitle)
	require.NoError(t, err)
	second, err := c.Search(context.Background(), "아몬드", QueryTypeTitle)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Contains(t, cache.data, "Title:아몬드")
}

func TestSearch_RetriesServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	books, err := newTestClient(srv.URL, nil).Search(context.Background(), "q", "")
	require.NoError(t, err)
	assert.Len(t, books, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
