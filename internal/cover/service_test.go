package cover

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	images map[string]*Image
}

func (f fakeFetcher) Fetch(ctx context.Context, u string) (*Image, error) {
	if img, ok := f.images[u]; ok {
		return img, nil
	}
	return nil, errors.New("render failed")
}

func TestService_Display(t *testing.T) {
	id := Identity{ISBN: "111", Title: "아몬드", Author: "손원평"}
	winner := Candidates("111", "")[0]

	t.Run("image loads", func(t *testing.T) {
		img := &Image{ContentType: "image/jpeg", Data: []byte("jpeg")}
		svc := NewService(fakeProber(map[string]bool{winner: true}, nil, nil), fakeFetcher{images: map[string]*Image{winner: img}})

		d := svc.Display(context.Background(), id)
		assert.Same(t, img, d.Image)
		assert.Equal(t, winner, d.State.URL)
	})

	t.Run("probe passed but render failed", func(t *testing.T) {
		svc := NewService(fakeProber(map[string]bool{winner: true}, nil, nil), fakeFetcher{})

		d := svc.Display(context.Background(), id)
		assert.Nil(t, d.Image)
		assert.True(t, d.State.Fallback)
		assert.Empty(t, d.State.URL)
		assert.Equal(t, Select("아몬드", "손원평"), d.Placeholder)
	})

	t.Run("nothing loads", func(t *testing.T) {
		svc := NewService(fakeProber(nil, nil, nil), fakeFetcher{})

		d := svc.Display(context.Background(), id)
		assert.Nil(t, d.Image)
		assert.True(t, d.State.Fallback)
	})
}

func TestPlaceholderURL(t *testing.T) {
	u, err := url.Parse(PlaceholderURL("아몬드", "손원평", SizeSmall))
	require.NoError(t, err)
	assert.Equal(t, PlaceholderPath, u.Path)
	assert.Equal(t, "아몬드", u.Query().Get("title"))
	assert.Equal(t, "손원평", u.Query().Get("author"))
	assert.Equal(t, "small", u.Query().Get("size"))

	assert.NotContains(t, PlaceholderURL("a", "b", SizeLarge), "size=")
}

func TestHTTPHandler_Placeholder(t *testing.T) {
	h := NewHTTPHandler(NewService(fakeProber(nil, nil, nil), fakeFetcher{}))

	req := httptest.NewRequest(http.MethodGet, PlaceholderURL("아몬드", "손원평", SizeSmall), nil)
	w := httptest.NewRecorder()
	h.Placeholder(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Cache-Control"), "immutable")
	assert.Equal(t, Select("아몬드", "손원평").SVG(SizeSmall), w.Body.String())
}

func TestHTTPHandler_Resolve(t *testing.T) {
	winner := Candidates("111", "")[2]
	h := NewHTTPHandler(NewService(fakeProber(map[string]bool{winner: true}, nil, nil), fakeFetcher{}))

	req := httptest.NewRequest(http.MethodGet, "/v1/covers/resolve?isbn=111&title=A&author=B", nil)
	w := httptest.NewRecorder()
	h.Resolve(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Success bool `json:"success"`
		Data    struct {
			State       State     `json:"state"`
			Placeholder string    `json:"placeholder"`
			Selection   Selection `json:"selection"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, winner, body.Data.State.URL)
	assert.False(t, body.Data.State.Fallback)
	assert.True(t, strings.HasPrefix(body.Data.Placeholder, PlaceholderPath+"?"))
	assert.Equal(t, Select("A", "B").Palette, body.Data.Selection.Palette)
}

func TestHTTPHandler_Image(t *testing.T) {
	winner := Candidates("111", "")[0]

	t.Run("streams image", func(t *testing.T) {
		img := &Image{ContentType: "image/jpeg", Data: []byte("jpegdata")}
		h := NewHTTPHandler(NewService(fakeProber(map[string]bool{winner: true}, nil, nil), fakeFetcher{images: map[string]*Image{winner: img}}))

		w := httptest.NewRecorder()
		h.Image(w, httptest.NewRequest(http.MethodGet, "/v1/covers/image?isbn=111&title=A", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
		assert.Equal(t, "jpegdata", w.Body.String())
		assert.Empty(t, w.Header().Get("X-Cover-Fallback"))
	})

	t.Run("falls back to placeholder", func(t *testing.T) {
		h := NewHTTPHandler(NewService(fakeProber(nil, nil, nil), fakeFetcher{}))

		w := httptest.NewRecorder()
		h.Image(w, httptest.NewRequest(http.MethodGet, "/v1/covers/image?isbn=111&title=A&author=B", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "true", w.Header().Get("X-Cover-Fallback"))
		assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
		assert.Equal(t, Select("A", "B").SVG(SizeLarge), w.Body.String())
	})
}

func TestHTTPHandler_ImageRefusesInternalCover(t *testing.T) {
	var hits int
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write(pngBytes(t, 4, 4))
	}))
	defer internal.Close()

	prober := NewHTTPProber("PaperPharmacy/1.0", 2*time.Second)
	h := NewHTTPHandler(NewService(prober, prober))

	target := "/v1/covers/image?title=A&author=B&cover=" + url.QueryEscape(internal.URL+"/secret")
	w := httptest.NewRecorder()
	h.Image(w, httptest.NewRequest(http.MethodGet, target, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Cover-Fallback"))
	assert.Equal(t, "image/svg+xml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, Select("A", "B").SVG(SizeLarge), w.Body.String())
	assert.Zero(t, hits)
}
