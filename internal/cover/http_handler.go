package cover

import (
	"net/http"
	"strconv"

	"paperpharmacy/internal/httpx"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func identityFrom(r *http.Request) Identity {
	q := r.URL.Query()
	return Identity{
		ISBN:     q.Get("isbn"),
		Title:    q.Get("title"),
		Author:   q.Get("author"),
		CoverURL: q.Get("cover"),
	}
}

// Placeholder handles GET /v1/covers/placeholder.svg
// @Summary Generated placeholder cover
// @Description Deterministic gradient cover for a title and author
// @Tags covers
// @Produce image/svg+xml
// @Param title query string false "Book title"
// @Param author query string false "Book author"
// @Param size query string false "large or small" default(large)
// @Success 200 {string} string
// @Router /v1/covers/placeholder.svg [get]
func (h *HTTPHandler) Placeholder(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel := Select(q.Get("title"), q.Get("author"))
	writeSVG(w, sel.SVG(ParseSize(q.Get("size"))), "public, max-age=31536000, immutable")
}

// Resolve handles GET /v1/covers/resolve
// @Summary Resolve a book cover
// @Description Probes candidate cover URLs and returns the first that loads, or the placeholder
// @Tags covers
// @Produce json
// @Param isbn query string false "ISBN"
// @Param title query string false "Book title"
// @Param author query string false "Book author"
// @Param cover query string false "Supplied cover URL"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/covers/resolve [get]
func (h *HTTPHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r)
	st := h.svc.Resolve(r.Context(), id)

	httpx.JSONSuccess(w, r, map[string]any{
		"state":       st,
		"placeholder": PlaceholderURL(id.Title, id.Author, ParseSize(r.URL.Query().Get("size"))),
		"selection":   Select(id.Title, id.Author),
	}, nil)
}

// Image handles GET /v1/covers/image
// @Summary Cover image
// @Description Streams the resolved cover image, or the placeholder SVG when none loads
// @Tags covers
// @Produce image/jpeg,image/png,image/svg+xml
// @Param isbn query string false "ISBN"
// @Param title query string false "Book title"
// @Param author query string false "Book author"
// @Param cover query string false "Supplied cover URL"
// @Param size query string false "Placeholder size" default(large)
// @Success 200 {string} string
// @Router /v1/covers/image [get]
func (h *HTTPHandler) Image(w http.ResponseWriter, r *http.Request) {
	d := h.svc.Display(r.Context(), identityFrom(r))
	if d.Image == nil {
		w.Header().Set("X-Cover-Fallback", "true")
		writeSVG(w, d.Placeholder.SVG(ParseSize(r.URL.Query().Get("size"))), "no-cache")
		return
	}

	w.Header().Set("Content-Type", d.Image.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(d.Image.Data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(d.Image.Data)
}

func writeSVG(w http.ResponseWriter, svg, cacheControl string) {
	w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(svg))
}
