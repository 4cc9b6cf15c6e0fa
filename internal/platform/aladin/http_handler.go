package aladin

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"paperpharmacy/internal/logging"
)

// Searcher is the part of Client the proxy needs.
type Searcher interface {
	Search(ctx context.Context, query, queryType string) ([]Book, error)
}

// HTTPHandler is the bookseller search proxy. It keeps the TTB key on
// the server and answers with a plain {"books": [...]} or {"error": "..."}
// body, which is what existing web clients parse.
type HTTPHandler struct {
	search Searcher
}

func NewHTTPHandler(s Searcher) *HTTPHandler {
	return &HTTPHandler{search: s}
}

// ServeHTTP handles GET and OPTIONS /api/aladin
// @Summary Bookseller search proxy
// @Description Searches Aladin by title (or another query type) and returns up to three books
// @Tags search
// @Produce json
// @Param query query string true "Search query"
// @Param queryType query string false "Title, Keyword, Author or Publisher" default(Title)
// @Success 200 {object} map[string][]Book
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/aladin [get]
func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet:
	default:
		w.Header().Set("Allow", "GET, OPTIONS")
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("query"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "검색어를 입력하세요"})
		return
	}

	books, err := h.search.Search(r.Context(), query, q.Get("queryType"))
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("query", query).Msg("aladin search failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "검색 실패"})
		return
	}

	writeJSON(w, http.StatusOK, map[string][]Book{"books": books})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
