package history

import (
	"net/http"
	"strconv"

	"paperpharmacy/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

func limitFrom(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}

// List handles GET /v1/history
// @Summary List prescription history
// @Description Past prescriptions of the current visitor, newest first
// @Tags history
// @Produce json
// @Param X-Visitor-Token header string false "Visitor token"
// @Param limit query int false "Max entries" default(20)
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /v1/history [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	visitorID := httpx.VisitorIDFrom(r)
	if visitorID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Visitor token required", nil)
		return
	}

	entries, err := h.service.List(r.Context(), visitorID, limitFrom(r))
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, entries, map[string]any{"count": len(entries)})
}

// Books handles GET /v1/history/books
// @Summary Prescribed books
// @Description Every book prescribed to the current visitor, newest first, without duplicates
// @Tags history
// @Produce json
// @Param limit query int false "Max books" default(20)
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /v1/history/books [get]
func (h *HTTPHandler) Books(w http.ResponseWriter, r *http.Request) {
	visitorID := httpx.VisitorIDFrom(r)
	if visitorID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Visitor token required", nil)
		return
	}

	books, err := h.service.Books(r.Context(), visitorID, limitFrom(r))
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, books, map[string]any{"count": len(books)})
}

// Clear handles DELETE /v1/history
// @Summary Clear prescription history
// @Tags history
// @Success 204 "No Content"
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /v1/history [delete]
func (h *HTTPHandler) Clear(w http.ResponseWriter, r *http.Request) {
	visitorID := httpx.VisitorIDFrom(r)
	if visitorID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Visitor token required", nil)
		return
	}

	if _, err := h.service.Clear(r.Context(), visitorID); err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccessNoContent(w)
}
