package prescription

import (
	"errors"
	"net/http"

	"paperpharmacy/internal/httpx"
)

type HTTPHandler struct {
	service     *Service
	location    LocationProvider
	colorScheme ColorSchemeProvider
}

func NewHTTPHandler(service *Service, location LocationProvider, colorScheme ColorSchemeProvider) *HTTPHandler {
	return &HTTPHandler{
		service:     service,
		location:    location,
		colorScheme: colorScheme,
	}
}

type PrescribeRequest struct {
	State         State    `json:"state"`
	ExcludeTitles []string `json:"exclude_titles,omitempty" validate:"max=20"`
}

type ActionsRequest struct {
	State   State           `json:"state" validate:"-"`
	Actions []ActionRequest `json:"actions" validate:"required,min=1,dive"`
}

// Prescribe handles POST /v1/prescriptions
// @Summary Prescribe books
// @Description Recommends three books for the reader's mood and returns the next view state
// @Tags prescriptions
// @Accept json
// @Produce json
// @Param request body PrescribeRequest true "Current state"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /v1/prescriptions [post]
func (h *HTTPHandler) Prescribe(w http.ResponseWriter, r *http.Request) {
	var req PrescribeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body", nil)
		return
	}

	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", MsgMoodRequired, details)
		return
	}

	st, err := h.service.Prescribe(r.Context(), httpx.VisitorIDFrom(r), req.State, req.ExcludeTitles)
	switch {
	case errors.Is(err, ErrInvalidInput):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", MsgMoodRequired, nil)
		return
	case errors.Is(err, ErrRecommendationFailed):
		httpx.JSONErrorWithData(w, r, http.StatusBadGateway, "RECOMMENDATION_FAILED", MsgRecommendationFailed, st)
		return
	case err != nil:
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, st, map[string]any{"region_label": st.RegionLabel()})
}

// InitialState handles GET /v1/state
// @Summary Initial view state
// @Description Returns a fresh state, with dark mode taken from the colour-scheme client hint when present
// @Tags prescriptions
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/state [get]
func (h *HTTPHandler) InitialState(w http.ResponseWriter, r *http.Request) {
	st := InitialState()
	if h.colorScheme != nil {
		if dark, ok := h.colorScheme.PrefersDark(r); ok {
			st = Reduce(st, SetDarkMode{Enabled: dark})
		}
	}
	httpx.JSONSuccess(w, r, st, map[string]any{
		"moods":  MoodOptions,
		"genres": GenreOptions,
	})
}

// ApplyActions handles POST /v1/state/actions
// @Summary Apply view-state actions
// @Description Applies form actions to a state and returns the result
// @Tags prescriptions
// @Accept json
// @Produce json
// @Param request body ActionsRequest true "State and actions"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/state/actions [post]
func (h *HTTPHandler) ApplyActions(w http.ResponseWriter, r *http.Request) {
	var req ActionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid actions", details)
		return
	}

	actions := make([]Action, 0, len(req.Actions))
	for _, a := range req.Actions {
		act, err := ParseAction(a)
		if err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		actions = append(actions, act)
	}

	httpx.JSONSuccess(w, r, Reduce(req.State, actions...), nil)
}

// ToggleLocation handles POST /v1/state/location
// @Summary Toggle location
// @Description Clears the reader's location, or sets it from lat/lon query parameters
// @Tags prescriptions
// @Accept json
// @Produce json
// @Param lat query number false "Latitude"
// @Param lon query number false "Longitude"
// @Param request body State true "Current state"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/state/location [post]
func (h *HTTPHandler) ToggleLocation(w http.ResponseWriter, r *http.Request) {
	var st State
	if err := httpx.DecodeJSON(r, &st); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body", nil)
		return
	}

	st = ToggleLocation(st, h.location, r)
	httpx.JSONSuccess(w, r, st, map[string]any{"region_label": st.RegionLabel()})
}
