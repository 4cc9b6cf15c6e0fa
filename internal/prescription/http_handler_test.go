package prescription

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperpharmacy/internal/httpx"
)

type envelope struct {
	Success bool                    `json:"success"`
	Data    State                   `json:"data"`
	Meta    map[string]any          `json:"meta"`
	Error   httpx.ErrorResponseBody `json:"error"`
}

func doJSON(t *testing.T, h http.HandlerFunc, target string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw)))

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestHTTPHandler_Prescribe(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	source := NewMockSource(ctrl)
	handler := NewHTTPHandler(NewService(source, nil, nil, nil), QueryLocationProvider{}, ClientHintColorScheme{})

	t.Run("success", func(t *testing.T) {
		source.EXPECT().Recommend(gomock.Any(), gomock.Any()).Return(threeBooks(), nil)
		st := Reduce(InitialState(), SetField{Field: FieldMood, Value: "calm"})

		w, env := doJSON(t, handler.Prescribe, "/v1/prescriptions", PrescribeRequest{State: st})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Success)
		assert.Equal(t, StepResult, env.Data.Step)
		assert.Len(t, env.Data.Recommendations, 3)
		assert.Equal(t, DefaultRegion, env.Meta["region_label"])
	})

	t.Run("mood missing", func(t *testing.T) {
		w, env := doJSON(t, handler.Prescribe, "/v1/prescriptions", PrescribeRequest{State: InitialState()})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		assert.Equal(t, MsgMoodRequired, env.Error.Message)
		require.NotEmpty(t, env.Error.Details)
		assert.Equal(t, "mood", env.Error.Details[0].Field)
	})

	t.Run("upstream failure returns reset state", func(t *testing.T) {
		source.EXPECT().Recommend(gomock.Any(), gomock.Any()).Return(nil, ErrRecommendationFailed)
		st := Reduce(InitialState(), SetField{Field: FieldMood, Value: "calm"})

		w, env := doJSON(t, handler.Prescribe, "/v1/prescriptions", PrescribeRequest{State: st})

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.False(t, env.Success)
		assert.Equal(t, "RECOMMENDATION_FAILED", env.Error.Code)
		assert.Equal(t, MsgRecommendationFailed, env.Error.Message)
		assert.Equal(t, StepInput, env.Data.Step)
		assert.Equal(t, MsgRecommendationFailed, env.Data.Error)
	})

	t.Run("invalid json", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Prescribe(w, httptest.NewRequest(http.MethodPost, "/v1/prescriptions", bytes.NewBufferString("{")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHTTPHandler_InitialState(t *testing.T) {
	handler := NewHTTPHandler(nil, QueryLocationProvider{}, ClientHintColorScheme{})

	r := httptest.NewRequest(http.MethodGet, "/v1/state", nil)
	r.Header.Set("Sec-CH-Prefers-Color-Scheme", "dark")
	w := httptest.NewRecorder()
	handler.InitialState(w, r)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Data.DarkMode)
	assert.Equal(t, DefaultRegion, env.Data.Region)
	assert.Len(t, env.Meta["moods"], len(MoodOptions))
}

func TestHTTPHandler_ApplyActions(t *testing.T) {
	handler := NewHTTPHandler(nil, QueryLocationProvider{}, nil)

	w, env := doJSON(t, handler.ApplyActions, "/v1/state/actions", ActionsRequest{
		State: InitialState(),
		Actions: []ActionRequest{
			{Type: "set_field", Field: "mood", Value: "anxious"},
			{Type: "set_region", Region: "부산"},
			{Type: "toggle_dark_mode"},
		},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anxious", env.Data.Input.Mood)
	assert.Equal(t, "부산", env.Data.Region)
	assert.True(t, env.Data.DarkMode)

	w, _ = doJSON(t, handler.ApplyActions, "/v1/state/actions", ActionsRequest{
		State:   InitialState(),
		Actions: []ActionRequest{{Type: "succeeded"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHTTPHandler_ToggleLocation(t *testing.T) {
	handler := NewHTTPHandler(nil, QueryLocationProvider{}, nil)

	w, env := doJSON(t, handler.ToggleLocation, "/v1/state/location?lat=37.5&lon=127.0", InitialState())
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Data.Location)
	assert.Equal(t, NearbyRegionLabel, env.Meta["region_label"])

	_, env = doJSON(t, handler.ToggleLocation, "/v1/state/location", InitialState())
	assert.Equal(t, MsgLocationUnavailable, env.Data.LocationError)
}
