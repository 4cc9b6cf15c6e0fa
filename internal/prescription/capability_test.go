package prescription

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryLocationProvider(t *testing.T) {
	tests := []struct {
		target  string
		want    Location
		wantErr error
	}{
		{"/?lat=37.5665&lon=126.978", Location{Latitude: 37.5665, Longitude: 126.978}, nil},
		{"/", Location{}, ErrLocationUnavailable},
		{"/?lat=abc&lon=1", Location{}, ErrLocationUnavailable},
		{"/?lat=91&lon=1", Location{}, ErrLocationUnavailable},
		{"/?geo=unsupported", Location{}, ErrLocationNotSupported},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, err := QueryLocationProvider{}.Locate(httptest.NewRequest(http.MethodPost, tt.target, nil))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClientHintColorScheme(t *testing.T) {
	tests := []struct {
		header   string
		wantDark bool
		wantOK   bool
	}{
		{"dark", true, true},
		{`"dark"`, true, true},
		{"light", false, true},
		{"", false, false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("Sec-CH-Prefers-Color-Scheme", tt.header)
		}
		dark, ok := ClientHintColorScheme{}.PrefersDark(r)
		assert.Equal(t, tt.wantDark, dark, tt.header)
		assert.Equal(t, tt.wantOK, ok, tt.header)
	}
}

func TestToggleLocation(t *testing.T) {
	p := QueryLocationProvider{}

	st := ToggleLocation(InitialState(), p, httptest.NewRequest(http.MethodPost, "/?lat=37.5&lon=127", nil))
	require.NotNil(t, st.Location)
	assert.Equal(t, NearbyRegionLabel, st.RegionLabel())

	st = ToggleLocation(st, p, httptest.NewRequest(http.MethodPost, "/?lat=37.5&lon=127", nil))
	assert.Nil(t, st.Location, "second toggle clears")

	st = ToggleLocation(st, p, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Nil(t, st.Location)
	assert.Equal(t, MsgLocationUnavailable, st.LocationError)

	st = ToggleLocation(st, p, httptest.NewRequest(http.MethodPost, "/?geo=unsupported", nil))
	assert.Equal(t, MsgLocationNotSupported, st.LocationError)
}
