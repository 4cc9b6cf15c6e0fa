package prescription

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

var (
	ErrLocationUnavailable  = errors.New(MsgLocationUnavailable)
	ErrLocationNotSupported = errors.New(MsgLocationNotSupported)
)

// LocationProvider reports where the reader is. It fails with
// ErrLocationUnavailable when the reader denied or could not share a
// position, and ErrLocationNotSupported when the client cannot provide
// one at all.
type LocationProvider interface {
	Locate(r *http.Request) (Location, error)
}

// ColorSchemeProvider reports whether the reader prefers a dark scheme.
// The second result is false when the client gave no preference.
type ColorSchemeProvider interface {
	PrefersDark(r *http.Request) (dark bool, ok bool)
}

// QueryLocationProvider reads lat and lon query parameters, which the
// client fills from the browser's geolocation. A client without
// geolocation sends geo=unsupported instead.
type QueryLocationProvider struct{}

func (QueryLocationProvider) Locate(r *http.Request) (Location, error) {
	q := r.URL.Query()
	if q.Get("geo") == "unsupported" {
		return Location{}, ErrLocationNotSupported
	}

	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return Location{}, ErrLocationUnavailable
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		return Location{}, ErrLocationUnavailable
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Location{}, ErrLocationUnavailable
	}
	return Location{Latitude: lat, Longitude: lon}, nil
}

// ClientHintColorScheme reads the Sec-CH-Prefers-Color-Scheme client hint.
type ClientHintColorScheme struct{}

const colorSchemeHint = "Sec-CH-Prefers-Color-Scheme"

func (ClientHintColorScheme) PrefersDark(r *http.Request) (bool, bool) {
	switch strings.Trim(strings.ToLower(r.Header.Get(colorSchemeHint)), `" `) {
	case "dark":
		return true, true
	case "light":
		return false, true
	default:
		return false, false
	}
}

// ToggleLocation mirrors the location button: with a location set it
// clears it, otherwise it asks the provider and records either the
// position or the failure message.
func ToggleLocation(s State, p LocationProvider, r *http.Request) State {
	if s.Location != nil {
		return Reduce(s, ClearLocation{})
	}
	s = Reduce(s, ClearLocation{})

	loc, err := p.Locate(r)
	if err != nil {
		msg := MsgLocationUnavailable
		if errors.Is(err, ErrLocationNotSupported) {
			msg = MsgLocationNotSupported
		}
		return Reduce(s, LocationFailed{Message: msg})
	}
	return Reduce(s, LocationResolved{Location: loc})
}
