package prescription

import (
	"errors"
	"fmt"
)

var ErrUnknownAction = errors.New("unknown action")

// ActionRequest is the wire form of an Action.
type ActionRequest struct {
	Type     string   `json:"type" validate:"required"`
	Field    string   `json:"field,omitempty"`
	Value    string   `json:"value,omitempty"`
	Region   string   `json:"region,omitempty"`
	Location Location `json:"location,omitempty"`
	Message  string   `json:"message,omitempty"`
	Enabled  bool     `json:"enabled,omitempty"`
}

// ParseAction maps a wire action to a reducer action. Submission and
// its outcomes are not accepted here; they only happen through Prescribe.
func ParseAction(a ActionRequest) (Action, error) {
	switch a.Type {
	case "set_field":
		switch a.Field {
		case FieldMood, FieldSituation, FieldGenre, FieldPurpose:
			return SetField{Field: a.Field, Value: a.Value}, nil
		}
		return nil, fmt.Errorf("%w: field %q", ErrUnknownAction, a.Field)
	case "set_region":
		return SetRegion{Region: a.Region}, nil
	case "location_resolved":
		return LocationResolved{Location: a.Location}, nil
	case "location_failed":
		msg := a.Message
		if msg == "" {
			msg = MsgLocationUnavailable
		}
		return LocationFailed{Message: msg}, nil
	case "clear_location":
		return ClearLocation{}, nil
	case "close_popup":
		return ClosePopup{}, nil
	case "toggle_dark_mode":
		return ToggleDarkMode{}, nil
	case "set_dark_mode":
		return SetDarkMode{Enabled: a.Enabled}, nil
	case "reset":
		return Reset{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
}
