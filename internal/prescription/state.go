package prescription

// Step is the progress indicator shown above the form.
type Step int

const (
	StepInput Step = iota
	StepPrescribing
	StepResult
)

// State is the full view state of one reader session. It is only ever
// changed by Reduce, so a client can hold it, send it back and get the
// same transitions the server would apply.
type State struct {
	Input           Input                `json:"input"`
	Region          string               `json:"region"`
	Location        *Location            `json:"location,omitempty"`
	LocationError   string               `json:"location_error,omitempty"`
	Recommendations []BookRecommendation `json:"recommendations"`
	Loading         bool                 `json:"loading"`
	Error           string               `json:"error,omitempty"`
	Step            Step                 `json:"step"`
	PopupOpen       bool                 `json:"popup_open"`
	DarkMode        bool                 `json:"dark_mode"`
}

// InitialState is the state of a fresh session.
func InitialState() State {
	return State{
		Region:          DefaultRegion,
		Recommendations: []BookRecommendation{},
		Step:            StepInput,
	}
}

// RegionLabel is the scope shown on the libraries section.
func (s State) RegionLabel() string {
	if s.Location != nil {
		return NearbyRegionLabel
	}
	return s.Region
}

// Request builds the source request for the current input.
func (s State) Request(exclude []string) Request {
	region := s.Region
	if region == "" {
		region = DefaultRegion
	}
	return Request{
		Input:         s.Input,
		Region:        region,
		Location:      s.Location,
		ExcludeTitles: exclude,
	}
}

// Action is a state transition.
type Action interface {
	apply(State) State
}

// Field names accepted by SetField.
const (
	FieldMood      = "mood"
	FieldSituation = "situation"
	FieldGenre     = "genre"
	FieldPurpose   = "purpose"
)

type SetField struct {
	Field string
	Value string
}

func (a SetField) apply(s State) State {
	switch a.Field {
	case FieldMood:
		s.Input.Mood = a.Value
	case FieldSituation:
		s.Input.Situation = a.Value
	case FieldGenre:
		s.Input.Genre = a.Value
	case FieldPurpose:
		s.Input.Purpose = a.Value
	}
	return s
}

type SetRegion struct{ Region string }

func (a SetRegion) apply(s State) State {
	s.Region = a.Region
	return s
}

type LocationResolved struct{ Location Location }

func (a LocationResolved) apply(s State) State {
	loc := a.Location
	s.Location = &loc
	s.LocationError = ""
	return s
}

type LocationFailed struct{ Message string }

func (a LocationFailed) apply(s State) State {
	s.Location = nil
	s.LocationError = a.Message
	return s
}

type ClearLocation struct{}

func (ClearLocation) apply(s State) State {
	s.Location = nil
	s.LocationError = ""
	return s
}

type Submitted struct{}

func (Submitted) apply(s State) State {
	s.Loading = true
	s.Step = StepPrescribing
	s.Error = ""
	s.PopupOpen = false
	return s
}

type Succeeded struct{ Books []BookRecommendation }

func (a Succeeded) apply(s State) State {
	s.Recommendations = a.Books
	s.Step = StepResult
	s.PopupOpen = true
	s.Loading = false
	return s
}

type Failed struct{ Message string }

func (a Failed) apply(s State) State {
	msg := a.Message
	if msg == "" {
		msg = msgUnknownFailure
	}
	s.Error = msg
	s.Step = StepInput
	s.Loading = false
	return s
}

type ClosePopup struct{}

func (ClosePopup) apply(s State) State {
	s.PopupOpen = false
	return s
}

type ToggleDarkMode struct{}

func (ToggleDarkMode) apply(s State) State {
	s.DarkMode = !s.DarkMode
	return s
}

type SetDarkMode struct{ Enabled bool }

func (a SetDarkMode) apply(s State) State {
	s.DarkMode = a.Enabled
	return s
}

// Reset clears the form back to the initial state. The colour scheme
// is a display preference and survives.
type Reset struct{}

func (Reset) apply(s State) State {
	dark := s.DarkMode
	s = InitialState()
	s.DarkMode = dark
	return s
}

// Reduce applies actions in order.
func Reduce(s State, actions ...Action) State {
	for _, a := range actions {
		s = a.apply(s)
	}
	return s
}
