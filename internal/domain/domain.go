package domain

type State string

const (
	StateIdle      State = "idle"
	StateLoading   State = "loading"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Pane is the single thing the output area shows for a given snapshot.
type Pane string

const (
	PaneEmpty   Pane = "empty"
	PaneLoading Pane = "loading"
	PaneError   Pane = "error"
	PaneSummary Pane = "summary"
)

type Snapshot struct {
	State        State
	Transcript   string
	Summary      string
	ErrorMessage string
}

func (s Snapshot) Pane() Pane {
	switch {
	case s.State == StateLoading:
		return PaneLoading
	case s.State == StateFailed:
		return PaneError
	case s.Summary != "":
		return PaneSummary
	default:
		return PaneEmpty
	}
}
