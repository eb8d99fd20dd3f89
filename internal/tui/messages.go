package tui

// savedMsg reports the outcome of a save. revision is the edit count the
// payload was encoded at; quit asks the dashboard to exit once the save
// succeeded.
type savedMsg struct {
	err      error
	revision int
	quit     bool
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

type status struct {
	text string
	kind statusKind
}
