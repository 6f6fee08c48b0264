package ui

// state represents the different screens of the TUI.
type state int

const (
	stateMenu state = iota
	stateTimedInput
	stateRunning
	stateCommand
)

func (s state) String() string {
	switch s {
	case stateMenu:
		return "Menu"
	case stateTimedInput:
		return "TimedInput"
	case stateRunning:
		return "Running"
	case stateCommand:
		return "Command"
	default:
		return "Unknown"
	}
}
