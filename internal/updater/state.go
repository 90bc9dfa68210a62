package updater

import (
	"errors"
	"fmt"
	"strings"
)

// State is a step of the replace protocol for one target
type State int

const (
	Idle State = iota
	Quarantined
	VersionResolved
	Wiped
	Downloaded
	Extracted
	Restored
	Done
	Aborted
)

var stateNames = [...]string{
	Idle:            "Idle",
	Quarantined:     "Quarantined",
	VersionResolved: "VersionResolved",
	Wiped:           "Wiped",
	Downloaded:      "Downloaded",
	Extracted:       "Extracted",
	Restored:        "Restored",
	Done:            "Done",
	Aborted:         "Aborted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether no transition leaves s
func (s State) Terminal() bool {
	return s == Done || s == Aborted
}

var (
	// ErrProcessRunning is returned when a program runs from the directory about to be wiped
	ErrProcessRunning = errors.New("a program is running from the working path")
	// ErrNoVersionsFound is returned when not even the installed version exists remotely
	ErrNoVersionsFound = errors.New("no available versions found")
)

// PhaseError reports where a target's update stopped
type PhaseError struct {
	Target string
	// State is the last state reached before the failure
	State State
	// Resource is the path or URL the failing step worked on
	Resource string
	// Unsafe is set once the wipe has started: the target may be empty or
	// partially populated and needs manual recovery
	Unsafe bool
	// HoldingDir still holds quarantined entries when restoring them failed
	HoldingDir string
	Err        error
}

func (e *PhaseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: failed after %s", e.Target, e.State)
	if e.Resource != "" {
		fmt.Fprintf(&b, " (%s)", e.Resource)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	if e.Unsafe {
		b.WriteString("; manual recovery required")
		if e.HoldingDir != "" {
			fmt.Fprintf(&b, ", protected files remain in %s", e.HoldingDir)
		}
	}
	return b.String()
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// IsUnsafe reports whether err carries a PhaseError raised after a wipe
func IsUnsafe(err error) bool {
	var pe *PhaseError
	return errors.As(err, &pe) && pe.Unsafe
}
