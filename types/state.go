package types

// RosterState represents the load state of the roster.
//
// States follow a defined progression:
//
//	RosterStateLoading → RosterStateLoaded
//	RosterStateLoading → RosterStateFailed
//
// A refresh moves Loaded or Failed back to Loading. The three states are
// mutually exclusive and map directly to what the UI renders.
type RosterState int

const (
	// RosterStateLoading indicates the roster has not finished loading.
	RosterStateLoading RosterState = iota

	// RosterStateFailed indicates the last load attempt failed.
	RosterStateFailed

	// RosterStateLoaded indicates the roster is available.
	RosterStateLoaded
)

// String returns the string representation of the state.
func (s RosterState) String() string {
	switch s {
	case RosterStateLoading:
		return "Loading"
	case RosterStateFailed:
		return "Failed"
	case RosterStateLoaded:
		return "Loaded"
	default:
		return "Unknown"
	}
}
