package grouper

import "github.com/arloliu/grouper/types"

// Re-export types from the types package.
//
// The types subpackage holds the definitions so internal packages and
// providers can depend on it without importing the root package, while users
// can still write grouper.Person, grouper.Logger and so on.
type (
	Person      = types.Person
	Group       = types.Group
	RosterState = types.RosterState
)

// Re-export interfaces from the types package for convenience.
type (
	RosterProvider   = types.RosterProvider
	GroupingStrategy = types.GroupingStrategy
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
	Hooks            = types.Hooks
)

// Re-export RosterState constants from the types package.
const (
	RosterStateLoading = types.RosterStateLoading
	RosterStateFailed  = types.RosterStateFailed
	RosterStateLoaded  = types.RosterStateLoaded
)
