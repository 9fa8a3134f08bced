// Package roster keeps the service's view of the roster: the current load
// state, the last loaded people and the last load error.
//
// A Loader fetches the roster from a types.RosterProvider in the background,
// publishes every state change to subscribers, and only reloads when asked to.
package roster
