package types

import "errors"

// Sentinel errors for the grouper module.
//
// These errors provide type-safe error checking using errors.Is().
// Components wrap external errors with context using fmt.Errorf("%s: %w", msg, err).

// Service errors - Public API errors returned by the Service.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrRosterProviderRequired is returned when the roster provider is nil.
	ErrRosterProviderRequired = errors.New("roster provider is required")

	// ErrAlreadyStarted is returned when Start is called on an already running service.
	ErrAlreadyStarted = errors.New("service already started")

	// ErrNotStarted is returned when operations require a started service.
	ErrNotStarted = errors.New("service not started")

	// ErrRosterLoading is returned when a shuffle is requested before the roster finished loading.
	ErrRosterLoading = errors.New("roster is still loading")

	// ErrRosterUnavailable is returned when the roster could not be loaded.
	ErrRosterUnavailable = errors.New("roster unavailable")

	// ErrUnknownStrategy is returned when a grouping strategy name is not recognized.
	ErrUnknownStrategy = errors.New("unknown grouping strategy")
)

// Source errors - Errors returned by roster providers.
var (
	// ErrUnknownSource is returned when a roster source name is not recognized.
	ErrUnknownSource = errors.New("unknown roster source")

	// ErrInvalidPerson is returned when a roster entry has no name.
	ErrInvalidPerson = errors.New("invalid person: name is required")

	// ErrNotionRequest is returned when the Notion API responds with a non-2xx status.
	ErrNotionRequest = errors.New("notion API request failed")

	// ErrConnectivity indicates a NATS/KV connectivity issue.
	ErrConnectivity = errors.New("connectivity issue")
)
