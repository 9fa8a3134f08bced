package types

import "context"

// RosterProvider supplies the full list of people to be grouped.
//
// Implementations can query various backends:
//   - Static: fixed in-memory list
//   - File: YAML or JSON roster file
//   - SQL: relational table (SQLite)
//   - KV: NATS JetStream key-value bucket
//   - Notion: Notion database query API
//
// The Service calls ListPeople once per load cycle:
//   - Startup (initial load)
//   - Refresh() (explicit reload requested by an operator or the UI)
//
// Re-fetch policy, caching and retries belong to the provider, not to the
// grouping strategies.
type RosterProvider interface {
	// ListPeople returns every person in the roster.
	//
	// Implementations should:
	//   - Return people in a stable, meaningful order (it drives the job listing order)
	//   - Handle context cancellation gracefully
	//   - Return an error instead of a partial roster
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//
	// Returns:
	//   - []Person: The roster
	//   - error: Load error (nil on success)
	ListPeople(ctx context.Context) ([]Person, error)
}
