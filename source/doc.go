// Package source provides built-in roster provider implementations.
//
// Roster providers supply the list of people that groups are formed from.
// The package includes:
//
//   - Static: Fixed in-memory roster (DefaultRoster holds the sample team)
//   - File: YAML or JSON roster file, re-read on every load
//   - SQL: SQLite table with name, job and department columns
//   - KV: NATS JetStream key-value bucket
//   - Notion: Notion database queried over the HTTP API
//   - Cached: TTL cache around any other provider
//
// Custom providers can be implemented by satisfying the types.RosterProvider interface.
package source
