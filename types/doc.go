// Package types provides core type definitions and interfaces for the grouper module.
//
// This package contains shared types that are used across multiple packages.
// By keeping these types in a separate package, we avoid import cycles
// between the root grouper package and its internal implementations.
//
// Key types:
//   - Person: Roster entry (name, job, department)
//   - Group: One output partition
//   - RosterState: Loading / Failed / Loaded
//   - RosterProvider: Roster source interface
//   - GroupingStrategy: Partitioning algorithm interface
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
