// Package testutil provides shared test utilities and fixtures.
//
// Utilities that belong here:
//   - Assertion helpers (groups form an exact partition of the roster)
//   - Test data generators (rosters with known job/department buckets)
//   - Wait helpers (poll services until the roster reaches a state)
//
// Note: For NATS server setup, use the github.com/arloliu/grouper/testing package.
package testutil
