// Package strategy provides built-in grouping strategy implementations.
//
// Grouping strategies determine how a roster is split into groups.
// The package includes three built-in strategies:
//
//   - BalancedShuffle: Random shuffle, job/department bucketing, round-robin dealing (default)
//   - RoundRobin: Deterministic round-robin in roster order
//   - ConsistentHash: Stable person-to-group mapping per seed
//
// # Strategy Selection Guide
//
// BalancedShuffle:
//   - Use for ad-hoc team building
//   - Spreads people with the same job and department across groups
//   - Every call produces an independent random arrangement
//
// RoundRobin:
//   - Use when the roster order is already meaningful
//   - Guarantees group sizes differ by at most one
//
// ConsistentHash:
//   - Use when the same seed must always reproduce the same teams
//   - Changing the group count moves as few people as possible
//
// All strategies produce min(groupCount, len(people)) groups, return no groups
// for a non-positive count or an empty roster, and place every person exactly once.
//
// Custom strategies can be implemented by satisfying the types.GroupingStrategy interface.
package strategy
