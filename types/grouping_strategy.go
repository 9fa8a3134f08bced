package types

// GroupingStrategy splits a roster into a requested number of groups.
//
// Strategies implement different grouping algorithms:
//   - BalancedShuffle: random shuffle, job/department bucketing, round-robin spread
//   - RoundRobin: roster order, plain round-robin
//   - ConsistentHash: stable person-to-group mapping for a given seed
//
// Every strategy must honor the same structural rules:
//   - The number of groups is min(groupCount, len(people))
//   - A non-positive effective count yields an empty, non-nil result
//   - Every input person appears in exactly one group
//   - The input slice is never mutated
type GroupingStrategy interface {
	// Name returns the strategy identifier used in configuration and metrics.
	Name() string

	// Group partitions people into groups.
	//
	// Parameters:
	//   - people: Roster to partition
	//   - groupCount: Requested number of groups (may be zero or negative)
	//
	// Returns:
	//   - []Group: Exactly min(groupCount, len(people)) groups, or none
	Group(people []Person, groupCount int) []Group
}
