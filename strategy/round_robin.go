package strategy

import "github.com/arloliu/grouper/types"

// NameRoundRobin is the configuration name of the RoundRobin strategy.
const NameRoundRobin = "round-robin"

// RoundRobin implements simple round-robin grouping in roster order.
type RoundRobin struct{}

var _ types.GroupingStrategy = (*RoundRobin)(nil)

// NewRoundRobin creates a new round-robin strategy.
//
// The strategy deals people out in roster order without shuffling or
// bucketing. It is deterministic: the same roster always yields the same groups.
//
// Returns:
//   - *RoundRobin: Initialized round-robin strategy
func NewRoundRobin() *RoundRobin {
	return &RoundRobin{}
}

// Name returns "round-robin".
func (rr *RoundRobin) Name() string {
	return NameRoundRobin
}

// Group partitions people using round-robin distribution.
//
// Parameters:
//   - people: Roster to partition (not modified)
//   - groupCount: Requested number of groups
//
// Returns:
//   - []types.Group: Person i goes to group i % effective
func (rr *RoundRobin) Group(people []types.Person, groupCount int) []types.Group {
	effective := EffectiveGroupCount(groupCount, len(people))
	if effective == 0 {
		return []types.Group{}
	}

	groups := newGroups(effective)
	for i, p := range people {
		idx := i % effective
		groups[idx] = append(groups[idx], p)
	}

	return groups
}
