package strategy

import "github.com/arloliu/grouper/types"

// Shuffle returns a uniformly random permutation of items using the
// Fisher–Yates algorithm.
//
// For index i from len-1 down to 1, j is drawn uniformly from [0, i] and the
// elements at i and j are swapped. The input slice is never modified; the
// permutation is built on a copy.
//
// Parameters:
//   - items: Slice to permute
//   - rng: Randomness source
//
// Returns:
//   - []T: Shuffled copy of items (empty, non-nil for empty input)
func Shuffle[T any](items []T, rng Rand) []T {
	out := make([]T, len(items))
	copy(out, items)

	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}

	return out
}

// EffectiveGroupCount returns the number of groups a strategy produces.
//
// The count is min(requested, rosterSize), clamped to zero when the request
// is zero or negative.
//
// Parameters:
//   - requested: Group count asked for by the caller
//   - rosterSize: Number of people in the roster
//
// Returns:
//   - int: Number of groups to create (0 means an empty result)
func EffectiveGroupCount(requested, rosterSize int) int {
	n := min(requested, rosterSize)
	if n <= 0 {
		return 0
	}

	return n
}

// newGroups allocates n empty, non-nil groups so that an empty group still
// encodes as [] rather than null.
func newGroups(n int) []types.Group {
	groups := make([]types.Group, n)
	for i := range groups {
		groups[i] = types.Group{}
	}

	return groups
}
