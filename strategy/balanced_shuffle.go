package strategy

import "github.com/arloliu/grouper/types"

// NameBalanced is the configuration name of the BalancedShuffle strategy.
const NameBalanced = "balanced"

// BalancedShuffle implements randomized, job/department-balanced grouping.
type BalancedShuffle struct {
	rng Rand
}

var _ types.GroupingStrategy = (*BalancedShuffle)(nil)

// BalancedShuffleOption configures a BalancedShuffle strategy.
type BalancedShuffleOption func(*BalancedShuffle)

// NewBalancedShuffle creates a new balanced shuffle strategy.
//
// The strategy shuffles the roster, clusters people that share the same job
// and department, and deals each cluster out across the groups so that
// colleagues with the same role end up spread over different groups.
//
// Parameters:
//   - opts: Optional configuration (WithRand)
//
// Returns:
//   - *BalancedShuffle: Initialized strategy using the global random source by default
//
// Example:
//
//	s := strategy.NewBalancedShuffle()
//	groups := s.Group(people, 3)
func NewBalancedShuffle(opts ...BalancedShuffleOption) *BalancedShuffle {
	b := &BalancedShuffle{rng: globalRand{}}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// WithRand sets the randomness source.
//
// The source is wrapped with a mutex, so a seeded *rand.Rand can be shared by
// concurrent callers.
//
// Parameters:
//   - rng: Randomness source (nil keeps the global source)
//
// Returns:
//   - BalancedShuffleOption: Configuration option
func WithRand(rng Rand) BalancedShuffleOption {
	return func(b *BalancedShuffle) {
		if rng == nil {
			return
		}
		b.rng = &lockedRand{src: rng}
	}
}

// Name returns "balanced".
func (b *BalancedShuffle) Name() string {
	return NameBalanced
}

// Group partitions people into randomized, balanced groups.
//
// The algorithm:
//  1. effective = min(groupCount, len(people)); return no groups if effective <= 0
//  2. Fisher–Yates shuffle a copy of people
//  3. Bucket the shuffled people by Job+Department, buckets in first-seen order,
//     members in shuffled order
//  4. Walk buckets in order and deal every member to groups[cursor], where the
//     cursor starts at 0 and advances modulo effective after each member; the
//     cursor carries across bucket boundaries and is never reset
//
// Because the cursor is shared by all buckets, groups are not guaranteed to be
// exactly even in composition when buckets are small relative to the group count.
//
// Parameters:
//   - people: Roster to partition (not modified)
//   - groupCount: Requested number of groups
//
// Returns:
//   - []types.Group: Exactly min(groupCount, len(people)) groups, or none
func (b *BalancedShuffle) Group(people []types.Person, groupCount int) []types.Group {
	effective := EffectiveGroupCount(groupCount, len(people))
	if effective == 0 {
		return []types.Group{}
	}

	groups := newGroups(effective)
	cursor := 0
	for _, bucket := range bucketize(Shuffle(people, b.rng)) {
		for _, p := range bucket {
			groups[cursor] = append(groups[cursor], p)
			cursor = (cursor + 1) % effective
		}
	}

	return groups
}

// bucketize clusters people by bucket key. Buckets are returned in the order
// their key was first seen; members keep their relative order.
func bucketize(people []types.Person) [][]types.Person {
	index := make(map[string]int)
	buckets := make([][]types.Person, 0)

	for _, p := range people {
		key := p.BucketKey()
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, nil)
		}
		buckets[i] = append(buckets[i], p)
	}

	return buckets
}
