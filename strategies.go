package grouper

import (
	"fmt"
	"slices"

	"github.com/arloliu/grouper/strategy"
)

// StrategyNames returns the names of the built-in grouping strategies.
func StrategyNames() []string {
	return []string{strategy.NameBalanced, strategy.NameRoundRobin, strategy.NameConsistentHash}
}

// IsKnownStrategy reports whether name is a built-in strategy.
func IsKnownStrategy(name string) bool {
	return slices.Contains(StrategyNames(), name)
}

// NewStrategy builds a built-in grouping strategy by name.
//
// Parameters:
//   - name: Strategy name (balanced, round-robin, consistent-hash)
//   - cfg: Grouping settings (hash seed and virtual nodes for consistent-hash)
//   - rng: Randomness for balanced; nil uses the global source
//
// Returns:
//   - GroupingStrategy: The strategy
//   - error: ErrUnknownStrategy for unrecognized names
//
// Example:
//
//	s, err := grouper.NewStrategy("consistent-hash", cfg.Grouping, nil)
func NewStrategy(name string, cfg GroupingConfig, rng strategy.Rand) (GroupingStrategy, error) {
	switch name {
	case strategy.NameBalanced:
		return strategy.NewBalancedShuffle(strategy.WithRand(rng)), nil
	case strategy.NameRoundRobin:
		return strategy.NewRoundRobin(), nil
	case strategy.NameConsistentHash:
		return strategy.NewConsistentHash(
			strategy.WithVirtualNodes(cfg.VirtualNodes),
			strategy.WithHashSeed(cfg.HashSeed),
		), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
