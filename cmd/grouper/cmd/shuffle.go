package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arloliu/grouper"
	"github.com/arloliu/grouper/types"
)

const (
	flagGroups   = "groups"
	flagStrategy = "strategy"
)

func shuffleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shuffle",
		Short: "Load the roster once and print one shuffle",
		Long: `Loads the roster from the configured source, forms groups and prints
them one per line. The group count is parsed leniently: "3 teams" means 3
and text without leading digits yields no groups.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			rawGroups, err := cmd.Flags().GetString(flagGroups)
			if err != nil {
				return fmt.Errorf("error reading %s: %w", flagGroups, err)
			}
			strategyName, err := cmd.Flags().GetString(flagStrategy)
			if err != nil {
				return fmt.Errorf("error reading %s: %w", flagStrategy, err)
			}

			groupCount := cfg.Grouping.DefaultGroupCount
			if cmd.Flags().Changed(flagGroups) {
				groupCount = grouper.ParseGroupCount(rawGroups)
			}

			svc, closeFn, err := loadService(cmd, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()

			groups, err := svc.ShuffleWith(strategyName, groupCount)
			if err != nil {
				return err
			}

			return printGroups(cmd.OutOrStdout(), groups)
		},
	}

	cmd.Flags().String(flagGroups, strconv.Itoa(grouper.DefaultConfig().Grouping.DefaultGroupCount), "Number of groups to form.")
	cmd.Flags().String(flagStrategy, "", "Grouping strategy (balanced, round-robin, consistent-hash); defaults to grouping.strategy.")

	return cmd
}

// loadService opens the configured roster source and loads it once.
func loadService(cmd *cobra.Command, cfg grouper.Config) (*grouper.Service, grouper.CloseFunc, error) {
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}

	provider, closeFn, err := grouper.OpenRosterProvider(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	svc, err := grouper.NewService(&cfg, provider,
		grouper.WithLogger(logger),
		grouper.WithSourceName(cfg.Roster.Source),
	)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}

	if snap := svc.Load(cmd.Context()); snap.State != types.RosterStateLoaded {
		_ = closeFn()
		return nil, nil, snap.Err
	}

	return svc, closeFn, nil
}
