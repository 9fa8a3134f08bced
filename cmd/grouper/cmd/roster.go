package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/grouper"
	"github.com/arloliu/grouper/source"
)

const (
	flagFile    = "file"
	flagReplace = "replace"
)

func rosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Inspect and seed the roster",
	}

	cmd.AddCommand(
		rosterListCmd(),
		rosterImportCmd(),
	)

	return cmd
}

func rosterListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the roster grouped by job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			svc, closeFn, err := loadService(cmd, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()

			return printRoster(cmd.OutOrStdout(), svc.Snapshot().People)
		},
	}
}

func rosterImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Write a roster file into the configured sqlite or nats source",
		Long: `Reads a YAML or JSON roster file and writes it into the store selected by
roster.source. Only the sqlite and nats sources are writable. With --replace
the stored roster is cleared first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			path, err := cmd.Flags().GetString(flagFile)
			if err != nil {
				return fmt.Errorf("error reading %s: %w", flagFile, err)
			}
			replace, err := cmd.Flags().GetBool(flagReplace)
			if err != nil {
				return fmt.Errorf("error reading %s: %w", flagReplace, err)
			}

			people, err := source.NewFile(path).ListPeople(cmd.Context())
			if err != nil {
				return err
			}

			logger, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}

			store, closeFn, err := grouper.OpenRosterStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()

			if err := store.Import(cmd.Context(), people, replace); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d people into %s\n", len(people), cfg.Roster.Source)

			return err
		},
	}

	cmd.Flags().String(flagFile, "", "Roster file (YAML or JSON).")
	cmd.Flags().Bool(flagReplace, false, "Clear the stored roster before importing.")
	_ = cmd.MarkFlagRequired(flagFile)

	return cmd
}
