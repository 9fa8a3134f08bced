package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arloliu/grouper"
	"github.com/arloliu/grouper/internal/logging"
	"github.com/arloliu/grouper/types"
)

const (
	flagConfig = "config"
	flagListen = "listen"
)

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "grouper",
		Short:         "grouper splits a roster into randomized, job-balanced groups.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String(flagConfig, "", "Path to the YAML config file; defaults apply when empty.")
	cmd.PersistentFlags().String(flagListen, "", "Override http.listen, for example :8080.")

	cmd.AddCommand(
		serveCmd(),
		shuffleCmd(),
		rosterCmd(),
		natsdCmd(),
		versionCmd(),
	)

	return cmd
}

// Execute runs the root command with a context canceled on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return RootCmd().ExecuteContext(ctx)
}

// loadConfig reads the --config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (grouper.Config, error) {
	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return grouper.Config{}, fmt.Errorf("error reading %s: %w", flagConfig, err)
	}

	cfg, err := grouper.LoadConfig(path)
	if err != nil {
		return cfg, err
	}

	listen, err := cmd.Flags().GetString(flagListen)
	if err != nil {
		return cfg, fmt.Errorf("error reading %s: %w", flagListen, err)
	}
	if listen != "" {
		cfg.HTTP.Listen = listen
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// newLogger builds the logger described by cfg.Log, writing to the
// command's error stream.
func newLogger(cmd *cobra.Command, cfg grouper.Config) (types.Logger, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	return logger, nil
}
