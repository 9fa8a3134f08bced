package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/spf13/cobra"

	"github.com/arloliu/grouper"
	"github.com/arloliu/grouper/source"
)

const (
	flagHost     = "host"
	flagPort     = "port"
	flagStoreDir = "store-dir"
	flagSeed     = "seed"
)

func natsdCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "natsd",
		Short: "Run a local NATS JetStream server for the nats roster source",
		Long: `Starts an embedded NATS server with JetStream enabled, prints its URL and
runs until interrupted. With --seed the configured roster bucket is filled
with the built-in sample roster, so "serve" with roster.source=nats works
out of the box.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			host, _ := cmd.Flags().GetString(flagHost)
			port, _ := cmd.Flags().GetInt(flagPort)
			storeDir, _ := cmd.Flags().GetString(flagStoreDir)
			seed, _ := cmd.Flags().GetBool(flagSeed)

			if storeDir == "" {
				storeDir, err = os.MkdirTemp("", "grouper-nats-")
				if err != nil {
					return fmt.Errorf("failed to create JetStream store: %w", err)
				}
				defer func() { _ = os.RemoveAll(storeDir) }()
			}

			ns, err := server.NewServer(&server.Options{
				Host:      host,
				Port:      port,
				JetStream: true,
				StoreDir:  storeDir,
				NoLog:     true,
				NoSigs:    true,
			})
			if err != nil {
				return fmt.Errorf("failed to create NATS server: %w", err)
			}

			go ns.Start()
			defer func() {
				ns.Shutdown()
				ns.WaitForShutdown()
			}()

			if !ns.ReadyForConnections(10 * time.Second) {
				return fmt.Errorf("NATS server not ready within timeout")
			}

			logger, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}

			if seed {
				cfg.Roster.Source = grouper.SourceNATS
				cfg.Roster.NATS.URL = ns.ClientURL()

				store, closeFn, err := grouper.OpenRosterStore(cmd.Context(), cfg, logger)
				if err != nil {
					return err
				}
				err = store.Import(cmd.Context(), source.DefaultRoster(), true)
				_ = closeFn()
				if err != nil {
					return err
				}

				logger.Info("seeded roster bucket", "bucket", cfg.Roster.NATS.Bucket)
			}

			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "NATS_URL=%s\n", ns.ClientURL()); err != nil {
				return err
			}
			logger.Info("nats server ready", "url", ns.ClientURL(), "storeDir", storeDir)

			<-cmd.Context().Done()
			logger.Info("nats server shutting down")

			return nil
		},
	}

	cmd.Flags().String(flagHost, "127.0.0.1", "Address to listen on.")
	cmd.Flags().Int(flagPort, 4222, "Client port; -1 picks a random port.")
	cmd.Flags().String(flagStoreDir, "", "JetStream store directory; a temporary one is used when empty.")
	cmd.Flags().Bool(flagSeed, false, "Seed the roster bucket with the built-in sample roster.")

	return cmd
}
