package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cred-entry/internal/config"
	"cred-entry/internal/events"
	"cred-entry/internal/events/kafka"
	"cred-entry/internal/ledger"
	"cred-entry/internal/logging"
	"cred-entry/internal/session"
)

var (
	// Global flags
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cred-entry",
	Short: "Record cashier credit entries into daily xlsx ledgers",
	Long: `cred-entry keeps one xlsx ledger per session/day with the columns
ID, Timestamp, Cashier, Bank and Credit.

Run "cred-entry serve" for the JSON API, or use the subcommands to append,
list and delete entries from scripts.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./config.yaml)")

	rootCmd.AddCommand(serveCmd, addCmd, deleteCmd, listCmd, pathCmd, endSessionCmd, optionsCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLocator builds the session locator from the ledger config.
func newLocator() *session.Locator {
	return session.NewLocator(cfg.Ledger.Dir, cfg.Ledger.PointerFile)
}

// newPublisher returns the kafka publisher, or a no-op one when no brokers
// are configured.
func newPublisher() events.Publisher {
	if len(cfg.Events.Brokers) == 0 {
		return events.Nop{}
	}
	logger.Info("publishing entry events",
		zap.Strings("brokers", cfg.Events.Brokers),
		zap.String("topic", cfg.Events.Topic),
	)
	return kafka.NewPublisher(cfg.Events.Brokers, cfg.Events.Topic)
}

func newStore(pub events.Publisher) *ledger.Store {
	return ledger.NewStore(cfg.Ledger.Sheet, logger, pub)
}
