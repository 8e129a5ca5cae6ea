/*
root.go - Command tree and shared setup

PURPOSE:
  Defines the bankd root command and the helpers shared by every
  subcommand: configuration loading, logger construction, and restoring
  the bank from its SQLite snapshot.

COMMANDS:
  bankd serve      Run the HTTP API server
  bankd simulate   Advance the simulated calendar from the CLI
  bankd seed       Load a demo dataset into the database

CONFIGURATION:
  Environment variables (optionally from a .env file), see
  config/config.go. The --db flag overrides DB_PATH for one-off runs
  against a scratch database.
*/
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aegean/bank-engine/bank"
	"github.com/aegean/bank-engine/config"
	"github.com/aegean/bank-engine/store/sqlite"
)

var dbPathFlag string

var rootCmd = &cobra.Command{
	Use:   "bankd",
	Short: "Retail bank simulation engine",
	Long: `bankd runs a retail bank over a simulated calendar: accounts accrue
interest daily and realize it monthly, bills age into overdue, and
standing orders fire on their due dates as the clock advances.

Time only moves when told to. Use the simulate command or the
/api/system/simulate endpoint to step the calendar forward.`,
}

// Execute dispatches the command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "SQLite database path (overrides DB_PATH)")
}

func loadConfig() *config.Config {
	cfg := config.Load()
	if dbPathFlag != "" {
		cfg.DBPath = dbPathFlag
	}
	return cfg
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// openBank restores the bank from the database, or starts a fresh one
// at today's date when the database is empty.
func openBank(cmd *cobra.Command, cfg *config.Config, log *logrus.Logger) (*bank.Bank, *sqlite.Store, error) {
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}

	state, err := store.LoadAll(cmd.Context())
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("load state: %w", err)
	}

	var b *bank.Bank
	if state == nil {
		b = bank.New(bank.Today(), log)
		log.Infof("No saved state in %s, starting fresh at %s", cfg.DBPath, b.CurrentDate())
	} else {
		b = bank.Restore(state, log)
		log.Infof("Restored state from %s, simulated date %s", cfg.DBPath, b.CurrentDate())
	}
	return b, store, nil
}
