/*
simulate.go - CLI calendar advancement

PURPOSE:
  Steps the simulated calendar without running the server. Useful for
  scripted scenarios and for inspecting what a month-end does to a
  saved database.

EXAMPLES:
  # Advance one day
  bankd simulate

  # Advance 30 days
  bankd simulate --days 30

  # Advance to a specific date
  bankd simulate --to 2026-03-31
*/
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aegean/bank-engine/bank"
)

var (
	simulateDays int
	simulateTo   string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Advance the simulated calendar",
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&simulateDays, "days", 0, "number of days to advance")
	simulateCmd.Flags().StringVar(&simulateTo, "to", "", "target date (YYYY-MM-DD)")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if simulateDays > 0 && simulateTo != "" {
		return errors.New("use either --days or --to, not both")
	}

	cfg := loadConfig()
	log := newLogger(cfg)

	b, store, err := openBank(cmd, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	var report *bank.SimulationReport
	switch {
	case simulateTo != "":
		target, err := bank.ParseDate(simulateTo)
		if err != nil {
			return fmt.Errorf("invalid --to date: %w", err)
		}
		report, err = b.Simulate(target)
		if err != nil {
			return err
		}
	case simulateDays > 0:
		if report, err = b.SimulateDays(simulateDays); err != nil {
			return err
		}
	default:
		if report, err = b.AdvanceDay(); err != nil {
			return err
		}
	}

	if err := store.SaveAll(cmd.Context(), b.Snapshot()); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	fmt.Printf("Simulated %s to %s (%d days)\n", report.From, report.To, report.Days)
	fmt.Printf("  interest applied:  %s\n", report.InterestApplied.StringFixed(2))
	fmt.Printf("  fees charged:      %s\n", report.FeesCharged.StringFixed(2))
	fmt.Printf("  orders executed:   %d (skipped %d)\n", report.OrdersExecuted, report.OrdersSkipped)
	fmt.Printf("  bills paid:        %d (went overdue %d)\n", report.BillsPaid, report.BillsOverdue)
	return nil
}
