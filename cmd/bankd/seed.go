/*
seed.go - Demo dataset loader

PURPOSE:
  Populates a fresh database with a small, self-consistent world: an
  individual, a business, an admin, funded accounts, an unpaid bill and
  two standing orders. Refuses to touch a database that already has
  state so a stray seed cannot clobber a real run.

LOGINS (all with password "demo1234"):
  maria      individual
  watercorp  business
  admin      administrator
*/
package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/aegean/bank-engine/api"
	"github.com/aegean/bank-engine/bank"
	"github.com/aegean/bank-engine/store/sqlite"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a demo dataset into an empty database",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log := newLogger(cfg)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}
	defer store.Close()

	existing, err := store.LoadAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if existing != nil {
		return errors.New("database already contains state, seed refuses to overwrite it")
	}

	hash, err := api.HashPassword("demo1234")
	if err != nil {
		return err
	}

	b := bank.New(bank.NewDate(2026, time.January, 1), log)
	b.AddCustomer(bank.NewIndividual("cust-1", "maria", hash, "Maria Papadopoulou",
		"maria@example.com", "+302101234567", "123456789"))
	b.AddCustomer(bank.NewBusiness("biz-1", "watercorp", hash, "Water Corp S.A.",
		"billing@watercorp.example", "+302107654321", "EL123456789"))
	b.AddCustomer(bank.NewAdmin("admin-1", "admin", hash, "+302100000000"))

	maria, err := b.OpenPersonalAccount("cust-1", decimal.RequireFromString("1500.00"))
	if err != nil {
		return err
	}
	corp, err := b.OpenBusinessAccount("biz-1", decimal.RequireFromString("10000.00"), decimal.Zero)
	if err != nil {
		return err
	}

	bill, err := b.IssueBill("cust-1", "biz-1", "Water Corp S.A.",
		decimal.RequireFromString("42.30"), bank.NewDate(2026, time.January, 25), "")
	if err != nil {
		return err
	}

	if _, err := b.CreateTransferOrder(maria.IBAN, corp.IBAN,
		decimal.RequireFromString("100.00"), 1, 5, "Monthly savings sweep", "cust-1"); err != nil {
		return err
	}
	if _, err := b.CreateBillPaymentOrder(maria.IBAN, "", "Water Corp S.A.",
		decimal.Zero, 1, 27, "cust-1"); err != nil {
		return err
	}

	if err := store.SaveAll(cmd.Context(), b.Snapshot()); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	fmt.Printf("Seeded %s at %s\n", cfg.DBPath, b.CurrentDate())
	fmt.Printf("  accounts: %s (maria), %s (watercorp)\n", maria.IBAN, corp.IBAN)
	fmt.Printf("  unpaid bill %s (%s) due %s\n", bill.ID, bill.RFCode, bill.DueDate)
	fmt.Println("  logins: maria / watercorp / admin, password demo1234")
	return nil
}
