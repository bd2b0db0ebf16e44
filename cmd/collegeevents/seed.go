package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var resetConfirmed bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the store with demo accounts and events",
	Long: `Seed writes the club accounts, the demo student and the demo events.
Collections that already exist are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.store.InitializeDemoData(cmd.Context()); err != nil {
			return err
		}
		a.logger.Info("demo data ready")
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every collection and seed the demo data again",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetConfirmed {
			return errors.New("reset deletes all accounts, events and registrations; pass --yes to confirm")
		}
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.store.ResetDemoData(cmd.Context()); err != nil {
			return err
		}
		a.logger.Info("demo data reset")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "Confirm the reset")
	rootCmd.AddCommand(seedCmd, resetCmd)
}
