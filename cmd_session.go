package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cred-entry/internal/models"
)

var endSessionCmd = &cobra.Command{
	Use:   "end-session",
	Short: "Forget the current ledger; the next entry starts a new file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loc := newLocator()
		p, ok := loc.Current()
		if err := loc.Clear(); err != nil {
			return err
		}
		if ok {
			fmt.Fprintf(cmd.OutOrStdout(), "Session ended (%s).\n", p.AggregateFile)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No session to end.")
		return nil
	},
}

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Print the cashier and bank names",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Cashiers: "+strings.Join(models.Cashiers, ", "))
		fmt.Fprintln(out, "Banks:    "+strings.Join(models.Banks, ", "))
	},
}
