package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"cred-entry/internal/ledger"
	"cred-entry/internal/models"
	"cred-entry/internal/util"
)

var (
	addCashier string
	addBank    string
	addCredit  string

	listSearch string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a credit entry to the current ledger",
	Long: `Appends one entry with the next free ID and the current time.

Example:
  cred-entry add --cashier Misrak --bank Abay --credit 150.00`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an entry from the current ledger by ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries of the current ledger, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the current ledger file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), newStore(nil).Path(newLocator()))
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addCashier, "cashier", "", "cashier name")
	addCmd.Flags().StringVar(&addBank, "bank", "", "bank name")
	addCmd.Flags().StringVar(&addCredit, "credit", "", "credit amount, e.g. 150.00")
	_ = addCmd.MarkFlagRequired("cashier")
	_ = addCmd.MarkFlagRequired("bank")
	_ = addCmd.MarkFlagRequired("credit")

	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "keep rows containing this text (case-insensitive)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	if err := util.ValidateCashier(addCashier); err != nil {
		return err
	}
	if err := util.ValidateBank(addBank); err != nil {
		return err
	}
	credit, err := decimal.NewFromString(strings.TrimSpace(addCredit))
	if err != nil {
		return fmt.Errorf("please enter a valid credit amount: %q", addCredit)
	}

	pub := newPublisher()
	defer pub.Close()

	saved, err := newStore(pub).Append(cmd.Context(), newLocator(), models.Entry{
		Cashier: addCashier,
		Bank:    addBank,
		Credit:  credit,
	})
	if err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved: ID %d | %s - %s\n", saved.ID, saved.Bank, saved.Credit.StringFixed(2))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid entry ID %q", args[0])
	}

	pub := newPublisher()
	defer pub.Close()

	msg, err := newStore(pub).Delete(cmd.Context(), newLocator(), id)
	switch {
	case errors.Is(err, ledger.ErrLedgerNotFound):
		return errors.New("file not found")
	case errors.Is(err, ledger.ErrEntryNotFound):
		return fmt.Errorf("could not find entry ID %d in the file", id)
	case err != nil:
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	store := newStore(nil)
	loc := newLocator()

	table, err := store.LoadAll(cmd.Context(), loc)
	if err != nil {
		if !errors.Is(err, ledger.ErrLedgerUnreadable) {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", err)
	}

	records := ledger.SortByIDDesc(ledger.Search(table.Records, listSearch))

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(table.Header, "\t"))
	for _, r := range records {
		fmt.Fprintln(w, strings.Join(r.Values(), "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	sum := ledger.Summarize(records)
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d entries, total %s (%s)\n", sum.Count, sum.Total.StringFixed(2), store.Path(loc))
	return nil
}
