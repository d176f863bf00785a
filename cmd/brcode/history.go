package main

import (
	"fmt"

	"github.com/alovak/brcode-playground/internal/amount"
	"github.com/alovak/brcode-playground/internal/datefmt"
	"github.com/alovak/brcode-playground/internal/i18n"
	"github.com/spf13/cobra"
)

func newHistoryCmd(c *cli) *cobra.Command {
	var limit int
	var showCode bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List generated BR Codes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := c.openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			transactions, err := svc.ListTransactions(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(transactions) == 0 {
				fmt.Fprintln(out, i18n.T("history.empty"))
				return nil
			}
			fmt.Fprintln(out, i18n.T("history.header"))
			for _, t := range transactions {
				fmt.Fprintln(out, i18n.T("history.row", datefmt.DisplayISO(t.Date), amount.Format(t.Amount), t.ID))
				if showCode {
					fmt.Fprintln(out, "  "+t.BRCode)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of entries (default storage.history_limit)")
	cmd.Flags().BoolVar(&showCode, "code", false, "print the BR Code under each entry")

	return cmd
}
