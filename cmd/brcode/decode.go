package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alovak/brcode-playground/internal/amount"
	"github.com/alovak/brcode-playground/internal/brcode"
	"github.com/alovak/brcode-playground/internal/i18n"
	"github.com/spf13/cobra"
)

func newDecodeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "decode CODE",
		Short: "Verify the checksum of a BR Code and print its fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := brcode.Parse(strings.TrimSpace(args[0]))
			if err != nil {
				return errors.New(i18n.T("decode.invalid", err))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, i18n.T("decode.valid"))
			fmt.Fprintln(out, "  "+i18n.T("decode.key", payload.Key))
			fmt.Fprintln(out, "  "+i18n.T("decode.name", payload.RecipientName))
			fmt.Fprintln(out, "  "+i18n.T("decode.city", payload.City))
			if payload.Amount != "" {
				fmt.Fprintln(out, "  "+i18n.T("decode.amount", amount.Format(payload.Amount)))
			}
			if payload.Reference != "" {
				fmt.Fprintln(out, "  "+i18n.T("decode.reference", payload.Reference))
			}
			return nil
		},
	}
}
