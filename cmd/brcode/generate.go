package main

import (
	"errors"
	"fmt"

	"github.com/alovak/brcode-playground/internal/amount"
	"github.com/alovak/brcode-playground/internal/i18n"
	"github.com/alovak/brcode-playground/internal/qrcode"
	"github.com/alovak/brcode-playground/merchant"
	"github.com/alovak/brcode-playground/merchant/models"
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

// copyToClipboard is swapped in tests, CI machines have no clipboard.
var copyToClipboard = clipboard.WriteAll

func newGenerateCmd(c *cli) *cobra.Command {
	var (
		cents       bool
		qrFile      string
		toClipboard bool
		noQR        bool
	)

	cmd := &cobra.Command{
		Use:   "generate AMOUNT",
		Short: "Generate a BR Code for AMOUNT",
		Example: `  brcode generate 10,50
  brcode generate 1050 --cents --copy
  brcode generate "R$ 1.234,56" --qr pix.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := c.openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			tx, err := svc.Generate(cmd.Context(), models.CreatePayload{Amount: args[0], Cents: cents})
			switch {
			case errors.Is(err, merchant.ErrProfileIncomplete):
				return errors.New(i18n.T("settings.incomplete"))
			case errors.Is(err, merchant.ErrInvalidAmount):
				return fmt.Errorf("%s (%w)", i18n.T("error.invalid_amount"), err)
			case err != nil:
				return err
			}

			out := cmd.OutOrStdout()
			gen := qrcode.NewGenerator(c.cfg.QR.Size)

			fmt.Fprintln(out, i18n.T("generate.amount", amount.Format(tx.Amount)))
			if !noQR {
				art, err := gen.Terminal(tx.BRCode)
				if err != nil {
					return err
				}
				fmt.Fprint(out, art)
			}
			fmt.Fprintln(out, i18n.T("generate.code"))
			fmt.Fprintln(out, tx.BRCode)

			if qrFile != "" {
				if err := gen.WriteFile(tx.BRCode, qrFile); err != nil {
					return err
				}
				fmt.Fprintln(out, i18n.T("generate.qr_saved", qrFile))
			}
			if toClipboard {
				if err := copyToClipboard(tx.BRCode); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("generate.copy_failed", err))
				} else {
					fmt.Fprintln(out, i18n.T("generate.copied"))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&cents, "cents", false, "read AMOUNT as digits typed on a keypad (1050 is 10,50)")
	cmd.Flags().StringVar(&qrFile, "qr", "", "also write the QR code as PNG to this file")
	cmd.Flags().BoolVar(&toClipboard, "copy", false, "copy the code to the clipboard")
	cmd.Flags().BoolVar(&noQR, "no-qr", false, "do not draw the QR code in the terminal")

	return cmd
}
