package main

import (
	"errors"
	"fmt"

	"github.com/alovak/brcode-playground/internal/i18n"
	"github.com/alovak/brcode-playground/merchant"
	"github.com/spf13/cobra"
)

func newSettingsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the merchant profile",
	}
	cmd.AddCommand(newSettingsShowCmd(c))
	cmd.AddCommand(newSettingsSetCmd(c))
	return cmd
}

func newSettingsShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the saved merchant profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := c.openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			profile, err := svc.GetProfile(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, i18n.T("settings.header"))
			fmt.Fprintf(out, "  %s: %s\n", i18n.T("settings.key"), orNotSet(profile.PixKey))
			fmt.Fprintf(out, "  %s: %s\n", i18n.T("settings.name"), orNotSet(profile.RecipientName))
			fmt.Fprintf(out, "  %s: %s\n", i18n.T("settings.city"), orNotSet(profile.City))
			return nil
		},
	}
}

func newSettingsSetCmd(c *cli) *cobra.Command {
	var key, name, city string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save the Pix key, recipient name and city",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := c.openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			// flags left out keep their saved value
			profile, err := svc.GetProfile(cmd.Context())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("key") {
				profile.PixKey = key
			}
			if cmd.Flags().Changed("name") {
				profile.RecipientName = name
			}
			if cmd.Flags().Changed("city") {
				profile.City = city
			}

			if _, err := svc.SaveProfile(cmd.Context(), *profile); err != nil {
				if errors.Is(err, merchant.ErrProfileIncomplete) {
					return errors.New(i18n.T("settings.incomplete"))
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("settings.saved"))
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Pix key (email, phone, tax id or random key)")
	cmd.Flags().StringVar(&name, "name", "", "recipient name")
	cmd.Flags().StringVar(&city, "city", "", "recipient city")

	return cmd
}

func orNotSet(s string) string {
	if s == "" {
		return i18n.T("settings.not_set")
	}
	return s
}
