package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/mangaplus-notifier/internal/credential"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage the MANGA Plus device secret",
	Long: `The device secret is optional. When set it is sent with every title
detail request. It is kept in the system keyring, never in the config file.`,
}

var secretSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the device secret in the system keyring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		value, _ := cmd.Flags().GetString("value")
		if value == "" {
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Device secret").
						Description("Secret issued to your MANGA Plus device").
						EchoMode(huh.EchoModePassword).
						Value(&value).
						Validate(validateRequired("Device secret")),
				),
			)
			if err := form.Run(); err != nil {
				return fmt.Errorf("reading device secret: %w", err)
			}
		}

		value = strings.TrimSpace(value)
		if value == "" {
			return errors.New("device secret is empty")
		}
		if err := credential.Set(credential.DeviceSecretKey, value); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Device secret stored.")
		return nil
	},
}

var secretClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the device secret from the system keyring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := credential.Delete(credential.DeviceSecretKey); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Device secret removed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(secretCmd)
	secretCmd.AddCommand(secretSetCmd, secretClearCmd)

	secretSetCmd.Flags().String("value", "", "device secret (prompted for when omitted)")
}
