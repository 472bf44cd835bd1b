package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/mangaplus-notifier/internal/model"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file",
	Long: `Write the configuration file, asking for each setting interactively.

Examples:
  mangaplus-notifier config init              # Interactive form
  mangaplus-notifier config init --defaults   # Write defaults without asking
  mangaplus-notifier config init --force      # Overwrite an existing file`,
	Args: cobra.NoArgs,
	// An existing invalid file must not prevent rewriting it.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE:              runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "config:           %s\n", configPath())
		fmt.Fprintf(w, "title.id:         %d\n", cfg.Title.ID)
		fmt.Fprintf(w, "title.name:       %s\n", cfg.Title.Name)
		fmt.Fprintf(w, "api.base_url:     %s\n", cfg.API.BaseURL)
		fmt.Fprintf(w, "api.timeout_sec:  %d\n", cfg.API.TimeoutSec)
		fmt.Fprintf(w, "notify.backend:   %s\n", cfg.Notify.Backend)
		fmt.Fprintf(w, "notify.ack_timeout_sec: %d\n", cfg.Notify.AckTimeoutSec)
		fmt.Fprintf(w, "notify.wait_for_dismiss: %t\n", cfg.Notify.WaitForDismiss)
		fmt.Fprintf(w, "log.level:        %s\n", cfg.Log.Level)
		fmt.Fprintf(w, "data_dir:         %s\n", cfg.DataDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)

	configInitCmd.Flags().Bool("defaults", false, "write the default configuration without prompting")
	configInitCmd.Flags().Bool("force", false, "overwrite an existing configuration file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	useDefaults, _ := cmd.Flags().GetBool("defaults")
	force, _ := cmd.Flags().GetBool("force")

	path := configPath()
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	}

	c := model.DefaultAppConfig()
	if !useDefaults {
		if err := configForm(c).Run(); err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := model.SaveConfig(path, c); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

// configForm edits c in place. Numeric fields go through string inputs
// and are parsed back by their validators.
func configForm(c *model.AppConfig) *huh.Form {
	titleID := strconv.Itoa(c.Title.ID)
	ackTimeout := strconv.Itoa(c.Notify.AckTimeoutSec)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title ID").
				Description("Numeric id from the title's MANGA Plus URL").
				Value(&titleID).
				Validate(positiveInt("Title ID", &c.Title.ID)),
			huh.NewInput().
				Title("Title name").
				Description("Shown as the notification summary").
				Value(&c.Title.Name).
				Validate(validateRequired("Title name")),
			huh.NewInput().
				Title("API base URL").
				Value(&c.API.BaseURL).
				Validate(validateURL),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Notification backend").
				Options(
					huh.NewOption("Auto - desktop when available, terminal otherwise", model.BackendAuto),
					huh.NewOption("Desktop - freedesktop notification server", model.BackendDesktop),
					huh.NewOption("Terminal - interactive prompt", model.BackendTerminal),
				).
				Value(&c.Notify.Backend),
			huh.NewInput().
				Title("Acknowledgment timeout (seconds)").
				Value(&ackTimeout).
				Validate(positiveInt("Timeout", &c.Notify.AckTimeoutSec)),
			huh.NewConfirm().
				Title("Keep the notification up until dismissed?").
				Value(&c.Notify.WaitForDismiss),
			huh.NewInput().
				Title("Data directory").
				Value(&c.DataDir).
				Validate(validateRequired("Data directory")),
		),
	)
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("must be an absolute URL")
	}
	return nil
}

// positiveInt validates s and stores the parsed value in dst.
func positiveInt(field string, dst *int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive number", field)
		}
		*dst = n
		return nil
	}
}
