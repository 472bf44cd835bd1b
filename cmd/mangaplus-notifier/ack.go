package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ackCmd = &cobra.Command{
	Use:   "ack",
	Short: "Acknowledge the latest cached chapter",
	Long: `Record the latest chapter of the cached snapshot as seen, as if its
notification had been acted upon. Nothing is fetched.`,
	Args: cobra.NoArgs,
	RunE: runAck,
}

func init() {
	rootCmd.AddCommand(ackCmd)
}

func runAck(cmd *cobra.Command, args []string) error {
	history, err := openHistory()
	if err != nil {
		return err
	}
	defer history.Close()

	a, err := newApp(history, false)
	if err != nil {
		return err
	}

	c, err := a.Acknowledge()
	if err != nil {
		return fmt.Errorf("acknowledging: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Acknowledged %s\n", c.Name)
	return nil
}
