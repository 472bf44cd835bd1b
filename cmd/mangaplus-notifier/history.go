package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nhle/mangaplus-notifier/internal/model"
	"github.com/nhle/mangaplus-notifier/internal/store"
	"github.com/nhle/mangaplus-notifier/internal/theme"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past notifications",
	Long: `List shown notifications, newest first, with how each one ended.

Examples:
  mangaplus-notifier history             # Last 20 notifications
  mangaplus-notifier history --limit 5`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("limit", "n", 20, "maximum number of notifications to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	history, err := openHistory()
	if err != nil {
		return err
	}
	defer history.Close()

	recs, err := history.ListNotifications(cmd.Context(), store.NotificationFilter{Limit: limit})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(w, "No notifications yet.")
		return nil
	}

	fmt.Fprintln(w, historyTable(recs).Render())
	return nil
}

func historyTable(recs []model.NotificationRecord) *table.Table {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			string(r.Kind),
			r.ChapterName,
			r.State,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(theme.BorderStyle).
		Headers("SHOWN", "KIND", "CHAPTER", "STATE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true)
			}
			if col == 3 {
				return theme.StateStyle(rows[row][3]).Padding(0, 1)
			}
			return s
		})
}
