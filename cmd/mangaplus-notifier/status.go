package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/nhle/mangaplus-notifier/internal/app"
	"github.com/nhle/mangaplus-notifier/internal/theme"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the cached chapter and acknowledgment state",
	Long: `Display the latest chapter of the cached snapshot, the next release
time, the acknowledgment record and the most recent notification.
Nothing is fetched.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	history, err := openHistory()
	if err != nil {
		return err
	}
	defer history.Close()

	a, err := newApp(history, false)
	if err != nil {
		return err
	}

	st, err := a.Status(cmd.Context())
	if err != nil {
		return err
	}

	printStatus(cmd.OutOrStdout(), st)
	return nil
}

func printStatus(w io.Writer, st app.Status) {
	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			theme.LabelStyle.Render(label),
			value,
		)
	}

	title := st.Title.Name
	if st.Title.Author != "" {
		title += " by " + st.Title.Author
	}

	rows := []string{theme.HeaderStyle.Render(title), ""}

	if st.Latest == nil {
		rows = append(rows, row("Latest", theme.HelpStyle.Render("nothing cached yet")))
	} else {
		latest := st.Latest.Name
		if st.Latest.Subtitle != "" {
			latest += " - " + st.Latest.Subtitle
		}
		rows = append(rows, row("Latest", latest))
		rows = append(rows, row("Next release", formatTime(st.NextRelease)))
	}

	if st.Acknowledged == nil {
		rows = append(rows, row("Acknowledged", theme.HelpStyle.Render("none")))
	} else {
		rows = append(rows, row("Acknowledged", st.Acknowledged.LastAcknowledgedChapter))
	}

	switch {
	case st.Pending:
		rows = append(rows, row("State", theme.PendingStyle.Render("unacknowledged")))
	case st.Latest != nil:
		rows = append(rows, row("State", theme.StateStyle("acknowledged").Render("up to date")))
	}
	if st.Stale {
		rows = append(rows, row("Refresh", "due on next check"))
	}

	if n := st.LastNotification; n != nil {
		rows = append(rows, row("Last notified",
			fmt.Sprintf("%s (%s, %s)", n.ChapterName, n.Kind, theme.StateStyle(n.State).Render(n.State))))
	}

	rows = append(rows, "", theme.HelpStyle.Render(st.SnapshotPath), theme.HelpStyle.Render(st.AckPath))

	fmt.Fprintln(w, theme.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
}

func formatTime(t time.Time) string {
	if t.IsZero() || t.Unix() == 0 {
		return "unknown"
	}
	return t.Local().Format("2006-01-02 15:04 MST")
}
