package notify

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mangaplus-notifier/internal/keys"
	"github.com/nhle/mangaplus-notifier/internal/theme"
)

// TerminalNotifier shows the notification as an interactive prompt with
// a countdown. Show blocks until the prompt closes.
type TerminalNotifier struct {
	in   io.Reader
	out  io.Writer
	keys *keys.KeyMap
}

// NewTerminalNotifier creates a prompt reading keys from in and drawing to out.
func NewTerminalNotifier(in io.Reader, out io.Writer) *TerminalNotifier {
	return &TerminalNotifier{
		in:   in,
		out:  out,
		keys: keys.DefaultKeyMap(),
	}
}

// Show runs the prompt until the user acts or the alarm resolves.
func (t *TerminalNotifier) Show(ctx context.Context, n Notification, alarm *Alarm) error {
	p := tea.NewProgram(
		newPromptModel(n, alarm, t.keys),
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
	)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("running notification prompt: %w", err)
	}
	return nil
}

// alarmResolvedMsg is sent when the alarm resolves outside the prompt.
type alarmResolvedMsg struct{}

func waitForAlarm(a *Alarm) tea.Cmd {
	return func() tea.Msg {
		<-a.Done()
		return alarmResolvedMsg{}
	}
}

// promptModel is the Bubble Tea model of the terminal notification.
type promptModel struct {
	n         Notification
	alarm     *Alarm
	keys      *keys.KeyMap
	help      help.Model
	countdown timer.Model
	closed    bool
}

func newPromptModel(n Notification, alarm *Alarm, km *keys.KeyMap) promptModel {
	km.Open.SetEnabled(n.WaitForDismiss)
	return promptModel{
		n:         n,
		alarm:     alarm,
		keys:      km,
		help:      help.New(),
		countdown: timer.NewWithInterval(alarm.Remaining(), time.Second),
	}
}

// Init starts the countdown and the alarm watcher.
func (m promptModel) Init() tea.Cmd {
	return tea.Batch(m.countdown.Init(), waitForAlarm(m.alarm))
}

// Update handles key presses, countdown ticks and alarm resolution.
func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Open), key.Matches(msg, m.keys.Dismiss):
			m.alarm.Resolve(Acknowledged)
			m.closed = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Later):
			m.alarm.Resolve(Canceled)
			m.closed = true
			return m, tea.Quit
		}
		return m, nil

	case alarmResolvedMsg:
		m.closed = true
		return m, tea.Quit

	case timer.TimeoutMsg:
		// The alarm's own timer resolves it; alarmResolvedMsg follows.
		return m, nil
	}

	var cmd tea.Cmd
	m.countdown, cmd = m.countdown.Update(msg)
	return m, cmd
}

// View renders the notification panel.
func (m promptModel) View() string {
	if m.closed {
		return ""
	}

	summary := theme.HeaderStyle.Render(m.n.Summary)
	body := lipgloss.NewStyle().MarginTop(1).Render(m.n.Body)
	countdown := theme.HelpStyle.Render("closes in " + m.countdown.View())
	hints := m.help.View(m.keys)

	content := lipgloss.JoinVertical(lipgloss.Left, summary, body, "", countdown, hints)
	return theme.PanelStyle.Render(content)
}
