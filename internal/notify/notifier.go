// Package notify delivers chapter notifications to the user and reports
// whether they were acknowledged.
package notify

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/nhle/mangaplus-notifier/internal/model"
)

// AppName identifies the application to the notification server.
const AppName = "mangaplus-notifier"

// Notification is the user-visible alert.
type Notification struct {
	Kind    model.NotificationKind
	Summary string
	Body    string

	// WaitForDismiss offers the default click action and keeps the
	// notification up until acted upon or the alarm times out.
	WaitForDismiss bool
}

// Notifier shows notifications. Show reports user actions by resolving
// the alarm; it never resolves the alarm as TimedOut itself. Show may
// return before the user acts.
type Notifier interface {
	Show(ctx context.Context, n Notification, alarm *Alarm) error
}

// Compose builds the notification for chapter c of the given title.
func Compose(kind model.NotificationKind, titleName string, c model.Chapter, waitForDismiss bool) Notification {
	var b strings.Builder
	switch kind {
	case model.NotificationNewChapter:
		b.WriteString("A new chapter has been released!\n")
	default:
		b.WriteString("Latest chapter: ")
	}
	b.WriteString(chapterLine(c))
	if !c.ReleasedAt.IsZero() {
		fmt.Fprintf(&b, "\nReleased on %s", c.ReleasedAt.Local().Format("2006-01-02 15:04"))
	}

	return Notification{
		Kind:           kind,
		Summary:        titleName,
		Body:           b.String(),
		WaitForDismiss: waitForDismiss,
	}
}

func chapterLine(c model.Chapter) string {
	switch {
	case c.Name != "" && c.Subtitle != "":
		return c.Name + " - " + c.Subtitle
	case c.Subtitle != "":
		return c.Subtitle
	default:
		return c.Name
	}
}

// New returns the notifier for backend. "auto" picks the desktop notifier
// when a notification server is reachable on the session bus and falls
// back to the terminal prompt otherwise.
func New(backend string, logger *zap.Logger) (Notifier, error) {
	switch backend {
	case model.BackendDesktop:
		return NewDesktopNotifier(AppName, logger), nil
	case model.BackendTerminal:
		return NewTerminalNotifier(os.Stdin, os.Stdout), nil
	case model.BackendAuto, "":
		d := NewDesktopNotifier(AppName, logger)
		if err := d.Available(); err != nil {
			logger.Debug("desktop notifications unavailable, using terminal", zap.Error(err))
			return NewTerminalNotifier(os.Stdin, os.Stdout), nil
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unknown notification backend %q", backend)
	}
}
