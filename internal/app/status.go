package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/mangaplus-notifier/internal/freshness"
	"github.com/nhle/mangaplus-notifier/internal/mangaplus"
	"github.com/nhle/mangaplus-notifier/internal/model"
	"github.com/nhle/mangaplus-notifier/internal/store"
)

// Status is the locally cached state. Building it never touches the
// network.
type Status struct {
	Title        model.Title
	Latest       *model.Chapter
	NextRelease  time.Time
	Acknowledged *model.Acknowledgment

	// Pending is set when the cached latest chapter differs from the
	// acknowledgment record.
	Pending bool

	// Stale is set when the next release time has passed, so the next
	// run will fetch.
	Stale bool

	LastNotification *model.NotificationRecord

	SnapshotPath string
	AckPath      string
}

// Status reports the cached snapshot, the acknowledgment record and the
// most recent notification.
func (a *App) Status(ctx context.Context) (Status, error) {
	st := Status{
		Title:        model.Title{ID: a.cfg.Title.ID, Name: a.cfg.Title.Name},
		SnapshotPath: a.snapshots.Path(),
		AckPath:      a.acks.Path(),
	}

	raw, err := a.snapshots.Load()
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return st, fmt.Errorf("reading cached snapshot: %w", err)
	default:
		snap, err := mangaplus.Decode(raw)
		if err != nil {
			return st, fmt.Errorf("decoding cached snapshot: %w", err)
		}
		if snap.Title.ID != 0 {
			st.Title = snap.Title
		}
		st.NextRelease = snap.NextRelease
		st.Stale = a.now().After(snap.NextRelease)
		if sel, err := freshness.SelectLatest(snap); err == nil {
			st.Latest = &sel.Chapter
		}
	}

	record, err := a.acks.Load()
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return st, fmt.Errorf("reading acknowledgment record: %w", err)
	default:
		st.Acknowledged = record
	}

	if st.Latest != nil {
		st.Pending = st.Acknowledged == nil || st.Acknowledged.LastAcknowledgedChapter != st.Latest.Name
	}

	if a.history != nil {
		recs, err := a.history.ListNotifications(ctx, store.NotificationFilter{Limit: 1})
		if err != nil {
			return st, fmt.Errorf("reading notification history: %w", err)
		}
		if len(recs) > 0 {
			st.LastNotification = &recs[0]
		}
	}

	return st, nil
}
