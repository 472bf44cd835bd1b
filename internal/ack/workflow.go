// Package ack runs the notification acknowledgment state machine.
package ack

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/mangaplus-notifier/internal/model"
	"github.com/nhle/mangaplus-notifier/internal/notify"
	"github.com/nhle/mangaplus-notifier/internal/store"
)

// State is a state of the acknowledgment workflow.
type State string

const (
	// StateUnacknowledged: the notification is shown and awaits the user.
	StateUnacknowledged State = "unacknowledged"

	// StateAcknowledged: the user acted and the record was persisted.
	StateAcknowledged State = "acknowledged"

	// StateTimedOut: the wait window ended without a user action. Nothing
	// was persisted, so the same notification recurs on the next run.
	StateTimedOut State = "timed_out"
)

// LatestReader returns the latest chapter of the snapshot currently on
// disk. It is called at acknowledgment time, not at notification time.
type LatestReader interface {
	LatestOnDisk() (model.Chapter, error)
}

// AckWriter persists acknowledgment records.
type AckWriter interface {
	Load() (*model.Acknowledgment, error)
	Write(model.Acknowledgment) error
}

// Locker serialises read-modify-write of the persisted files.
type Locker func() (release func(), err error)

// Options configures a Workflow.
type Options struct {
	Notifier notify.Notifier
	Latest   LatestReader
	Acks     AckWriter
	History  store.HistoryStore
	Lock     Locker
	Timeout  time.Duration
	Logger   *zap.Logger
	Now      func() time.Time
}

// Workflow shows one notification and waits for it to be acknowledged
// or to time out.
type Workflow struct {
	notifier notify.Notifier
	latest   LatestReader
	acks     AckWriter
	history  store.HistoryStore
	lock     Locker
	timeout  time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a Workflow. History and Lock are optional.
func New(opts Options) *Workflow {
	w := &Workflow{
		notifier: opts.Notifier,
		latest:   opts.Latest,
		acks:     opts.Acks,
		history:  opts.History,
		lock:     opts.Lock,
		timeout:  opts.Timeout,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if w.timeout <= 0 {
		w.timeout = time.Duration(model.DefaultAckTimeout) * time.Second
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	if w.now == nil {
		w.now = time.Now
	}
	if w.lock == nil {
		w.lock = func() (func(), error) { return func() {}, nil }
	}
	return w
}

// Outcome is the result of one workflow run.
type Outcome struct {
	State State

	// Chapter is the chapter recorded on acknowledgment. Zero otherwise.
	Chapter model.Chapter

	// NotificationID is the history row of the shown notification.
	NotificationID string
}

// Run shows n for chapter c and drives the state machine to a terminal
// state. On acknowledgment the record is written from the snapshot on
// disk at that moment.
func (w *Workflow) Run(ctx context.Context, n notify.Notification, titleID int, c model.Chapter) (Outcome, error) {
	alarm := notify.NewAlarm(w.timeout)
	defer alarm.Stop()

	out := Outcome{State: StateUnacknowledged}
	out.NotificationID = w.recordShown(ctx, n, titleID, c)

	if err := w.notifier.Show(ctx, n, alarm); err != nil {
		return out, fmt.Errorf("showing notification: %w", err)
	}
	w.logger.Info("notification shown",
		zap.String("kind", string(n.Kind)),
		zap.String("chapter", c.Name),
		zap.Duration("timeout", w.timeout),
	)

	res := alarm.Wait(ctx)
	w.logger.Debug("notification resolved", zap.Stringer("resolution", res))

	switch res {
	case notify.Acknowledged:
		chapter, err := w.Acknowledge()
		if err != nil {
			// Nothing was persisted, so the notification recurs like a timeout.
			out.State = StateTimedOut
			w.recordResolved(ctx, out)
			return out, err
		}
		out.State = StateAcknowledged
		out.Chapter = chapter
	default:
		out.State = StateTimedOut
	}

	w.recordResolved(ctx, out)

	if res == notify.Canceled && ctx.Err() != nil {
		return out, ctx.Err()
	}
	return out, nil
}

// Acknowledge records the latest chapter of the on-disk snapshot as seen.
// The write is skipped when the record already holds that name.
func (w *Workflow) Acknowledge() (model.Chapter, error) {
	release, err := w.lock()
	if err != nil {
		return model.Chapter{}, fmt.Errorf("locking data directory: %w", err)
	}
	defer release()

	chapter, err := w.latest.LatestOnDisk()
	if err != nil {
		return model.Chapter{}, fmt.Errorf("reading latest chapter on disk: %w", err)
	}

	current, err := w.acks.Load()
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		w.logger.Warn("ignoring unreadable acknowledgment record", zap.Error(err))
	}
	if current != nil && current.LastAcknowledgedChapter == chapter.Name {
		w.logger.Debug("chapter already acknowledged", zap.String("chapter", chapter.Name))
		return chapter, nil
	}

	err = w.acks.Write(model.Acknowledgment{
		LastAcknowledgedChapter: chapter.Name,
		AcknowledgedAt:          w.now(),
	})
	if errors.Is(err, store.ErrMalformedRecord) {
		w.logger.Debug("acknowledgment write rejected", zap.String("chapter", chapter.Name))
		return chapter, nil
	}
	if err != nil {
		return model.Chapter{}, fmt.Errorf("writing acknowledgment: %w", err)
	}

	w.logger.Info("chapter acknowledged", zap.String("chapter", chapter.Name))
	return chapter, nil
}

func (w *Workflow) recordShown(ctx context.Context, n notify.Notification, titleID int, c model.Chapter) string {
	if w.history == nil {
		return ""
	}
	id, err := w.history.CreateNotification(ctx, model.NotificationRecord{
		Kind:        n.Kind,
		TitleID:     titleID,
		ChapterID:   c.ID,
		ChapterName: c.Name,
		Message:     n.Body,
		State:       model.NotificationStateShown,
		CreatedAt:   w.now(),
	})
	if err != nil {
		w.logger.Warn("recording notification", zap.Error(err))
		return ""
	}
	return id
}

func (w *Workflow) recordResolved(ctx context.Context, out Outcome) {
	if w.history == nil || out.NotificationID == "" {
		return
	}
	state := model.NotificationStateTimedOut
	if out.State == StateAcknowledged {
		state = model.NotificationStateAcknowledged
	}
	// The run context may already be canceled; the row should still close.
	if err := w.history.ResolveNotification(context.WithoutCancel(ctx), out.NotificationID, state, w.now()); err != nil {
		w.logger.Warn("recording notification outcome", zap.Error(err))
	}
}
