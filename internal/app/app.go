// Package app wires the stores, the MANGA Plus client and the notifier
// into one check run.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/mangaplus-notifier/internal/ack"
	"github.com/nhle/mangaplus-notifier/internal/freshness"
	"github.com/nhle/mangaplus-notifier/internal/mangaplus"
	"github.com/nhle/mangaplus-notifier/internal/model"
	"github.com/nhle/mangaplus-notifier/internal/notify"
	"github.com/nhle/mangaplus-notifier/internal/store"
)

// Fetcher retrieves the title detail response for a title.
type Fetcher interface {
	FetchTitle(ctx context.Context, titleID int) (*mangaplus.Fetched, error)
}

// AckStore persists the acknowledgment record.
type AckStore interface {
	Load() (*model.Acknowledgment, error)
	Write(model.Acknowledgment) error
	Path() string
}

// Options configures an App. Config, Fetcher and Notifier are required.
// Acks defaults to the record file in the data directory.
type Options struct {
	Config   *model.AppConfig
	Logger   *zap.Logger
	Fetcher  Fetcher
	Notifier notify.Notifier
	History  store.HistoryStore
	Acks     AckStore
	Now      func() time.Time
}

// App holds everything one run needs. It is built once per process.
type App struct {
	cfg       *model.AppConfig
	logger    *zap.Logger
	fetcher   Fetcher
	history   store.HistoryStore
	snapshots *store.SnapshotStore
	acks      AckStore
	workflow  *ack.Workflow
	now       func() time.Time
}

// New creates an App from opts.
func New(opts Options) *App {
	a := &App{
		cfg:       opts.Config,
		logger:    opts.Logger,
		fetcher:   opts.Fetcher,
		history:   opts.History,
		snapshots: store.NewSnapshotStore(opts.Config.DataDir),
		acks:      opts.Acks,
		now:       opts.Now,
	}
	if a.acks == nil {
		a.acks = store.NewAckStore(opts.Config.DataDir)
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.now == nil {
		a.now = time.Now
	}

	a.workflow = ack.New(ack.Options{
		Notifier: opts.Notifier,
		Latest:   &diskLatest{snapshots: a.snapshots},
		Acks:     a.acks,
		History:  opts.History,
		Lock:     a.lock,
		Timeout:  opts.Config.AckTimeout(),
		Logger:   a.logger.Named("ack"),
		Now:      a.now,
	})
	return a
}

// Result describes what a run did.
type Result struct {
	Decision freshness.Decision

	// Fetched is set when the remote API was called.
	Fetched bool

	// Notified is set when a notification was shown; Outcome is then
	// the workflow's terminal state.
	Notified bool
	Kind     model.NotificationKind
	Chapter  model.Chapter
	Outcome  ack.Outcome
}

// plan is the decision taken under the lock.
type plan struct {
	result Result
	notify bool
}

// Run performs one check: evaluate the cached state, fetch when needed,
// and notify the user about a chapter they have not acknowledged.
func (a *App) Run(ctx context.Context) (Result, error) {
	if err := os.MkdirAll(a.cfg.DataDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating data directory: %w", err)
	}

	p, err := a.decide(ctx)
	if err != nil {
		return p.result, err
	}

	res := p.result
	if !p.notify {
		a.logger.Info("nothing to notify", zap.String("reason", res.Decision.Reason))
		return res, nil
	}

	n := notify.Compose(res.Kind, a.titleName(), res.Chapter, a.cfg.Notify.WaitForDismiss)
	out, err := a.workflow.Run(ctx, n, a.cfg.Title.ID, res.Chapter)
	res.Notified = true
	res.Outcome = out
	return res, err
}

// decide holds the data directory lock for the read-modify-write of the
// persisted files. The lock is released before the user is prompted.
func (a *App) decide(ctx context.Context) (plan, error) {
	release, err := a.lock()
	if err != nil {
		return plan{}, err
	}
	defer release()

	cached := a.loadSnapshot()
	record := a.loadAck()

	d, err := freshness.Evaluate(cached, record, a.now())
	if err != nil {
		return plan{}, fmt.Errorf("evaluating cached snapshot: %w", err)
	}
	a.logger.Debug("evaluated cached state",
		zap.Stringer("action", d.Action),
		zap.Bool("bootstrap", d.Bootstrap),
		zap.String("reason", d.Reason),
	)

	p := plan{result: Result{Decision: d}}
	kind := model.NotificationUnacknowledged

	switch {
	case d.Bootstrap:
		fresh, err := a.fetch(ctx)
		if err != nil {
			return p, err
		}
		p.result.Fetched = true
		sel, err := freshness.SelectLatest(fresh)
		if err != nil {
			return p, fmt.Errorf("selecting latest chapter: %w", err)
		}
		d.Latest = sel
		kind = model.NotificationBootstrap

	case d.Action == freshness.RefetchAndNotifyIfNewer:
		fresh, err := a.fetch(ctx)
		if err != nil {
			return p, err
		}
		p.result.Fetched = true
		d, err = freshness.CompareFetched(fresh, record)
		if err != nil {
			return p, err
		}
		kind = model.NotificationNewChapter
	}

	p.result.Decision = d
	a.warnAnomaly(d.Latest)

	if d.WriteAck {
		a.writeInitialAck(d.Latest.Chapter)
	}

	if d.Action != freshness.NotifyLatestKnown {
		return p, nil
	}
	p.notify = true
	p.result.Kind = kind
	p.result.Chapter = d.Latest.Chapter
	return p, nil
}

// fetch calls the API once and replaces the cached snapshot wholesale.
func (a *App) fetch(ctx context.Context) (*model.Snapshot, error) {
	a.logger.Debug("fetching title detail", zap.Int("title_id", a.cfg.Title.ID))

	fetched, err := a.fetcher.FetchTitle(ctx, a.cfg.Title.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching title %d: %w", a.cfg.Title.ID, err)
	}
	// A response without chapters is not cached; the previous snapshot
	// stays and the next run fetches again.
	if _, err := freshness.SelectLatest(fetched.Snapshot); err != nil {
		return nil, fmt.Errorf("selecting latest chapter: %w", err)
	}
	if err := a.snapshots.Save(fetched.Raw); err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}

	a.logger.Info("snapshot refreshed",
		zap.Int("title_id", a.cfg.Title.ID),
		zap.Int("last_chapters", len(fetched.Snapshot.LastChapters)),
		zap.Time("next_release", fetched.Snapshot.NextRelease),
	)
	return fetched.Snapshot, nil
}

// loadSnapshot returns nil when nothing usable is cached. A corrupt
// blob is treated as missing and replaced by the next fetch.
func (a *App) loadSnapshot() *model.Snapshot {
	raw, err := a.snapshots.Load()
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		a.logger.Warn("reading cached snapshot", zap.Error(err))
		return nil
	}

	snap, err := mangaplus.Decode(raw)
	if err != nil {
		a.logger.Warn("ignoring undecodable cached snapshot", zap.String("path", a.snapshots.Path()), zap.Error(err))
		return nil
	}
	return snap
}

// loadAck returns nil when no valid record exists.
func (a *App) loadAck() *model.Acknowledgment {
	record, err := a.acks.Load()
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		a.logger.Warn("ignoring unreadable acknowledgment record", zap.String("path", a.acks.Path()), zap.Error(err))
		return nil
	}
	return record
}

func (a *App) writeInitialAck(c model.Chapter) {
	err := a.acks.Write(model.Acknowledgment{
		LastAcknowledgedChapter: c.Name,
		AcknowledgedAt:          a.now(),
	})
	if errors.Is(err, store.ErrMalformedRecord) {
		a.logger.Debug("initial acknowledgment rejected", zap.Int("chapter_id", c.ID))
		return
	}
	if err != nil {
		a.logger.Warn("writing initial acknowledgment", zap.Error(err))
		return
	}
	a.logger.Info("acknowledgment record created", zap.String("chapter", c.Name))
}

func (a *App) warnAnomaly(sel freshness.Selection) {
	if !sel.OrderingAnomaly {
		return
	}
	a.logger.Warn("latest chapter is not the highest id in its list",
		zap.String("list", string(sel.List)),
		zap.Int("tail_id", sel.Chapter.ID),
		zap.Int("max_id", sel.MaxID),
	)
}

func (a *App) lock() (func(), error) {
	l, err := store.AcquireLock(a.cfg.DataDir)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := l.Release(); err != nil {
			a.logger.Warn("releasing data directory lock", zap.Error(err))
		}
	}, nil
}

func (a *App) titleName() string {
	if a.cfg.Title.Name != "" {
		return a.cfg.Title.Name
	}
	return fmt.Sprintf("Title %d", a.cfg.Title.ID)
}

// Acknowledge marks the latest chapter of the cached snapshot as seen,
// as if the user had acted on its notification.
func (a *App) Acknowledge() (model.Chapter, error) {
	if err := os.MkdirAll(a.cfg.DataDir, 0o755); err != nil {
		return model.Chapter{}, fmt.Errorf("creating data directory: %w", err)
	}
	return a.workflow.Acknowledge()
}
