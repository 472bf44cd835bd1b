package freshness

import (
	"errors"
	"fmt"
	"time"

	"github.com/nhle/mangaplus-notifier/internal/model"
)

// Action is what the caller should do after an evaluation.
type Action int

const (
	// NoAction means the user has already seen the latest known chapter.
	NoAction Action = iota

	// NotifyLatestKnown means the latest chapter already at hand should
	// be shown to the user.
	NotifyLatestKnown

	// RefetchAndNotifyIfNewer means the cached snapshot is stale; the
	// caller fetches a fresh one and passes it to CompareFetched.
	RefetchAndNotifyIfNewer
)

func (a Action) String() string {
	switch a {
	case NoAction:
		return "no_action"
	case NotifyLatestKnown:
		return "notify_latest_known"
	case RefetchAndNotifyIfNewer:
		return "refetch_and_notify_if_newer"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Decision is the outcome of Evaluate or CompareFetched.
type Decision struct {
	Action Action

	// Bootstrap is set on the first run, when neither a snapshot nor an
	// acknowledgment exists. The caller fetches once before notifying.
	Bootstrap bool

	// WriteAck is set when no acknowledgment record exists yet and the
	// caller should create one for Latest.
	WriteAck bool

	// Latest is the selected chapter of the snapshot that was looked at.
	// Zero when Bootstrap is set or the cache was missing.
	Latest Selection

	// Reason is a short human-readable explanation for logs.
	Reason string
}

// Evaluate compares the cached snapshot against the acknowledgment record
// at time now. Either argument may be nil when its file does not exist.
func Evaluate(cached *model.Snapshot, ack *model.Acknowledgment, now time.Time) (Decision, error) {
	if cached == nil {
		if ack == nil {
			return Decision{
				Action:    NotifyLatestKnown,
				Bootstrap: true,
				WriteAck:  true,
				Reason:    "no cached snapshot and no acknowledgment",
			}, nil
		}
		return Decision{
			Action: RefetchAndNotifyIfNewer,
			Reason: "no cached snapshot",
		}, nil
	}

	latest, err := SelectLatest(cached)
	if errors.Is(err, ErrEmptyChapterList) {
		// Nothing usable is cached; decide as if the file were missing.
		return Evaluate(nil, ack, now)
	}
	if err != nil {
		return Decision{}, fmt.Errorf("selecting cached latest chapter: %w", err)
	}

	if now.After(cached.NextRelease) {
		return Decision{
			Action: RefetchAndNotifyIfNewer,
			Latest: latest,
			Reason: fmt.Sprintf("next release %s has passed", cached.NextRelease.Format(time.RFC3339)),
		}, nil
	}

	return compare(latest, ack), nil
}

// CompareFetched decides whether a freshly fetched snapshot warrants a
// notification. Only the chapter name is compared with the record.
func CompareFetched(fresh *model.Snapshot, ack *model.Acknowledgment) (Decision, error) {
	latest, err := SelectLatest(fresh)
	if err != nil {
		return Decision{}, fmt.Errorf("selecting fetched latest chapter: %w", err)
	}
	return compare(latest, ack), nil
}

func compare(latest Selection, ack *model.Acknowledgment) Decision {
	switch {
	case ack == nil || !ack.Valid():
		return Decision{
			Action:   NotifyLatestKnown,
			WriteAck: true,
			Latest:   latest,
			Reason:   "no acknowledgment recorded",
		}
	case latest.Chapter.Name != ack.LastAcknowledgedChapter:
		return Decision{
			Action: NotifyLatestKnown,
			Latest: latest,
			Reason: fmt.Sprintf("latest %q differs from acknowledged %q",
				latest.Chapter.Name, ack.LastAcknowledgedChapter),
		}
	default:
		return Decision{
			Action: NoAction,
			Latest: latest,
			Reason: fmt.Sprintf("%q already acknowledged", ack.LastAcknowledgedChapter),
		}
	}
}
