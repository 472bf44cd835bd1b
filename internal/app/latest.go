package app

import (
	"fmt"

	"github.com/nhle/mangaplus-notifier/internal/freshness"
	"github.com/nhle/mangaplus-notifier/internal/mangaplus"
	"github.com/nhle/mangaplus-notifier/internal/model"
	"github.com/nhle/mangaplus-notifier/internal/store"
)

// diskLatest reads the latest chapter of whatever snapshot is cached at
// the moment it is asked, which may be newer than the one that raised
// the notification.
type diskLatest struct {
	snapshots *store.SnapshotStore
}

func (d *diskLatest) LatestOnDisk() (model.Chapter, error) {
	raw, err := d.snapshots.Load()
	if err != nil {
		return model.Chapter{}, err
	}
	snap, err := mangaplus.Decode(raw)
	if err != nil {
		return model.Chapter{}, fmt.Errorf("decoding %s: %w", d.snapshots.Path(), err)
	}
	sel, err := freshness.SelectLatest(snap)
	if err != nil {
		return model.Chapter{}, err
	}
	return sel.Chapter, nil
}
