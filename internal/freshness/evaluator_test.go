package freshness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mangaplus-notifier/internal/model"
)

var nextRelease = time.Date(2026, 10, 20, 15, 0, 0, 0, time.UTC)

func cachedWith(name string) *model.Snapshot {
	return &model.Snapshot{
		LastChapters: []model.Chapter{ch(9, "Chapter 9"), ch(10, name)},
		NextRelease:  nextRelease,
	}
}

func ackFor(name string) *model.Acknowledgment {
	return &model.Acknowledgment{LastAcknowledgedChapter: name}
}

func TestEvaluate(t *testing.T) {
	before := nextRelease.Add(-time.Hour)
	after := nextRelease.Add(time.Minute)

	tests := []struct {
		name          string
		cached        *model.Snapshot
		ack           *model.Acknowledgment
		now           time.Time
		wantAction    Action
		wantBootstrap bool
		wantWriteAck  bool
	}{
		{
			name:          "first run",
			now:           before,
			wantAction:    NotifyLatestKnown,
			wantBootstrap: true,
			wantWriteAck:  true,
		},
		{
			name:       "lost cache with ack refetches",
			ack:        ackFor("Chapter 10"),
			now:        before,
			wantAction: RefetchAndNotifyIfNewer,
		},
		{
			name:       "acknowledged and not yet due",
			cached:     cachedWith("Chapter 10"),
			ack:        ackFor("Chapter 10"),
			now:        before,
			wantAction: NoAction,
		},
		{
			name:       "exactly at next release is not stale",
			cached:     cachedWith("Chapter 10"),
			ack:        ackFor("Chapter 10"),
			now:        nextRelease,
			wantAction: NoAction,
		},
		{
			name:       "past next release refetches",
			cached:     cachedWith("Chapter 10"),
			ack:        ackFor("Chapter 10"),
			now:        after,
			wantAction: RefetchAndNotifyIfNewer,
		},
		{
			name:       "cached chapter never acknowledged",
			cached:     cachedWith("Chapter 10"),
			ack:        ackFor("Chapter 9"),
			now:        before,
			wantAction: NotifyLatestKnown,
		},
		{
			name:         "cached without ack record",
			cached:       cachedWith("Chapter 10"),
			now:          before,
			wantAction:   NotifyLatestKnown,
			wantWriteAck: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.cached, tt.ack, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAction, got.Action, got.Reason)
			assert.Equal(t, tt.wantBootstrap, got.Bootstrap)
			assert.Equal(t, tt.wantWriteAck, got.WriteAck)
			assert.NotEmpty(t, got.Reason)
		})
	}
}

func TestEvaluate_EmptyCachedSnapshotCountsAsMissing(t *testing.T) {
	empty := &model.Snapshot{NextRelease: nextRelease.Add(time.Hour)}

	got, err := Evaluate(empty, ackFor("Chapter 10"), nextRelease)
	require.NoError(t, err)
	assert.Equal(t, RefetchAndNotifyIfNewer, got.Action)

	got, err = Evaluate(empty, nil, nextRelease)
	require.NoError(t, err)
	assert.True(t, got.Bootstrap)
}

func TestEvaluate_ZeroNextReleaseAlwaysRefetches(t *testing.T) {
	cached := cachedWith("Chapter 10")
	cached.NextRelease = time.Unix(0, 0).UTC()

	got, err := Evaluate(cached, ackFor("Chapter 10"), nextRelease)
	require.NoError(t, err)
	assert.Equal(t, RefetchAndNotifyIfNewer, got.Action)
}

func TestCompareFetched(t *testing.T) {
	t.Run("newer chapter notifies", func(t *testing.T) {
		got, err := CompareFetched(cachedWith("Chapter 11"), ackFor("Chapter 10"))
		require.NoError(t, err)
		assert.Equal(t, NotifyLatestKnown, got.Action)
		assert.Equal(t, "Chapter 11", got.Latest.Chapter.Name)
	})

	t.Run("same name is not news even with a different id", func(t *testing.T) {
		fresh := &model.Snapshot{LastChapters: []model.Chapter{ch(99, "Chapter 10")}}
		got, err := CompareFetched(fresh, ackFor("Chapter 10"))
		require.NoError(t, err)
		assert.Equal(t, NoAction, got.Action)
	})

	t.Run("missing ack notifies and asks for a record", func(t *testing.T) {
		got, err := CompareFetched(cachedWith("Chapter 10"), nil)
		require.NoError(t, err)
		assert.Equal(t, NotifyLatestKnown, got.Action)
		assert.True(t, got.WriteAck)
	})

	t.Run("empty fresh snapshot fails", func(t *testing.T) {
		_, err := CompareFetched(&model.Snapshot{}, ackFor("Chapter 10"))
		assert.ErrorIs(t, err, ErrEmptyChapterList)
	})
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "no_action", NoAction.String())
	assert.Equal(t, "notify_latest_known", NotifyLatestKnown.String())
	assert.Equal(t, "refetch_and_notify_if_newer", RefetchAndNotifyIfNewer.String())
	assert.Equal(t, "action(9)", Action(9).String())
}
