package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mangaplus-notifier/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), HistoryFile))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_NotificationLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)
	shownAt := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)

	id, err := s.CreateNotification(ctx, model.NotificationRecord{
		Kind:        model.NotificationNewChapter,
		TitleID:     100056,
		ChapterID:   1020002,
		ChapterName: "#101",
		Message:     "A new chapter has been released!",
		CreatedAt:   shownAt,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	list, err := s.ListNotifications(ctx, NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.NotificationStateShown, list[0].State)
	assert.Nil(t, list[0].ResolvedAt)

	resolvedAt := shownAt.Add(10 * time.Second)
	require.NoError(t, s.ResolveNotification(ctx, id, model.NotificationStateAcknowledged, resolvedAt))

	list, err = s.ListNotifications(ctx, NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	got := list[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, model.NotificationNewChapter, got.Kind)
	assert.Equal(t, "#101", got.ChapterName)
	assert.Equal(t, 1020002, got.ChapterID)
	assert.Equal(t, model.NotificationStateAcknowledged, got.State)
	assert.True(t, shownAt.Equal(got.CreatedAt))
	require.NotNil(t, got.ResolvedAt)
	assert.True(t, resolvedAt.Equal(*got.ResolvedAt))
}

func TestSQLiteStore_ResolveUnknown(t *testing.T) {
	s := newTestSQLiteStore(t)
	err := s.ResolveNotification(context.Background(), "missing", model.NotificationStateTimedOut, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ListNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"#001", "#002", "#003"} {
		_, err := s.CreateNotification(ctx, model.NotificationRecord{
			Kind:        model.NotificationNewChapter,
			ChapterName: name,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	list, err := s.ListNotifications(ctx, NotificationFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "#003", list[0].ChapterName)
	assert.Equal(t, "#002", list[1].ChapterName)
}

func TestSQLiteStore_ReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), HistoryFile)

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	_, err = s.CreateNotification(context.Background(), model.NotificationRecord{
		Kind: model.NotificationBootstrap, ChapterName: "#001",
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	list, err := s.ListNotifications(context.Background(), NotificationFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
