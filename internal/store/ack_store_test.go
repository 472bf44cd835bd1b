package store

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mangaplus-notifier/internal/model"
)

func TestAckStore_LoadMissing(t *testing.T) {
	s := NewAckStore(t.TempDir())

	_, err := s.Load()
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, IsNotFound(err))
}

func TestAckStore_WriteLoad(t *testing.T) {
	s := NewAckStore(t.TempDir())
	at := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

	require.NoError(t, s.Write(model.Acknowledgment{LastAcknowledgedChapter: "Chapter 10", AcknowledgedAt: at}))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "Chapter 10", got.LastAcknowledgedChapter)
	assert.True(t, at.Equal(got.AcknowledgedAt))
}

func TestAckStore_WriteIsIdempotent(t *testing.T) {
	s := NewAckStore(t.TempDir())
	rec := model.Acknowledgment{LastAcknowledgedChapter: "Chapter 10"}

	require.NoError(t, s.Write(rec))
	first, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	require.NoError(t, s.Write(rec))
	second, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.JSONEq(t, `{"last_acknowledged_chapter":"Chapter 10"}`, string(second))
}

func TestAckStore_RejectsMalformedRecord(t *testing.T) {
	s := NewAckStore(t.TempDir())
	require.NoError(t, s.Write(model.Acknowledgment{LastAcknowledgedChapter: "Chapter 10"}))
	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	err = s.Write(model.Acknowledgment{})
	assert.ErrorIs(t, err, ErrMalformedRecord)

	payloads := []string{
		`{}`,
		`{"chapter":"Chapter 11"}`,
		`{"last_acknowledged_chapter":11}`,
		`{"last_acknowledged_chapter":""}`,
		`{"last_acknowledged_chapter":null}`,
		`[]`,
		`null`,
		`not json`,
		``,
	}
	for _, p := range payloads {
		t.Run(p, func(t *testing.T) {
			assert.ErrorIs(t, s.WriteJSON([]byte(p)), ErrMalformedRecord)

			after, err := os.ReadFile(s.Path())
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestAckStore_WriteJSONValid(t *testing.T) {
	s := NewAckStore(t.TempDir())

	require.NoError(t, s.WriteJSON([]byte(`{"last_acknowledged_chapter":"Chapter 11","extra":true}`)))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "Chapter 11", got.LastAcknowledgedChapter)
}

func TestAckStore_LoadRejectsCorruptFile(t *testing.T) {
	s := NewAckStore(t.TempDir())
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"other":"x"}`), 0o644))

	_, err := s.Load()
	assert.ErrorIs(t, err, ErrMalformedRecord)
}
