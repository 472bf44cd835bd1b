package store

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/mangaplus-notifier/internal/model"
)

// File names under the data directory.
const (
	SnapshotFile = "response-blob"
	AckFile      = "metadata.json"
	HistoryFile  = "history.db"
	LockFile     = ".lock"
)

// ErrNotFound is returned when a persisted file does not exist yet.
var ErrNotFound = errors.New("not found")

// ErrMalformedRecord is returned when an acknowledgment write is rejected
// because the record lacks its required field. The previous file is left
// untouched.
var ErrMalformedRecord = errors.New("malformed acknowledgment record")

// NotificationFilter controls pagination for history queries.
type NotificationFilter struct {
	Limit  int
	Offset int
}

// HistoryStore defines the persistence interface for the notification log.
type HistoryStore interface {
	CreateNotification(ctx context.Context, n model.NotificationRecord) (string, error)
	ResolveNotification(ctx context.Context, id string, state string, at time.Time) error
	ListNotifications(ctx context.Context, opts NotificationFilter) ([]model.NotificationRecord, error)
}
