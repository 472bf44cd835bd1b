package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/mangaplus-notifier/internal/model"
)

// SQLiteStore implements HistoryStore using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode so a reader (status, history) never blocks a run.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// CreateNotification inserts a new notification record and returns its ID.
// If the record has no ID, a new UUID is generated.
func (s *SQLiteStore) CreateNotification(
	ctx context.Context,
	n model.NotificationRecord,
) (string, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.State == "" {
		n.State = model.NotificationStateShown
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (
			id, kind, title_id, chapter_id, chapter_name, message, state, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, string(n.Kind), n.TitleID, n.ChapterID, n.ChapterName,
		n.Message, n.State, n.CreatedAt.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("creating notification: %w", err)
	}

	return n.ID, nil
}

// ResolveNotification records the final state of a notification.
func (s *SQLiteStore) ResolveNotification(
	ctx context.Context,
	id string,
	state string,
	at time.Time,
) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET state = ?, resolved_at = ? WHERE id = ?",
		state, at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("resolving notification %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolving notification %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("resolving notification %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListNotifications retrieves notifications ordered by creation time
// descending.
func (s *SQLiteStore) ListNotifications(
	ctx context.Context,
	opts NotificationFilter,
) ([]model.NotificationRecord, error) {
	query := "SELECT * FROM notifications ORDER BY created_at DESC"
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
		if opts.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", opts.Offset)
		}
	}

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.NotificationRecord
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// scanNotification scans a notification row from a sqlx.Rows result set.
func scanNotification(rows *sqlx.Rows) (model.NotificationRecord, error) {
	var (
		n          model.NotificationRecord
		kind       string
		createdAt  time.Time
		resolvedAt sql.NullTime
	)

	err := rows.Scan(
		&n.ID, &kind, &n.TitleID, &n.ChapterID, &n.ChapterName,
		&n.Message, &n.State, &createdAt, &resolvedAt,
	)
	if err != nil {
		return model.NotificationRecord{}, fmt.Errorf("scanning notification row: %w", err)
	}

	n.Kind = model.NotificationKind(kind)
	n.CreatedAt = createdAt
	if resolvedAt.Valid {
		t := resolvedAt.Time
		n.ResolvedAt = &t
	}

	return n, nil
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
