package model

import "time"

// NotificationKind describes why a notification was raised.
type NotificationKind string

const (
	// NotificationBootstrap is raised on the first run with no local state.
	NotificationBootstrap NotificationKind = "bootstrap"

	// NotificationNewChapter is raised when a refetch found a chapter
	// the user has not acknowledged.
	NotificationNewChapter NotificationKind = "new_chapter"

	// NotificationUnacknowledged is raised when the cached latest chapter
	// still differs from the acknowledgment record.
	NotificationUnacknowledged NotificationKind = "unacknowledged"
)

// Final states of a shown notification.
const (
	NotificationStateShown        = "shown"
	NotificationStateAcknowledged = "acknowledged"
	NotificationStateTimedOut     = "timed_out"
)

// NotificationRecord is one row of the notification history.
type NotificationRecord struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// Kind is why the notification was raised.
	Kind NotificationKind `json:"kind"`

	TitleID     int    `json:"title_id"`
	ChapterID   int    `json:"chapter_id"`
	ChapterName string `json:"chapter_name"`

	// Message is the notification body as shown to the user.
	Message string `json:"message"`

	// State is shown, acknowledged, or timed_out.
	State string `json:"state"`

	// CreatedAt is when this notification was shown.
	CreatedAt time.Time `json:"created_at"`

	// ResolvedAt is set once the notification reached a final state.
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}
