package model

import "time"

// Acknowledgment records the last chapter the user confirmed seeing.
// It is the only durable signal of what the user has already seen.
type Acknowledgment struct {
	// LastAcknowledgedChapter is the chapter name. Required.
	LastAcknowledgedChapter string `json:"last_acknowledged_chapter"`

	// AcknowledgedAt is when the record was written.
	AcknowledgedAt time.Time `json:"acknowledged_at,omitzero"`
}

// Valid reports whether the record carries the required chapter name.
func (a Acknowledgment) Valid() bool {
	return a.LastAcknowledgedChapter != ""
}
