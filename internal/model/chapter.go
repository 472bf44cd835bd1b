package model

import "time"

// Title identifies the series a snapshot was fetched for.
type Title struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Author string `json:"author"`
}

// Chapter is a single published chapter of a title.
type Chapter struct {
	// TitleID is the series the chapter belongs to.
	TitleID int `json:"title_id"`

	// ID is monotonic per title; newer chapters carry larger IDs.
	ID int `json:"id"`

	// Name is the short label shown by the service (e.g., "#092").
	// It is the identity used for acknowledgment.
	Name string `json:"name"`

	// Subtitle is the chapter's display title.
	Subtitle string `json:"subtitle"`

	ThumbnailURL string `json:"thumbnail_url"`

	// ReleasedAt is when the chapter became readable.
	ReleasedAt time.Time `json:"released_at"`
}

// Snapshot is the chapter-list payload returned by one title detail call.
// It is never modified after decoding.
type Snapshot struct {
	Title Title `json:"title"`

	// LastChapters takes priority over FirstChapters when non-empty.
	LastChapters  []Chapter `json:"last_chapters"`
	FirstChapters []Chapter `json:"first_chapters"`

	// NextRelease is the predicted release time of the next chapter.
	NextRelease time.Time `json:"next_release"`
}
