// Package freshness decides which chapter is the latest one and whether
// the user still needs to hear about it.
package freshness

import (
	"errors"

	"github.com/nhle/mangaplus-notifier/internal/model"
)

// ErrEmptyChapterList is returned when both candidate lists are empty.
var ErrEmptyChapterList = errors.New("snapshot has no chapters")

// ChapterList names the candidate list a selection was made from.
type ChapterList string

const (
	ListLast  ChapterList = "last"
	ListFirst ChapterList = "first"
)

// Selection is the latest chapter of a snapshot plus the consistency
// check made while picking it.
type Selection struct {
	Chapter model.Chapter
	List    ChapterList

	// MaxID is the largest chapter id in the chosen list.
	MaxID int

	// OrderingAnomaly is set when the tail of the list is not the
	// chapter with MaxID. The tail is still selected.
	OrderingAnomaly bool
}

// SelectLatest picks the tail of LastChapters, or of FirstChapters when
// LastChapters is empty. List order wins over id order; the id maximum
// only feeds OrderingAnomaly.
func SelectLatest(s *model.Snapshot) (Selection, error) {
	if s == nil {
		return Selection{}, ErrEmptyChapterList
	}

	list, kind := s.LastChapters, ListLast
	if len(list) == 0 {
		list, kind = s.FirstChapters, ListFirst
	}
	if len(list) == 0 {
		return Selection{}, ErrEmptyChapterList
	}

	tail := list[len(list)-1]
	maxID := tail.ID
	for _, c := range list {
		if c.ID > maxID {
			maxID = c.ID
		}
	}

	return Selection{
		Chapter:         tail,
		List:            kind,
		MaxID:           maxID,
		OrderingAnomaly: tail.ID != maxID,
	}, nil
}
