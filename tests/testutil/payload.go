package testutil

import (
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/nhle/mangaplus-notifier/internal/model"
)

// EncodeSnapshot builds a title detail success response carrying s,
// laid out the way the web API serialises it.
func EncodeSnapshot(s model.Snapshot) []byte {
	var title []byte
	title = appendVarint(title, 1, uint64(s.Title.ID))
	title = appendString(title, 2, s.Title.Name)
	title = appendString(title, 3, s.Title.Author)

	var detail []byte
	detail = appendMessage(detail, 1, title)
	detail = appendVarint(detail, 5, unixSeconds(s.NextRelease))
	for _, c := range s.FirstChapters {
		detail = appendMessage(detail, 9, encodeChapter(c))
	}
	for _, c := range s.LastChapters {
		detail = appendMessage(detail, 10, encodeChapter(c))
	}

	var success []byte
	success = appendMessage(success, 8, detail)

	var resp []byte
	return appendMessage(resp, 1, success)
}

// EncodeError builds a title detail response carrying an error result.
func EncodeError(action int, subject, body string) []byte {
	var popup []byte
	popup = appendString(popup, 1, subject)
	popup = appendString(popup, 2, body)

	var result []byte
	result = appendVarint(result, 1, uint64(action))
	result = appendMessage(result, 2, popup)

	var resp []byte
	return appendMessage(resp, 2, result)
}

// Chapter is a shorthand for building a chapter released at the given
// unix second.
func Chapter(id int, name, subtitle string, releasedAt int64) model.Chapter {
	return model.Chapter{
		TitleID:    100056,
		ID:         id,
		Name:       name,
		Subtitle:   subtitle,
		ReleasedAt: time.Unix(releasedAt, 0).UTC(),
	}
}

func encodeChapter(c model.Chapter) []byte {
	var b []byte
	b = appendVarint(b, 1, uint64(c.TitleID))
	b = appendVarint(b, 2, uint64(c.ID))
	b = appendString(b, 3, c.Name)
	b = appendString(b, 4, c.Subtitle)
	b = appendString(b, 5, c.ThumbnailURL)
	b = appendVarint(b, 6, unixSeconds(c.ReleasedAt))
	return b
}

func unixSeconds(t time.Time) uint64 {
	if t.IsZero() {
		return 0
	}
	return uint64(t.Unix())
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}
