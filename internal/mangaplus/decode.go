package mangaplus

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/nhle/mangaplus-notifier/internal/model"
)

// Field numbers of the title detail response messages.
const (
	fieldResponseSuccess = 1
	fieldResponseError   = 2

	fieldSuccessTitleDetailView = 8

	fieldErrorAction       = 1
	fieldErrorEnglishPopup = 2
	fieldErrorDebugInfo    = 4

	fieldPopupSubject = 1
	fieldPopupBody    = 2

	fieldDetailTitle            = 1
	fieldDetailNextTimestamp    = 5
	fieldDetailFirstChapterList = 9
	fieldDetailLastChapterList  = 10

	fieldTitleID     = 1
	fieldTitleName   = 2
	fieldTitleAuthor = 3

	fieldChapterTitleID        = 1
	fieldChapterID             = 2
	fieldChapterName           = 3
	fieldChapterSubTitle       = 4
	fieldChapterThumbnailURL   = 5
	fieldChapterStartTimestamp = 6
)

// ErrNoTitleDetail is returned when a response carries neither an error
// result nor a title detail view.
var ErrNoTitleDetail = errors.New("response has no title detail view")

// field is one decoded wire field. Only varint and length-delimited
// values are kept; other wire types are skipped.
type field struct {
	num    protowire.Number
	typ    protowire.Type
	varint uint64
	bytes  []byte
}

// walk calls visit for every top-level field in b.
func walk(b []byte, visit func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("reading tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.varint, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("reading field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]

		if err := visit(f); err != nil {
			return err
		}
	}
	return nil
}

// Decode parses a raw title detail response. An error result in the
// response is returned as *APIError.
func Decode(raw []byte) (*model.Snapshot, error) {
	var (
		success []byte
		apiErr  *APIError
	)

	err := walk(raw, func(f field) error {
		if f.typ != protowire.BytesType {
			return nil
		}
		switch f.num {
		case fieldResponseSuccess:
			success = f.bytes
		case fieldResponseError:
			e, err := decodeError(f.bytes)
			if err != nil {
				return fmt.Errorf("decoding error result: %w", err)
			}
			apiErr = e
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if apiErr != nil {
		return nil, apiErr
	}

	var detail []byte
	err = walk(success, func(f field) error {
		if f.num == fieldSuccessTitleDetailView && f.typ == protowire.BytesType {
			detail = f.bytes
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("decoding success result: %w", err)
	}
	if detail == nil {
		return nil, ErrNoTitleDetail
	}

	snap, err := decodeTitleDetail(detail)
	if err != nil {
		return nil, fmt.Errorf("decoding title detail: %w", err)
	}
	return snap, nil
}

func decodeError(b []byte) (*APIError, error) {
	e := &APIError{}
	err := walk(b, func(f field) error {
		switch {
		case f.num == fieldErrorAction && f.typ == protowire.VarintType:
			e.Action = int(f.varint)
		case f.num == fieldErrorEnglishPopup && f.typ == protowire.BytesType:
			return walk(f.bytes, func(p field) error {
				if p.typ != protowire.BytesType {
					return nil
				}
				switch p.num {
				case fieldPopupSubject:
					e.Subject = string(p.bytes)
				case fieldPopupBody:
					e.Body = string(p.bytes)
				}
				return nil
			})
		case f.num == fieldErrorDebugInfo && f.typ == protowire.BytesType:
			e.DebugInfo = string(f.bytes)
		}
		return nil
	})
	return e, err
}

func decodeTitleDetail(b []byte) (*model.Snapshot, error) {
	snap := &model.Snapshot{}
	err := walk(b, func(f field) error {
		switch {
		case f.num == fieldDetailTitle && f.typ == protowire.BytesType:
			t, err := decodeTitle(f.bytes)
			if err != nil {
				return fmt.Errorf("title: %w", err)
			}
			snap.Title = t
		case f.num == fieldDetailNextTimestamp && f.typ == protowire.VarintType:
			snap.NextRelease = unixTime(f.varint)
		case f.num == fieldDetailFirstChapterList && f.typ == protowire.BytesType:
			c, err := decodeChapter(f.bytes)
			if err != nil {
				return fmt.Errorf("first chapter list: %w", err)
			}
			snap.FirstChapters = append(snap.FirstChapters, c)
		case f.num == fieldDetailLastChapterList && f.typ == protowire.BytesType:
			c, err := decodeChapter(f.bytes)
			if err != nil {
				return fmt.Errorf("last chapter list: %w", err)
			}
			snap.LastChapters = append(snap.LastChapters, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func decodeTitle(b []byte) (model.Title, error) {
	var t model.Title
	err := walk(b, func(f field) error {
		switch {
		case f.num == fieldTitleID && f.typ == protowire.VarintType:
			t.ID = int(f.varint)
		case f.num == fieldTitleName && f.typ == protowire.BytesType:
			t.Name = string(f.bytes)
		case f.num == fieldTitleAuthor && f.typ == protowire.BytesType:
			t.Author = string(f.bytes)
		}
		return nil
	})
	return t, err
}

func decodeChapter(b []byte) (model.Chapter, error) {
	var c model.Chapter
	err := walk(b, func(f field) error {
		switch {
		case f.num == fieldChapterTitleID && f.typ == protowire.VarintType:
			c.TitleID = int(f.varint)
		case f.num == fieldChapterID && f.typ == protowire.VarintType:
			c.ID = int(f.varint)
		case f.num == fieldChapterName && f.typ == protowire.BytesType:
			c.Name = string(f.bytes)
		case f.num == fieldChapterSubTitle && f.typ == protowire.BytesType:
			c.Subtitle = string(f.bytes)
		case f.num == fieldChapterThumbnailURL && f.typ == protowire.BytesType:
			c.ThumbnailURL = string(f.bytes)
		case f.num == fieldChapterStartTimestamp && f.typ == protowire.VarintType:
			c.ReleasedAt = unixTime(f.varint)
		}
		return nil
	})
	return c, err
}

// unixTime converts a wire timestamp in seconds to UTC.
func unixTime(sec uint64) time.Time {
	return time.Unix(int64(sec), 0).UTC()
}
