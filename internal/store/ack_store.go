package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/nhle/mangaplus-notifier/internal/model"
)

// ackKey is the required key of the acknowledgment file.
const ackKey = "last_acknowledged_chapter"

// AckStore persists the acknowledgment record as a small JSON object.
// Writes are guarded: a record without a chapter name is rejected and
// the previous file is preserved.
type AckStore struct {
	path string
}

// NewAckStore returns a store for the acknowledgment file in dataDir.
func NewAckStore(dataDir string) *AckStore {
	return &AckStore{path: filepath.Join(dataDir, AckFile)}
}

// Path returns the location of the acknowledgment file.
func (s *AckStore) Path() string {
	return s.path
}

// Load reads the acknowledgment record. It returns an error wrapping
// ErrNotFound when no record exists yet.
func (s *AckStore) Load() (*model.Acknowledgment, error) {
	data, err := readFile(s.path)
	if err != nil {
		return nil, err
	}

	var ack model.Acknowledgment
	if err := json.Unmarshal(data, &ack); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	if !ack.Valid() {
		return nil, fmt.Errorf("parsing %s: %w", s.path, ErrMalformedRecord)
	}
	return &ack, nil
}

// Write persists ack. It returns ErrMalformedRecord without touching the
// file when the chapter name is missing.
func (s *AckStore) Write(ack model.Acknowledgment) error {
	if !ack.Valid() {
		return ErrMalformedRecord
	}

	data, err := encodeAck(ack)
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path, data, 0o644)
}

// WriteJSON validates a raw JSON payload and persists it. Payloads that
// are not an object with a non-empty string under
// "last_acknowledged_chapter" are rejected with ErrMalformedRecord.
func (s *AckStore) WriteJSON(payload []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil || fields == nil {
		return ErrMalformedRecord
	}

	raw, ok := fields[ackKey]
	if !ok {
		return ErrMalformedRecord
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return ErrMalformedRecord
	}

	var ack model.Acknowledgment
	if err := json.Unmarshal(payload, &ack); err != nil {
		return ErrMalformedRecord
	}
	return s.Write(ack)
}

// encodeAck renders ack deterministically so equal records produce
// identical files.
func encodeAck(ack model.Acknowledgment) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ack); err != nil {
		return nil, fmt.Errorf("encoding acknowledgment: %w", err)
	}
	return buf.Bytes(), nil
}
