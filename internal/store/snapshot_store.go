package store

import (
	"path/filepath"
)

// SnapshotStore persists the last fetched title detail response as a raw
// blob. It does no merging: every Save replaces the file wholesale.
type SnapshotStore struct {
	path string
}

// NewSnapshotStore returns a store for the snapshot blob in dataDir.
func NewSnapshotStore(dataDir string) *SnapshotStore {
	return &SnapshotStore{path: filepath.Join(dataDir, SnapshotFile)}
}

// Path returns the location of the blob.
func (s *SnapshotStore) Path() string {
	return s.path
}

// Load returns the cached response body. It returns an error wrapping
// ErrNotFound when nothing has been cached yet.
func (s *SnapshotStore) Load() ([]byte, error) {
	return readFile(s.path)
}

// Save replaces the cached response body with raw.
func (s *SnapshotStore) Save(raw []byte) error {
	return writeFileAtomic(s.path, raw, 0o644)
}
