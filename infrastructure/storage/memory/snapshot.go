package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ahrav/go-standings/internal/domain"
)

// ReadSnapshot decodes a JSON snapshot. Unknown fields are rejected.
func ReadSnapshot(r io.Reader) (domain.Snapshot, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var snap domain.Snapshot
	if err := dec.Decode(&snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}

// WriteSnapshot encodes snap as indented JSON.
func WriteSnapshot(w io.Writer, snap domain.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// LoadSnapshotFile reads a snapshot from path.
func LoadSnapshotFile(path string) (domain.Snapshot, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	return ReadSnapshot(f)
}

// SaveSnapshotFile writes snap to path, creating parent directories.
func SaveSnapshotFile(path string, snap domain.Snapshot) (err error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close snapshot: %w", cerr)
		}
	}()

	return WriteSnapshot(f, snap)
}
