package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultPath is the state file used when none is configured.
const DefaultPath = "state.json"

// FileBackend keeps the snapshot in a single JSON document on disk.
type FileBackend struct {
	path string
}

// NewFileBackend creates a backend for the JSON file at path.
func NewFileBackend(path string) *FileBackend {
	if path == "" {
		path = DefaultPath
	}
	return &FileBackend{path: path}
}

// Name returns the file path.
func (b *FileBackend) Name() string {
	return b.path
}

// Read decodes the state file. A missing file yields (nil, nil).
func (b *FileBackend) Read(_ context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &LoadError{Source: b.path, Message: "failed to read state file", Cause: err}
	}

	snap := NewSnapshot()
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, &LoadError{Source: b.path, Message: "state file is not valid JSON", Corrupt: true, Cause: err}
	}
	snap.ensureMaps()
	return snap, nil
}

// Write encodes the snapshot to a temporary file and renames it over the state
// file, so a crash never leaves a partially written document behind.
func (b *FileBackend) Write(_ context.Context, snap *Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return &SaveError{Source: b.path, Message: "failed to encode state", Cause: err}
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &SaveError{Source: b.path, Message: fmt.Sprintf("failed to create directory %s", dir), Cause: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return &SaveError{Source: b.path, Message: "failed to create temp file", Cause: err}
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &SaveError{Source: b.path, Message: "failed to write temp file", Cause: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return &SaveError{Source: b.path, Message: "failed to sync temp file", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return &SaveError{Source: b.path, Message: "failed to close temp file", Cause: err}
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		return &SaveError{Source: b.path, Message: "failed to replace state file", Cause: err}
	}
	return nil
}

// Encode renders a snapshot as indented JSON. Map keys are emitted in sorted
// order, so encoding the same snapshot always yields the same bytes.
func Encode(snap *Snapshot) ([]byte, error) {
	if snap == nil {
		snap = NewSnapshot()
	}
	snap.ensureMaps()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
