package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lxc/incus/v6/shared/revert"

	"github.com/barokatu/tauri-updater-server/api"
)

// DefaultFilePath is the location of the record relative to the working directory.
var DefaultFilePath = filepath.Join("data", "updates.json")

// FileStore keeps the record as a pretty-printed JSON file.
type FileStore struct {
	path string
}

// NewFileStore returns a file backend for the given path.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFilePath
	}

	return &FileStore{path: path}
}

// Type returns the backend name.
func (*FileStore) Type() string {
	return "file"
}

// Read parses the record file.
func (f *FileStore) Read(_ context.Context) (*api.UpdateRecord, error) {
	body, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrRecordNotFound
		}

		return nil, err
	}

	record := &api.UpdateRecord{}

	err = json.Unmarshal(body, record)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", f.path, err)
	}

	return record, nil
}

// Write replaces the record file, creating its parent directory if needed.
func (f *FileStore) Write(_ context.Context, record *api.UpdateRecord) error {
	body, err := encodeFile(record)
	if err != nil {
		return err
	}

	err = f.write(body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileWritesUnsupported, err)
	}

	return nil
}

func (f *FileStore) write(body []byte) error {
	dir := filepath.Dir(f.path)

	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return err
	}

	// Write to a temporary file first so readers never see a partial record.
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return err
	}

	reverter := revert.New()
	defer reverter.Fail()

	reverter.Add(func() { _ = os.Remove(tmp.Name()) })

	_, err = tmp.Write(body)
	if err != nil {
		_ = tmp.Close()

		return err
	}

	err = tmp.Close()
	if err != nil {
		return err
	}

	err = os.Chmod(tmp.Name(), 0o644)
	if err != nil {
		return err
	}

	err = os.Rename(tmp.Name(), f.path)
	if err != nil {
		return err
	}

	reverter.Success()

	return nil
}

// encodeFile renders the on-disk layout: two-space indentation, no HTML escaping.
func encodeFile(record *api.UpdateRecord) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	err := enc.Encode(record)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
