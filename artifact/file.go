package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileStore keeps artifacts as plain files below a root directory.
//
// Layout: <root>/<sessionID>/<artifactID>
//
// Writes go to a temporary file that is renamed into place, so readers never
// observe a partially written artifact.
type FileStore struct {
	root string
}

// NewFileStore creates a FileStore rooted at dir. The directory is created
// lazily on first Save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

// DefaultLogDir returns ~/Desktop/logs, the conventional location for
// exported transcript snapshots.
func DefaultLogDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, "Desktop", "logs"), nil
}

func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

func (f *FileStore) path(sessionID, artifactID string) (string, error) {
	if !validID(sessionID) || !validID(artifactID) {
		return "", fmt.Errorf("%w: %q/%q", ErrInvalidID, sessionID, artifactID)
	}
	return filepath.Join(f.root, sessionID, artifactID), nil
}

// Save writes (or overwrites) the artifact.
func (f *FileStore) Save(_ context.Context, sessionID, artifactID string, data []byte) error {
	p, err := f.path(sessionID, artifactID)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-"+artifactID+"-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("rename artifact: %w", err)
	}
	return nil
}

// Get reads the artifact or returns ErrNotFound.
func (f *FileStore) Get(_ context.Context, sessionID, artifactID string) ([]byte, error) {
	p, err := f.path(sessionID, artifactID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// List returns the sorted artifact ids stored for the session.
func (f *FileStore) List(_ context.Context, sessionID string) ([]string, error) {
	if !validID(sessionID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, sessionID)
	}
	entries, err := os.ReadDir(filepath.Join(f.root, sessionID))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".tmp-") {
			continue
		}
		ids = append(ids, e.Name())
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes the artifact or returns ErrNotFound.
func (f *FileStore) Delete(_ context.Context, sessionID, artifactID string) error {
	p, err := f.path(sessionID, artifactID)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
