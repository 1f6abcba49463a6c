package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FSStore persists artifacts on the local filesystem, one directory per run
// under the configured root. Artifact names map directly to file names, so a
// run directory is human-browsable: input.txt, events.jsonl, response.md,
// trace.json, conversation.json.
type FSStore struct {
	mu   sync.Mutex
	root string
}

// NewFSStore creates a store rooted at dir, creating it if needed.
func NewFSStore(dir string) (*FSStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("artifact root must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact root: %w", err)
	}
	return &FSStore{root: dir}, nil
}

// Root returns the store's root directory.
func (s *FSStore) Root() string { return s.root }

// RunDir returns the directory holding one run's artifacts.
func (s *FSStore) RunDir(runID string) string {
	return filepath.Join(s.root, runID)
}

func (s *FSStore) path(runID, name string) (string, error) {
	if runID == "" || name == "" {
		return "", fmt.Errorf("run id and artifact name must not be empty")
	}
	// Names are flat files inside the run directory; reject path escapes.
	if strings.ContainsAny(runID, `/\`) || strings.ContainsAny(name, `/\`) || name == ".." || runID == ".." {
		return "", fmt.Errorf("invalid artifact path %q/%q", runID, name)
	}
	return filepath.Join(s.root, runID, name), nil
}

// Save writes the artifact atomically via a temp file rename.
func (s *FSStore) Save(runID, name string, data []byte) error {
	path, err := s.path(runID, name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("finalize artifact: %w", err)
	}
	return nil
}

// Append appends to the artifact, creating run directory and file as needed.
// Each call issues a single write so journal lines stay intact.
func (s *FSStore) Append(runID, name string, data []byte) error {
	path, err := s.path(runID, name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("append artifact: %w", err)
	}
	return nil
}

// Get returns the artifact bytes or ErrNotFound.
func (s *FSStore) Get(runID, name string) ([]byte, error) {
	path, err := s.path(runID, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return data, nil
}

// List returns the artifact names for a run; a run with no directory yet has
// no artifacts.
func (s *FSStore) List(runID string) ([]string, error) {
	entries, err := os.ReadDir(s.RunDir(runID))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".tmp") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
