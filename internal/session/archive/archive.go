// Package archive persists final run views as JSON files, one per run, so
// ended runs outlive both the in-memory retention window and the process.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"aria/internal/logging"
	"aria/internal/session"
)

// Run ids double as file names, so only plain identifier characters pass.
var runIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// Store writes one <run-id>.json per ended run under a base directory.
type Store struct {
	dir    string
	logger logging.Logger
}

// New creates the base directory if needed. A leading ~/ is expanded.
func New(dir string, logger logging.Logger) (*Store, error) {
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Store{dir: dir, logger: logging.OrNop(logger)}, nil
}

// Save writes the view atomically via a temp file and rename.
func (s *Store) Save(view session.View) error {
	path, err := s.path(view.RunID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads an archived view. A missing file is not an error.
func (s *Store) Load(runID string) (session.View, bool, error) {
	path, err := s.path(runID)
	if err != nil {
		return session.View{}, false, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return session.View{}, false, nil
	}
	if err != nil {
		return session.View{}, false, err
	}
	var view session.View
	if err := json.Unmarshal(data, &view); err != nil {
		return session.View{}, false, fmt.Errorf("decode archived view %s: %w", runID, err)
	}
	return view, true, nil
}

// Delete removes the archived view if present.
func (s *Store) Delete(runID string) error {
	path, err := s.path(runID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) path(runID string) (string, error) {
	if !runIDPattern.MatchString(runID) {
		return "", fmt.Errorf("run id %q is not archivable", runID)
	}
	return filepath.Join(s.dir, runID+".json"), nil
}
