// Package tokenstore persists the OAuth token set between runs. The store is
// a single JSON file; losing it only means the user has to log in again, so
// unreadable or corrupt contents are downgraded to "no token".
package tokenstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ejci/tado-data-capture/internal/tado"
)

// FileStore stores the token set as a JSON file on disk
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore creates a file-backed token store at the given path
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		path:   path,
		logger: logger,
	}
}

// Load reads the persisted token set. A missing file returns (nil, nil); a
// corrupt one is logged and also treated as absent rather than failing
// startup.
func (s *FileStore) Load() (*tado.TokenSet, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		s.logger.Warn("Token file unreadable, treating as absent", "path", s.path, "error", err)
		return nil, nil
	}

	var tokens tado.TokenSet
	if err := json.Unmarshal(data, &tokens); err != nil {
		s.logger.Warn("Token file corrupt, treating as absent", "path", s.path, "error", err)
		return nil, nil
	}

	return &tokens, nil
}

// Save writes the token set to disk, creating the parent directory if needed.
// The file holds credentials, hence the restrictive mode.
func (s *FileStore) Save(tokens *tado.TokenSet) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tokens: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}
