package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"agro-backend/internal/shared/storage/object"
)

// Store implements ConfigStore using the local filesystem.
type Store struct {
	baseDir string
}

// New creates a new local config store rooted at baseDir.
func New(baseDir string) object.ConfigStore {
	return &Store{baseDir: baseDir}
}

// Fetch reads the payload at the given key under the base directory.
func (s *Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean := filepath.Clean(key)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("invalid config key")
	}

	data, err := os.ReadFile(filepath.Join(s.baseDir, clean))
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", clean, err)
	}
	return data, nil
}
