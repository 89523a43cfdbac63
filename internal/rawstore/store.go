package rawstore

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rickgao/econ-etl/internal/model"
)

// Store writes raw snapshots under a base directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates a snapshot store rooted at dir, creating it if needed.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create raw dir: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Path returns the snapshot path for a series on a given day.
func (s *Store) Path(desc model.SeriesDescriptor, day time.Time) string {
	name := fmt.Sprintf("%s_%s_%s.json", desc.Source, desc.ProviderSeriesID, day.Format("2006_01_02"))
	return filepath.Join(s.dir, name)
}

// Write stores the raw payload for a series, write-once. If a snapshot
// for the same key already exists it is left untouched and its path is
// returned without error.
func (s *Store) Write(desc model.SeriesDescriptor, day time.Time, raw []byte) (string, error) {
	path := s.Path(desc, day)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		s.logger.Debug("snapshot already exists", "path", path)
		return path, nil
	}
	if err != nil {
		return "", fmt.Errorf("create snapshot %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(raw); err != nil {
		return "", fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return path, nil
}
