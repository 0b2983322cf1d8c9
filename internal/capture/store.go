package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	apperrors "adspulse/internal/errors"
)

// SpoolFS is the slice of the file manager the store writes through.
type SpoolFS interface {
	EnsureDirectory(path string) error
	FileExists(path string) bool
	WriteFile(path string, data []byte) error
}

// Store persists accepted payloads into the spool directory.
type Store struct {
	dir    string
	fs     SpoolFS
	logger *slog.Logger
	now    func() time.Time
}

// NewStore builds a Store rooted at dir, writing through fs. A nil
// logger falls back to slog.Default.
func NewStore(dir string, fs SpoolFS, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, fs: fs, logger: logger, now: time.Now}
}

// Save writes one decoded payload, pretty-printed so consecutive
// captures of the same endpoint diff cleanly. Same-second name
// collisions get a numeric suffix instead of clobbering the earlier
// body. Returns the written path.
func (s *Store) Save(ctx context.Context, rawURL string, payload interface{}) (string, error) {
	if err := s.fs.EnsureDirectory(s.dir); err != nil {
		return "", apperrors.NewStorageError("creating spool directory", err)
	}
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", apperrors.NewStorageError("encoding payload", err)
	}

	name := SpoolName(rawURL, s.now())
	stem := strings.TrimSuffix(name, ".json")
	path := filepath.Join(s.dir, name)
	for n := 2; s.fs.FileExists(path); n++ {
		path = filepath.Join(s.dir, fmt.Sprintf("%s_%d.json", stem, n))
	}

	if err := s.fs.WriteFile(path, body); err != nil {
		return "", apperrors.NewStorageError("writing spool file", err)
	}
	s.logger.DebugContext(ctx, "payload spooled",
		slog.String("path", path),
		slog.Int("bytes", len(body)))
	return path, nil
}
