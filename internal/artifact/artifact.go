// Package artifact allocates and removes the temporary WAV files produced for
// a single synthesis request.
package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/ttsbridge/internal/apperr"
)

const (
	FormatWAV  = "wav"
	filePrefix = "tts-"
	filePerm   = 0o600
)

// Artifact is a request-owned file slot for engine output.
type Artifact struct {
	Path   string
	Format string
}

// Name is the base name of the artifact file.
func (a Artifact) Name() string { return filepath.Base(a.Path) }

type Manager struct {
	dir    string
	logger *slog.Logger
}

// NewManager creates a Manager rooted at dir. An empty dir means os.TempDir().
func NewManager(dir string, logger *slog.Logger) *Manager {
	if dir == "" {
		dir = os.TempDir()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{dir: dir, logger: logger}
}

func (m *Manager) Dir() string { return m.dir }

// Allocate reserves a fresh .wav path. The name is a random UUID and the file
// is created with O_EXCL, so concurrent allocations never share a path.
func (m *Manager) Allocate() (Artifact, error) {
	path := filepath.Join(m.dir, filePrefix+uuid.NewString()+"."+FormatWAV)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return Artifact{}, fmt.Errorf("allocate artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return Artifact{}, fmt.Errorf("close artifact: %w", err)
	}

	return Artifact{Path: path, Format: FormatWAV}, nil
}

// Release removes the file at path. It never fails from the caller's point
// of view: a missing file is ignored and other errors are only logged.
func (m *Manager) Release(path string) {
	if path == "" {
		return
	}
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return
	}
	e := apperr.New(apperr.KindCleanup, "remove temporary artifact", err)
	m.logger.Error("failed to remove temporary artifact", "kind", e.Kind.String(), "path", path, "error", e)
}
