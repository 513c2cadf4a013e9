package artifact_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/ttsbridge/internal/artifact"
)

func newManager(t *testing.T) *artifact.Manager {
	t.Helper()
	return artifact.NewManager(t.TempDir(), slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func TestAllocate(t *testing.T) {
	t.Parallel()

	m := newManager(t)

	a, err := m.Allocate()
	require.NoError(t, err)

	assert.Equal(t, artifact.FormatWAV, a.Format)
	assert.True(t, strings.HasSuffix(a.Path, ".wav"), "path %q should end in .wav", a.Path)
	assert.Equal(t, m.Dir(), filepath.Dir(a.Path))
	assert.FileExists(t, a.Path)
}

func TestAllocateConcurrentPathsAreDistinct(t *testing.T) {
	t.Parallel()

	const n = 64
	m := newManager(t)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		paths = make(map[string]struct{}, n)
		errs  []error
	)

	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := m.Allocate()
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			paths[a.Path] = struct{}{}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Len(t, paths, n)
}

func TestReleaseIsIdempotent(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	a, err := m.Allocate()
	require.NoError(t, err)

	m.Release(a.Path)
	assert.NoFileExists(t, a.Path)

	assert.NotPanics(t, func() {
		m.Release(a.Path)
		m.Release(filepath.Join(m.Dir(), "never-created.wav"))
		m.Release("")
	})
}

func TestReleaseFailureIsLoggedAsCleanup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	dir := t.TempDir()
	m := artifact.NewManager(dir, slog.New(slog.NewJSONHandler(&buf, nil)))

	// A non-empty directory cannot be removed.
	busy := filepath.Join(dir, "busy")
	require.NoError(t, os.Mkdir(busy, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(busy, "keep"), []byte("x"), 0o600))

	assert.NotPanics(t, func() { m.Release(busy) })

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "cleanup", line["kind"])
	assert.Equal(t, busy, line["path"])
	assert.Contains(t, line["error"], "cleanup: remove temporary artifact")
}

func TestAllocateFailsForMissingDirectory(t *testing.T) {
	t.Parallel()

	m := artifact.NewManager(filepath.Join(t.TempDir(), "missing"), nil)

	_, err := m.Allocate()
	require.Error(t, err)
}
