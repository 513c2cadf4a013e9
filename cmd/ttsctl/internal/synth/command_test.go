package synth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/ttsbridge/internal/artifact"
	"github.com/nikhilbhutani/ttsbridge/internal/tts"
)

type stubEngine struct {
	err      error
	gotModel string
}

func (s *stubEngine) Name() string { return "stub" }

func (s *stubEngine) Synthesize(_ context.Context, text, modelID, outputPath string) error {
	s.gotModel = modelID
	if s.err != nil {
		return s.err
	}
	return os.WriteFile(outputPath, []byte("RIFF"+text), 0o600)
}

func TestNewSynthCommand(t *testing.T) {
	cmd := NewSynthCommand()

	require.NotNil(t, cmd)
	assert.Equal(t, "synth <text>", cmd.Use)
	assert.True(t, cmd.HasExample())
	assert.NotNil(t, cmd.RunE)
	assert.Nil(t, cmd.Run)

	for _, name := range []string{"output", "model", "verbose"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s", name)
	}
}

func TestSynthesizeCopiesAndReleases(t *testing.T) {
	tmp := t.TempDir()
	files := artifact.NewManager(tmp, nil)
	output := filepath.Join(t.TempDir(), "hello.wav")
	engine := &stubEngine{}

	n, err := synthesize(context.Background(), engine, files, "hello", "amy.onnx", output)
	require.NoError(t, err)
	assert.EqualValues(t, len("RIFFhello"), n)
	assert.Equal(t, "amy.onnx", engine.gotModel)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "RIFFhello", string(data))

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSynthesizeEngineFailureReleases(t *testing.T) {
	tmp := t.TempDir()
	files := artifact.NewManager(tmp, nil)
	engine := &stubEngine{err: &tts.EngineError{Engine: "stub", ExitCode: 1, Diagnostic: "model not found"}}

	_, err := synthesize(context.Background(), engine, files, "hello", "missing.onnx", filepath.Join(t.TempDir(), "x.wav"))

	var engineErr *tts.EngineError
	require.True(t, errors.As(err, &engineErr))
	assert.Equal(t, "model not found", engineErr.Diagnostic)

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	_, err := synthesize(context.Background(), &stubEngine{}, artifact.NewManager(t.TempDir(), nil), "", "m", "out.wav")
	require.Error(t, err)
}
