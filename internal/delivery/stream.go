package delivery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/nikhilbhutani/ttsbridge/internal/artifact"
	"github.com/nikhilbhutani/ttsbridge/internal/storage"
)

const defaultFilename = "output.wav"

// Stream sends the WAV file as an attachment download.
type Stream struct {
	filename string
}

func NewStream(filename string) *Stream {
	if filename == "" {
		filename = defaultFilename
	}
	return &Stream{filename: filename}
}

func (s *Stream) Name() string { return "stream" }

func (s *Stream) Ready() error { return nil }

// Deliver opens and stats the artifact before touching the response, so an
// unreadable file still leaves the caller free to answer 500.
func (s *Stream) Deliver(_ context.Context, w http.ResponseWriter, a artifact.Artifact) (Outcome, error) {
	f, err := os.Open(a.Path)
	if err != nil {
		return Outcome{}, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Outcome{}, fmt.Errorf("stat artifact: %w", err)
	}

	h := w.Header()
	h.Set("Content-Type", storage.MIMETypeWAV)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.filename))
	h.Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)

	n, err := io.Copy(w, f)
	if err != nil {
		// Headers are already out; the client sees a truncated body.
		return Outcome{Kind: Streamed, Bytes: n}, fmt.Errorf("%w: %v", ErrResponseStarted, err)
	}

	return Outcome{Kind: Streamed, Bytes: n}, nil
}
