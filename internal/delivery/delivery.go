// Package delivery returns a finished artifact to the caller, either by
// streaming the WAV bytes or by uploading the file and answering with a link.
package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nikhilbhutani/ttsbridge/internal/artifact"
)

// ErrResponseStarted marks a delivery failure after the status line was sent.
var ErrResponseStarted = errors.New("response already started")

type OutcomeKind string

const (
	Streamed OutcomeKind = "streamed"
	Uploaded OutcomeKind = "uploaded"
)

// Outcome records what a strategy did with the artifact.
type Outcome struct {
	Kind      OutcomeKind
	Bytes     int64  // streamed only
	RemoteID  string // uploaded only
	RemoteURL string // uploaded only
}

// Strategy writes the success response for an artifact. On error nothing has
// been written to w and the caller answers with a failure status. Ready
// reports missing settings and is checked on every request.
type Strategy interface {
	Name() string
	Ready() error
	Deliver(ctx context.Context, w http.ResponseWriter, a artifact.Artifact) (Outcome, error)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
