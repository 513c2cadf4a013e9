// Package tts adapts external speech-synthesis engines to a single
// file-producing interface.
package tts

import (
	"context"
	"fmt"
)

// Engine renders text with a voice model into a WAV file at outputPath.
// A failed run is reported as *EngineError.
type Engine interface {
	Synthesize(ctx context.Context, text, modelID, outputPath string) error
	Name() string
}

// EngineError describes a failed synthesis run. Diagnostic holds the
// engine's captured standard error (or the API error text).
type EngineError struct {
	Engine     string
	ExitCode   int
	Diagnostic string
	Err        error
}

func (e *EngineError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("%s exited with status %d: %s", e.Engine, e.ExitCode, e.Diagnostic)
	}
	return fmt.Sprintf("%s failed: %s", e.Engine, e.Diagnostic)
}

func (e *EngineError) Unwrap() error { return e.Err }
