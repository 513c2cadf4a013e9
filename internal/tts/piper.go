package tts

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"
)

// waitDelay bounds how long Wait blocks on inherited pipes after the engine
// process has been killed.
const waitDelay = 5 * time.Second

// PiperConfig holds configuration for the Piper CLI backend.
type PiperConfig struct {
	BinPath string        // default: "piper"
	Timeout time.Duration // zero disables the timeout
}

// PiperEngine synthesizes speech by running the Piper binary once per request:
//
//	piper --model <model> --text <text> --output-file <path>
type PiperEngine struct {
	cfg    PiperConfig
	logger *slog.Logger
}

// NewPiperEngine creates a PiperEngine backed by a local Piper binary.
func NewPiperEngine(cfg PiperConfig, logger *slog.Logger) *PiperEngine {
	if cfg.BinPath == "" {
		cfg.BinPath = "piper"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PiperEngine{cfg: cfg, logger: logger}
}

func (p *PiperEngine) Name() string { return "piper" }

// Synthesize runs the engine as a child process tied to ctx. Stdout and
// stderr are captured in full; a non-zero exit yields an *EngineError whose
// Diagnostic is the captured stderr.
func (p *PiperEngine) Synthesize(ctx context.Context, text, modelID, outputPath string) error {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	// #nosec G204 -- arguments are passed as argv, never through a shell
	cmd := exec.CommandContext(ctx, p.cfg.BinPath,
		"--model", modelID,
		"--text", text,
		"--output-file", outputPath,
	)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	p.logger.Info("invoking synthesis engine",
		"engine", p.Name(),
		"model", modelID,
		"output", outputPath,
		"chars", utf8.RuneCountInString(text),
	)

	start := time.Now()
	err := cmd.Run()

	if out := strings.TrimSpace(stdout.String()); out != "" {
		p.logger.Info("engine stdout", "engine", p.Name(), "stdout", out)
	}

	if err != nil {
		engineErr := &EngineError{
			Engine:     p.Name(),
			Diagnostic: strings.TrimSpace(stderr.String()),
			Err:        err,
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			engineErr.ExitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			engineErr.Err = errors.Join(err, ctxErr)
			if engineErr.Diagnostic == "" {
				engineErr.Diagnostic = "synthesis aborted: " + ctxErr.Error()
			}
		}
		if engineErr.Diagnostic == "" {
			engineErr.Diagnostic = err.Error()
		}

		p.logger.Error("synthesis engine failed",
			"engine", p.Name(),
			"exit_code", engineErr.ExitCode,
			"stderr", engineErr.Diagnostic,
			"duration", time.Since(start),
		)
		return engineErr
	}

	if diag := strings.TrimSpace(stderr.String()); diag != "" {
		p.logger.Debug("engine stderr", "engine", p.Name(), "stderr", diag)
	}
	p.logger.Info("synthesis finished", "engine", p.Name(), "duration", time.Since(start))

	return nil
}
