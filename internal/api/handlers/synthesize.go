package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/getsentry/sentry-go"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/ttsbridge/internal/apperr"
	"github.com/nikhilbhutani/ttsbridge/internal/artifact"
	"github.com/nikhilbhutani/ttsbridge/internal/delivery"
	"github.com/nikhilbhutani/ttsbridge/internal/tts"
)

const msgMissingText = "Missing 'text' in request"

type SynthesizeRequest struct {
	Text string `json:"text"`
}

// SynthesizeConfig holds the per-deployment settings of the pipeline.
type SynthesizeConfig struct {
	ModelID       string
	MaxTextLength int // runes; zero disables the limit
}

// SynthesizeHandler runs validation, synthesis and delivery for one request.
// Configuration and authorization are enforced by middleware in front of it.
type SynthesizeHandler struct {
	engine   tts.Engine
	files    *artifact.Manager
	strategy delivery.Strategy
	cfg      SynthesizeConfig
	logger   *slog.Logger
}

func NewSynthesizeHandler(engine tts.Engine, files *artifact.Manager, strategy delivery.Strategy, cfg SynthesizeConfig, logger *slog.Logger) *SynthesizeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SynthesizeHandler{
		engine:   engine,
		files:    files,
		strategy: strategy,
		cfg:      cfg,
		logger:   logger,
	}
}

func (h *SynthesizeHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.logger.With("request_id", chimiddleware.GetReqID(ctx))

	var req SynthesizeRequest
	if err := decodeBody(r.Body, &req); err != nil || req.Text == "" {
		h.fail(w, r, log, apperr.New(apperr.KindValidation, msgMissingText, err))
		return
	}
	if h.cfg.MaxTextLength > 0 && utf8.RuneCountInString(req.Text) > h.cfg.MaxTextLength {
		h.fail(w, r, log, apperr.New(apperr.KindValidation,
			fmt.Sprintf("'text' exceeds %d characters", h.cfg.MaxTextLength), nil))
		return
	}

	a, err := h.files.Allocate()
	if err != nil {
		h.fail(w, r, log, apperr.New(apperr.KindInternal, "could not allocate output file", err))
		return
	}
	defer h.files.Release(a.Path)

	if err := h.engine.Synthesize(ctx, req.Text, h.cfg.ModelID, a.Path); err != nil {
		diag := err.Error()
		var engineErr *tts.EngineError
		if errors.As(err, &engineErr) {
			diag = engineErr.Diagnostic
		}
		h.fail(w, r, log, apperr.New(apperr.KindEngine, "synthesis engine error: "+diag, err))
		return
	}

	outcome, err := h.strategy.Deliver(ctx, w, a)
	if err != nil {
		if errors.Is(err, delivery.ErrResponseStarted) {
			log.Error("delivery interrupted", "strategy", h.strategy.Name(), "bytes", outcome.Bytes, "error", err)
			captureError(r, err, "delivery interrupted")
			return
		}
		h.fail(w, r, log, apperr.As(err))
		return
	}

	log.Info("synthesis delivered",
		"strategy", h.strategy.Name(),
		"outcome", outcome.Kind,
		"bytes", outcome.Bytes,
		"remote_id", outcome.RemoteID,
	)
}

// decodeBody reads exactly one JSON value; anything after it but whitespace
// is rejected.
func decodeBody(body io.Reader, v interface{}) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// fail logs e, reports server-side failures to Sentry and writes the
// caller-facing message.
func (h *SynthesizeHandler) fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, e *apperr.Error) {
	status := e.Status()
	if status >= http.StatusInternalServerError {
		log.Error("synthesis request failed", "kind", e.Kind.String(), "error", e)
		captureError(r, e, e.Kind.String())
	} else {
		log.Info("synthesis request rejected", "kind", e.Kind.String(), "error", e)
	}
	writeError(w, status, e.Message)
}

// captureError sends an error to Sentry with request context. Without
// sentry.Init it is a no-op.
func captureError(r *http.Request, err error, kind string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(r)
		scope.SetTag("kind", kind)
		sentry.CaptureException(err)
	})
}
