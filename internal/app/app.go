// Package app builds the service components from a validated Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/nats-io/nats.go"

	"github.com/nikhilbhutani/ttsbridge/internal/api"
	"github.com/nikhilbhutani/ttsbridge/internal/api/handlers"
	"github.com/nikhilbhutani/ttsbridge/internal/artifact"
	"github.com/nikhilbhutani/ttsbridge/internal/config"
	"github.com/nikhilbhutani/ttsbridge/internal/delivery"
	"github.com/nikhilbhutani/ttsbridge/internal/storage"
	"github.com/nikhilbhutani/ttsbridge/internal/tts"
)

// NewEngine returns the configured engine and the model id passed to it on
// every call. For the openai backend the model id is the voice name.
func NewEngine(cfg *config.Config, logger *slog.Logger) (tts.Engine, string, error) {
	switch cfg.TTS.Backend {
	case config.BackendPiper:
		return tts.NewPiperEngine(tts.PiperConfig{
			BinPath: cfg.TTS.PiperBinPath,
			Timeout: cfg.TTS.Timeout,
		}, logger), cfg.TTS.ModelPath, nil
	case config.BackendOpenAI:
		return tts.NewOpenAIEngine(tts.OpenAIConfig{
			APIKey:  cfg.TTS.OpenAIKey,
			BaseURL: cfg.TTS.OpenAIBaseURL,
			Model:   cfg.TTS.OpenAIModel,
			Timeout: cfg.TTS.Timeout,
		}, logger), cfg.TTS.OpenAIVoice, nil
	default:
		return nil, "", fmt.Errorf("unsupported TTS_BACKEND %q", cfg.TTS.Backend)
	}
}

// NewUploader connects the configured storage backend. The returned cleanup
// func is never nil.
func NewUploader(ctx context.Context, cfg *config.Config) (storage.Uploader, func(), error) {
	noop := func() {}
	sc := cfg.Storage

	switch sc.Backend {
	case config.StorageDrive:
		creds, err := storage.DriveCredentials(ctx, sc.Drive.Credentials, sc.Drive.Scope)
		if err != nil {
			return nil, noop, err
		}
		u, err := storage.NewDriveUploader(ctx, sc.Drive.FolderID, creds)
		if err != nil {
			return nil, noop, err
		}
		return u, noop, nil
	case config.StorageSupabase:
		return storage.NewSupabaseStorage(sc.Supabase.URL, sc.Supabase.Key, sc.Supabase.Bucket), noop, nil
	case config.StorageNATS:
		nc, err := nats.Connect(sc.NATS.URL, nats.Name("ttsbridge"))
		if err != nil {
			return nil, noop, fmt.Errorf("connect to nats: %w", err)
		}
		store, err := storage.NewNATSObjectStore(nc, sc.NATS.Bucket)
		if err != nil {
			nc.Close()
			return nil, noop, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unsupported STORAGE_BACKEND %q", sc.Backend)
	}
}

// NewStrategy selects the delivery strategy. In upload mode a nil uploader
// still yields a strategy; its Ready check then fails every request with a
// misconfiguration error.
func NewStrategy(cfg *config.Config, uploader storage.Uploader) delivery.Strategy {
	if cfg.Delivery.Mode == config.DeliveryUpload {
		return delivery.NewUpload(uploader, cfg.Storage.UploadTimeout)
	}
	return delivery.NewStream(cfg.Delivery.Filename)
}

// Checks are the readiness probes served on /readyz.
func Checks(cfg *config.Config, files *artifact.Manager, strategy delivery.Strategy) map[string]handlers.Check {
	checks := map[string]handlers.Check{
		"delivery": func(context.Context) error { return strategy.Ready() },
		"temp_dir": func(context.Context) error {
			info, err := os.Stat(files.Dir())
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return errors.New(files.Dir() + " is not a directory")
			}
			return nil
		},
	}
	if cfg.TTS.Backend == config.BackendPiper {
		checks["engine"] = func(context.Context) error {
			_, err := exec.LookPath(cfg.TTS.PiperBinPath)
			return err
		}
		checks["model"] = func(context.Context) error {
			_, err := os.Stat(cfg.TTS.ModelPath)
			return err
		}
	}
	return checks
}

// Server wires every component behind the HTTP router. The cleanup func
// releases storage connections and is never nil.
func Server(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*api.Router, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}
	engine, modelID, err := NewEngine(cfg, logger)
	if err != nil {
		return nil, func() {}, err
	}

	var (
		uploader storage.Uploader
		cleanup  = func() {}
	)
	if cfg.Delivery.Mode == config.DeliveryUpload {
		uploader, cleanup, err = NewUploader(ctx, cfg)
		if err != nil {
			// Requests keep failing the per-request configuration check
			// until the process is restarted with working storage settings.
			logger.Error("storage uploader unavailable", "backend", cfg.Storage.Backend, "error", err)
			uploader = nil
		}
	}

	files := artifact.NewManager(cfg.TTS.TempDir, logger)
	strategy := NewStrategy(cfg, uploader)

	router := api.NewRouter(api.Deps{
		Engine:   engine,
		Files:    files,
		Strategy: strategy,
		Synthesize: handlers.SynthesizeConfig{
			ModelID:       modelID,
			MaxTextLength: cfg.TTS.MaxTextLength,
		},
		Route:       cfg.Route(),
		APIKey:      cfg.Auth.APIKey,
		CORSOrigins: cfg.Server.CORSOrigins,
		Checks:      Checks(cfg, files, strategy),
		Logger:      logger,
	})

	return router, cleanup, nil
}
