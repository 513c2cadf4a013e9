package tts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig holds configuration for the OpenAI speech backend.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // default: "https://api.openai.com/v1"
	Model   string // default: "tts-1"
	Timeout time.Duration
}

// OpenAIEngine synthesizes speech through the OpenAI audio API. The model id
// passed to Synthesize selects the voice.
type OpenAIEngine struct {
	cfg    OpenAIConfig
	client *openai.Client
	logger *slog.Logger
}

// NewOpenAIEngine creates an OpenAIEngine with defaults applied.
func NewOpenAIEngine(cfg OpenAIConfig, logger *slog.Logger) *OpenAIEngine {
	if cfg.Model == "" {
		cfg.Model = string(openai.TTSModel1)
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIEngine{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
		logger: logger,
	}
}

func (o *OpenAIEngine) Name() string { return "openai-tts" }

func (o *OpenAIEngine) Synthesize(ctx context.Context, text, voice, outputPath string) error {
	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}

	o.logger.Info("invoking synthesis engine", "engine", o.Name(), "model", o.cfg.Model, "voice", voice, "output", outputPath)

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.cfg.Model),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		o.logger.Error("synthesis engine failed", "engine", o.Name(), "error", err)
		return &EngineError{Engine: o.Name(), Diagnostic: err.Error(), Err: err}
	}
	defer resp.Close()

	f, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return &EngineError{Engine: o.Name(), Diagnostic: "open output file", Err: err}
	}

	if _, err := io.Copy(f, resp); err != nil {
		_ = f.Close()
		return &EngineError{Engine: o.Name(), Diagnostic: fmt.Sprintf("write audio: %v", err), Err: err}
	}
	if err := f.Close(); err != nil {
		return &EngineError{Engine: o.Name(), Diagnostic: fmt.Sprintf("close output file: %v", err), Err: err}
	}

	return nil
}
