package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Delivery modes.
const (
	DeliveryStream = "stream"
	DeliveryUpload = "upload"
)

// Engine backends.
const (
	BackendPiper  = "piper"
	BackendOpenAI = "openai"
)

// Storage backends used by the upload delivery mode.
const (
	StorageDrive    = "drive"
	StorageSupabase = "supabase"
	StorageNATS     = "nats"
)

type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	TTS      TTSConfig
	Delivery DeliveryConfig
	Storage  StorageConfig
	Sentry   SentryConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host        string   `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port        int      `env:"SERVER_PORT" envDefault:"5000"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

type AuthConfig struct {
	APIKey string `env:"VOICE_API_KEY"`
}

type TTSConfig struct {
	Backend       string        `env:"TTS_BACKEND" envDefault:"piper"`
	ModelPath     string        `env:"VOICE_MODEL_PATH" envDefault:"voices/en_US-amy-medium.onnx"`
	PiperBinPath  string        `env:"TTS_PIPER_BIN" envDefault:"piper"`
	OpenAIKey     string        `env:"TTS_OPENAI_API_KEY"`
	OpenAIBaseURL string        `env:"TTS_OPENAI_BASE_URL"`
	OpenAIModel   string        `env:"TTS_OPENAI_MODEL" envDefault:"tts-1"`
	OpenAIVoice   string        `env:"TTS_OPENAI_VOICE" envDefault:"alloy"`
	Timeout       time.Duration `env:"TTS_TIMEOUT" envDefault:"0s"`
	MaxTextLength int           `env:"TTS_MAX_TEXT_LENGTH" envDefault:"0"`
	TempDir       string        `env:"TTS_TEMP_DIR"`
}

type DeliveryConfig struct {
	Mode     string `env:"DELIVERY_MODE" envDefault:"stream"`
	Filename string `env:"DELIVERY_FILENAME" envDefault:"output.wav"`
}

type StorageConfig struct {
	Backend       string        `env:"STORAGE_BACKEND" envDefault:"drive"`
	UploadTimeout time.Duration `env:"UPLOAD_TIMEOUT" envDefault:"0s"`
	Drive         DriveConfig
	Supabase      SupabaseConfig
	NATS          NATSConfig
}

type DriveConfig struct {
	FolderID    string `env:"GOOGLE_DRIVE_FOLDER_ID"`
	Credentials string `env:"GOOGLE_APPLICATION_CREDENTIALS"` // inline JSON or a file path
	Scope       string `env:"GOOGLE_DRIVE_SCOPE" envDefault:"https://www.googleapis.com/auth/drive.file"`
}

type SupabaseConfig struct {
	URL    string `env:"SUPABASE_URL"`
	Key    string `env:"SUPABASE_SERVICE_KEY"`
	Bucket string `env:"STORAGE_BUCKET" envDefault:"audio"`
}

type NATSConfig struct {
	URL    string `env:"NATS_URL" envDefault:"nats://127.0.0.1:4222"`
	Bucket string `env:"NATS_OBJECT_BUCKET" envDefault:"TTS_AUDIO"`
}

type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFrom reads the configuration from the given variables only.
func LoadFrom(environ map[string]string) (*Config, error) {
	return load(env.Options{Environment: environ})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Route returns the synthesis endpoint for the configured delivery mode.
func (c *Config) Route() string {
	if c.Delivery.Mode == DeliveryUpload {
		return "/api/synthesize"
	}
	return "/synthesize"
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate reports every missing or unsupported setting at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Auth.APIKey == "" {
		problems = append(problems, "VOICE_API_KEY is not set")
	}
	if c.TTS.ModelPath == "" {
		problems = append(problems, "VOICE_MODEL_PATH is empty")
	}
	if c.TTS.MaxTextLength < 0 {
		problems = append(problems, "TTS_MAX_TEXT_LENGTH must not be negative")
	}

	switch c.TTS.Backend {
	case BackendPiper:
		if c.TTS.PiperBinPath == "" {
			problems = append(problems, "TTS_PIPER_BIN is empty")
		}
	case BackendOpenAI:
		if c.TTS.OpenAIKey == "" {
			problems = append(problems, "TTS_OPENAI_API_KEY is not set")
		}
	default:
		problems = append(problems, fmt.Sprintf("unsupported TTS_BACKEND %q", c.TTS.Backend))
	}

	switch c.Delivery.Mode {
	case DeliveryStream:
	case DeliveryUpload:
		problems = append(problems, c.Storage.missing()...)
	default:
		problems = append(problems, fmt.Sprintf("unsupported DELIVERY_MODE %q", c.Delivery.Mode))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (s StorageConfig) missing() []string {
	var problems []string
	switch s.Backend {
	case StorageDrive:
		if s.Drive.FolderID == "" {
			problems = append(problems, "GOOGLE_DRIVE_FOLDER_ID is not set")
		}
		if s.Drive.Credentials == "" {
			problems = append(problems, "GOOGLE_APPLICATION_CREDENTIALS is not set")
		}
	case StorageSupabase:
		if s.Supabase.URL == "" {
			problems = append(problems, "SUPABASE_URL is not set")
		}
		if s.Supabase.Key == "" {
			problems = append(problems, "SUPABASE_SERVICE_KEY is not set")
		}
	case StorageNATS:
		if s.NATS.URL == "" {
			problems = append(problems, "NATS_URL is not set")
		}
		if s.NATS.Bucket == "" {
			problems = append(problems, "NATS_OBJECT_BUCKET is not set")
		}
	default:
		problems = append(problems, fmt.Sprintf("unsupported STORAGE_BACKEND %q", s.Backend))
	}
	return problems
}
