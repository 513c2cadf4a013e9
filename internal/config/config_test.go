package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/ttsbridge/internal/config"
)

func TestLoadFromDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFrom(map[string]string{"VOICE_API_KEY": "secret123"})
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5000", cfg.Addr())
	assert.Equal(t, "secret123", cfg.Auth.APIKey)
	assert.Equal(t, config.BackendPiper, cfg.TTS.Backend)
	assert.Equal(t, "piper", cfg.TTS.PiperBinPath)
	assert.Equal(t, "voices/en_US-amy-medium.onnx", cfg.TTS.ModelPath)
	assert.Zero(t, cfg.TTS.Timeout)
	assert.Zero(t, cfg.TTS.MaxTextLength)
	assert.Equal(t, config.DeliveryStream, cfg.Delivery.Mode)
	assert.Equal(t, "output.wav", cfg.Delivery.Filename)
	assert.Equal(t, "https://www.googleapis.com/auth/drive.file", cfg.Storage.Drive.Scope)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "/synthesize", cfg.Route())
	require.NoError(t, cfg.Validate())
}

func TestLoadFromOverrides(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFrom(map[string]string{
		"VOICE_API_KEY":          "k",
		"SERVER_PORT":            "8081",
		"TTS_TIMEOUT":            "45s",
		"TTS_MAX_TEXT_LENGTH":    "5000",
		"DELIVERY_MODE":          "upload",
		"STORAGE_BACKEND":        "nats",
		"NATS_URL":               "nats://nats:4222",
		"UPLOAD_TIMEOUT":         "2m",
		"CORS_ALLOWED_ORIGINS":   "https://a.example,https://b.example",
		"LOG_LEVEL":              "debug",
		"GOOGLE_DRIVE_FOLDER_ID": "ignored-for-nats",
	})
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.TTS.Timeout)
	assert.Equal(t, 5000, cfg.TTS.MaxTextLength)
	assert.Equal(t, 2*time.Minute, cfg.Storage.UploadTimeout)
	assert.Equal(t, "TTS_AUDIO", cfg.Storage.NATS.Bucket)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "/api/synthesize", cfg.Route())
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		env     map[string]string
		wantErr []string
	}{
		{
			name:    "missing api key",
			env:     map[string]string{},
			wantErr: []string{"VOICE_API_KEY"},
		},
		{
			name: "upload to drive without folder or credentials",
			env: map[string]string{
				"VOICE_API_KEY": "k",
				"DELIVERY_MODE": "upload",
			},
			wantErr: []string{"GOOGLE_DRIVE_FOLDER_ID", "GOOGLE_APPLICATION_CREDENTIALS"},
		},
		{
			name: "upload to supabase without url",
			env: map[string]string{
				"VOICE_API_KEY":        "k",
				"DELIVERY_MODE":        "upload",
				"STORAGE_BACKEND":      "supabase",
				"SUPABASE_SERVICE_KEY": "svc",
			},
			wantErr: []string{"SUPABASE_URL"},
		},
		{
			name: "openai backend without key",
			env: map[string]string{
				"VOICE_API_KEY": "k",
				"TTS_BACKEND":   "openai",
			},
			wantErr: []string{"TTS_OPENAI_API_KEY"},
		},
		{
			name: "unknown delivery mode",
			env: map[string]string{
				"VOICE_API_KEY": "k",
				"DELIVERY_MODE": "email",
			},
			wantErr: []string{`unsupported DELIVERY_MODE "email"`},
		},
		{
			name: "negative text cap",
			env: map[string]string{
				"VOICE_API_KEY":       "k",
				"TTS_MAX_TEXT_LENGTH": "-1",
			},
			wantErr: []string{"TTS_MAX_TEXT_LENGTH"},
		},
		{
			name: "upload to drive fully configured",
			env: map[string]string{
				"VOICE_API_KEY":                  "k",
				"DELIVERY_MODE":                  "upload",
				"GOOGLE_DRIVE_FOLDER_ID":         "folder",
				"GOOGLE_APPLICATION_CREDENTIALS": "/etc/sa.json",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := config.LoadFrom(tt.env)
			require.NoError(t, err)

			err = cfg.Validate()
			if len(tt.wantErr) == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}
