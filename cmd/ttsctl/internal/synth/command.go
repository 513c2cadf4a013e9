package synth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/ttsbridge/internal/app"
	"github.com/nikhilbhutani/ttsbridge/internal/artifact"
	"github.com/nikhilbhutani/ttsbridge/internal/config"
	"github.com/nikhilbhutani/ttsbridge/internal/tts"
)

func NewSynthCommand() *cobra.Command {
	var (
		output  string
		model   string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:     "synth <text>",
		Short:   "Run the synthesis engine locally without the HTTP server",
		Example: `TTS_PIPER_BIN=/opt/piper/piper ttsctl synth "hello world" -o hello.wav`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			engine, modelID, err := app.NewEngine(cfg, logger)
			if err != nil {
				return err
			}
			if model != "" {
				modelID = model
			}

			files := artifact.NewManager(cfg.TTS.TempDir, logger)
			n, err := synthesize(cmd.Context(), engine, files, args[0], modelID, output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", n, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "output.wav", "Output file path (.wav)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model id (default $VOICE_MODEL_PATH or $TTS_OPENAI_VOICE)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	return cmd
}

// synthesize renders text into a temporary artifact and copies it to output.
// The artifact is released on every path.
func synthesize(ctx context.Context, engine tts.Engine, files *artifact.Manager, text, modelID, output string) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if text == "" {
		return 0, fmt.Errorf("text must not be empty")
	}

	a, err := files.Allocate()
	if err != nil {
		return 0, err
	}
	defer files.Release(a.Path)

	if err := engine.Synthesize(ctx, text, modelID, a.Path); err != nil {
		return 0, err
	}

	src, err := os.Open(a.Path)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	dst, err := os.Create(output)
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("write output: %w", err)
	}
	return n, nil
}
