package say

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const defaultURL = "http://localhost:5000"

type options struct {
	url     string
	token   string
	output  string
	upload  bool
	timeout time.Duration
}

func NewSayCommand() *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:     "say <text>",
		Short:   "Synthesize text through a running bridge",
		Example: `ttsctl say "hello world" --output hello.wav`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.token == "" {
				opts.token = os.Getenv("VOICE_API_KEY")
			}
			return run(cmd.Context(), cmd.OutOrStdout(), opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", defaultURL, "Base URL of the bridge")
	cmd.Flags().StringVar(&opts.token, "token", "", "Bearer token (default $VOICE_API_KEY)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "output.wav", "Where to write the WAV in stream mode")
	cmd.Flags().BoolVar(&opts.upload, "upload", false, "Call the upload endpoint and print the link")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Request timeout")

	return cmd
}

type uploadResult struct {
	FileID  string `json:"file_id"`
	FileURL string `json:"file_url"`
}

func run(ctx context.Context, out io.Writer, opts options, text string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	path := "/synthesize"
	if opts.upload {
		path = "/api/synthesize"
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(opts.url, "/")+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+opts.token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("call bridge: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	switch mediaType {
	case "audio/wav":
		return saveAudio(resp.Body, opts.output, out)
	case "application/json":
		var res uploadResult
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			return fmt.Errorf("decode upload response: %w", err)
		}
		fmt.Fprintf(out, "file_id:  %s\nfile_url: %s\n", res.FileID, res.FileURL)
		return nil
	default:
		return fmt.Errorf("unexpected content type %q", resp.Header.Get("Content-Type"))
	}
}

func saveAudio(r io.Reader, path string, out io.Writer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(out, "wrote %d bytes to %s\n", n, path)
	return nil
}

func responseError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return fmt.Errorf("bridge answered %d: %s", resp.StatusCode, payload.Error)
	}
	if len(data) == 0 {
		return errors.New("bridge answered " + resp.Status)
	}
	return fmt.Errorf("bridge answered %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
}
