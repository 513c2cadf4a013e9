package delivery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nikhilbhutani/ttsbridge/internal/artifact"
	"github.com/nikhilbhutani/ttsbridge/internal/storage"
)

// UploadResponse is the JSON body returned after a successful upload.
type UploadResponse struct {
	FileID  string `json:"file_id"`
	FileURL string `json:"file_url"`
}

// Upload pushes the artifact to remote storage and answers with its link.
type Upload struct {
	uploader storage.Uploader
	timeout  time.Duration
}

// NewUpload creates an upload strategy. A zero timeout means the upload is
// bounded only by the request context.
func NewUpload(uploader storage.Uploader, timeout time.Duration) *Upload {
	return &Upload{uploader: uploader, timeout: timeout}
}

func (u *Upload) Name() string { return "upload" }

func (u *Upload) Ready() error {
	if u.uploader == nil {
		return errors.New("storage uploader is not configured")
	}
	return nil
}

func (u *Upload) Deliver(ctx context.Context, w http.ResponseWriter, a artifact.Artifact) (Outcome, error) {
	if err := u.Ready(); err != nil {
		return Outcome{}, err
	}

	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	obj, err := u.uploader.Upload(ctx, a.Path, a.Name(), storage.MIMETypeWAV)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s upload: %w", u.uploader.Name(), err)
	}

	writeJSON(w, http.StatusOK, UploadResponse{FileID: obj.ID, FileURL: obj.URL})

	return Outcome{Kind: Uploaded, RemoteID: obj.ID, RemoteURL: obj.URL}, nil
}
