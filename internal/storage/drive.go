package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const driveChunkSize = 2 * 1024 * 1024

// DriveUploader uploads files into a single Google Drive folder.
type DriveUploader struct {
	srv      *gdrive.Service
	folderID string
}

// DriveCredentials builds a client option from service-account credentials.
// credentials is either the JSON document itself or a path to a file holding it.
func DriveCredentials(ctx context.Context, credentials, scope string) (option.ClientOption, error) {
	data := []byte(credentials)
	if !strings.HasPrefix(strings.TrimSpace(credentials), "{") {
		var err error
		data, err = os.ReadFile(credentials)
		if err != nil {
			return nil, fmt.Errorf("read drive credentials: %w", err)
		}
	}

	creds, err := google.CredentialsFromJSON(ctx, data, scope)
	if err != nil {
		return nil, fmt.Errorf("parse drive credentials: %w", err)
	}
	return option.WithCredentials(creds), nil
}

// NewDriveUploader creates a Drive client. opts usually carries the result of
// DriveCredentials.
func NewDriveUploader(ctx context.Context, folderID string, opts ...option.ClientOption) (*DriveUploader, error) {
	srv, err := gdrive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &DriveUploader{srv: srv, folderID: folderID}, nil
}

func (u *DriveUploader) Name() string { return "drive" }

// Upload creates a new file in the configured folder and returns its id and
// web view link.
func (u *DriveUploader) Upload(ctx context.Context, localPath, name, mimeType string) (Object, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return Object{}, fmt.Errorf("open upload source: %w", err)
	}
	defer f.Close()

	file := &gdrive.File{
		Name:     name,
		MimeType: mimeType,
	}
	if u.folderID != "" {
		file.Parents = []string{u.folderID}
	}

	created, err := u.srv.Files.Create(file).
		Media(f, googleapi.ContentType(mimeType), googleapi.ChunkSize(driveChunkSize)).
		Fields("id", "webViewLink").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return Object{}, fmt.Errorf("drive upload failed (%d): %s", gerr.Code, gerr.Message)
		}
		return Object{}, fmt.Errorf("drive upload failed: %w", err)
	}

	return Object{ID: created.Id, URL: created.WebViewLink}, nil
}
