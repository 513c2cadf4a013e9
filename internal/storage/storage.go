// Package storage uploads finished audio artifacts to remote object storage.
package storage

import "context"

// MIMETypeWAV is the content type of every artifact this service produces.
const MIMETypeWAV = "audio/wav"

// Object identifies an uploaded file in the remote store.
type Object struct {
	ID  string
	URL string
}

// Uploader copies a local file to remote storage under name.
type Uploader interface {
	Upload(ctx context.Context, localPath, name, mimeType string) (Object, error)
	Name() string
}
