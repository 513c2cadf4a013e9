package storage

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/nats-io/nats.go"
)

// NATSObjectStore uploads files into a JetStream object store bucket.
type NATSObjectStore struct {
	conn   *nats.Conn
	bucket string
	store  nats.ObjectStore
}

// NewNATSObjectStore binds to bucket, creating it when it does not exist yet.
func NewNATSObjectStore(conn *nats.Conn, bucket string) (*NATSObjectStore, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	store, err := js.ObjectStore(bucket)
	if errors.Is(err, nats.ErrStreamNotFound) || errors.Is(err, nats.ErrBucketNotFound) {
		store, err = js.CreateObjectStore(&nats.ObjectStoreConfig{
			Bucket:      bucket,
			Description: "Synthesized audio artifacts.",
			Storage:     nats.FileStorage,
			Replicas:    1,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("object store bucket %q: %w", bucket, err)
	}

	return &NATSObjectStore{conn: conn, bucket: bucket, store: store}, nil
}

func (n *NATSObjectStore) Name() string { return "nats" }

// Upload stores the file under name. The returned ID is the object's NUID.
func (n *NATSObjectStore) Upload(ctx context.Context, localPath, name, mimeType string) (Object, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return Object{}, fmt.Errorf("open upload source: %w", err)
	}
	defer f.Close()

	info, err := n.store.Put(&nats.ObjectMeta{
		Name:    name,
		Headers: nats.Header{"Content-Type": []string{mimeType}},
	}, f, nats.Context(ctx))
	if err != nil {
		return Object{}, fmt.Errorf("put object %q to bucket %q: %w", name, n.bucket, err)
	}

	return Object{
		ID:  info.NUID,
		URL: fmt.Sprintf("nats://%s/%s", n.bucket, name),
	}, nil
}

// Close drains the underlying connection.
func (n *NATSObjectStore) Close() error {
	return n.conn.Drain()
}
