package imagestore

import (
	"context"
	"io"
)

// ImageStore keeps uploaded receipt images addressed by an opaque key.
type ImageStore interface {
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (key string, err error)
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}
