package policies

import (
	"context"
	"io"
)

// PhotoStorage stores an uploaded image and returns its public URL.
type PhotoStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}
