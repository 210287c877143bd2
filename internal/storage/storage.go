package storage

import (
	"context"
	"time"
)

// DefaultPresignedURLExpiry applies when no expiry is configured.
const DefaultPresignedURLExpiry = 15 * time.Minute

// PhotoStorage keeps user photos outside the database. Clients upload and
// download directly through presigned URLs; the API only stores object keys.
type PhotoStorage interface {
	// PresignUpload returns a URL accepting one PUT of the given content type.
	PresignUpload(ctx context.Context, objectKey, contentType string) (string, error)
	// PresignDownload returns a URL serving the object with GET.
	PresignDownload(ctx context.Context, objectKey string) (string, error)
	// Exists reports whether an object has been uploaded under the key.
	Exists(ctx context.Context, objectKey string) (bool, error)
	Delete(ctx context.Context, objectKey string) error
}
