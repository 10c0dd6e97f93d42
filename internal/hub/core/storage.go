package core

import (
	"context"
	"time"
)

// ArtifactResolver turns a stored artifact's object key into a URL a device
// can download from, valid for the given expiry.
type ArtifactResolver interface {
	ResolveURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}
