package metadata

import "context"

// Repository is the local key-value store surviving restarts. It holds the
// cached auth data for offline login, legacy pre-normalization JSON blobs
// and the migration marker.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
