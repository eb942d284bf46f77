package core

import "context"

// Cache stores JSON-serialisable values under string keys.
// Implementations expire entries on their own; a miss is (false, nil).
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
}
