package engine

import "context"

// ProgressStore is the keyed string store snapshots persist to. Implementations
// must tolerate concurrent use across engine instances; a key is only ever
// touched by the one engine that owns the assessment.
type ProgressStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
