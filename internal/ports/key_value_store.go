package ports

import "context"

// KeyValueStore is the per-identity persisted state used by the assignment
// engine. Get returns ok=false when the key has never been written.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}
