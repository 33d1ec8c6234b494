package storage

import "errors"

// Fixed keys owned by the application. Values are opaque JSON strings;
// (de)serialization belongs to the callers, never to the store.
const (
	KeyCollection = "media_items"
	KeySuggestion = "daily_suggestion"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("storage: key not found")

// KV is a string key/value store with no transactions and no schema.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
	Close() error
}
