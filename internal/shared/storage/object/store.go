package object

import "context"

// ConfigStore fetches static configuration payloads (rulepacks, dialect
// tables) by key. Implementations must treat payloads as read-only data.
type ConfigStore interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}
