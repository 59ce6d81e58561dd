package storage

import "context"

// Store is the flat string key-value port every component talks to.
// All shared state lives behind it; there is no in-memory authoritative
// copy between requests. A missing key reads as the empty string, which
// matches how callers treat unset values. Read-modify-write cycles are
// not atomic across concurrent requests (last write wins).
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
