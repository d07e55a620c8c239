// Package cache provides an explicit, caller-owned cache keyed by
// (resource, time bucket). Entries expire when the bucket rolls over.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Key identifies a cached resource within one time bucket.
type Key struct {
	Resource string
	Bucket   int64
}

// String renders the key as resource@bucket.
func (k Key) String() string { return fmt.Sprintf("%s@%d", k.Resource, k.Bucket) }

// KeyAt returns the key for resource in the ttl-sized bucket containing now.
func KeyAt(resource string, now time.Time, ttl time.Duration) Key {
	return Key{Resource: resource, Bucket: now.Truncate(ttl).Unix()}
}

// Store is a byte cache.
type Store interface {
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	Set(ctx context.Context, key Key, value []byte) error
	// Invalidate drops every bucket of the resource.
	Invalidate(ctx context.Context, resource string) error
	Close() error
}
