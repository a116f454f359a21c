// internal/app/system/blobstore/blobstore.go
package blobstore

import (
	"context"
	"errors"
	"io"
	"time"
)

// PutOptions describes an object being stored.
type PutOptions struct {
	ContentType string
}

// PresignOptions controls a temporary read URL.
type PresignOptions struct {
	Expires time.Duration
}

// Store is an object store that persists blobs by key and hands out
// expiring URLs for them. Keys are never URLs.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts *PutOptions) error
	PresignedURL(ctx context.Context, key string, opts *PresignOptions) (string, error)
}

// ErrInvalidKey is returned for keys that are empty or escape the store root.
var ErrInvalidKey = errors.New("blobstore: invalid key")

// DefaultExpiry is used when PresignOptions is nil or has no expiry.
const DefaultExpiry = time.Hour

func expiryOf(opts *PresignOptions) time.Duration {
	if opts == nil || opts.Expires <= 0 {
		return DefaultExpiry
	}
	return opts.Expires
}

// Signer adapts a Store to models.URLSigner.
type Signer struct {
	Store Store
}

// SignedURL presigns key for expiry.
func (s Signer) SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return s.Store.PresignedURL(ctx, key, &PresignOptions{Expires: expiry})
}
