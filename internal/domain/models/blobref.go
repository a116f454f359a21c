// internal/domain/models/blobref.go
package models

import (
	"context"
	"errors"
	"time"
)

// BlobRef is the storage key of an uploaded image. Only the key is
// persisted; viewable URLs are signed on demand and expire.
type BlobRef string

// IsZero reports whether no blob is referenced.
func (b BlobRef) IsZero() bool { return b == "" }

// Key returns the storage key.
func (b BlobRef) Key() string { return string(b) }

// URLSigner produces a temporary URL for a stored key.
type URLSigner interface {
	SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

var (
	// ErrNoBlob is returned when resolving an empty reference.
	ErrNoBlob = errors.New("no blob referenced")
	// ErrUnsignedURL is returned when a signer hands back the raw key.
	ErrUnsignedURL = errors.New("signer returned the storage key as a URL")
)

// Resolve returns a viewable URL for b valid for expiry.
func (b BlobRef) Resolve(ctx context.Context, s URLSigner, expiry time.Duration) (string, error) {
	if b.IsZero() {
		return "", ErrNoBlob
	}
	url, err := s.SignedURL(ctx, b.Key(), expiry)
	if err != nil {
		return "", err
	}
	if url == "" || url == b.Key() {
		return "", ErrUnsignedURL
	}
	return url, nil
}
