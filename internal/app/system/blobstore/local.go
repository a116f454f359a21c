// internal/app/system/blobstore/local.go
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
)

const tokenName = "blob"

// Local stores blobs on disk and issues signed, expiring tokens that the
// files handler exchanges for the file.
type Local struct {
	root    string
	urlBase string
	codec   *securecookie.SecureCookie
	now     func() time.Time
}

// blobToken is the signed payload of a local URL.
type blobToken struct {
	Key     string
	Expires int64 // unix seconds
}

// NewLocal stores files under root. URLs take the form urlBase/<token>.
// hashKey signs tokens and must be at least 32 bytes.
func NewLocal(root, urlBase string, hashKey []byte) (*Local, error) {
	if len(hashKey) < 32 {
		return nil, fmt.Errorf("blobstore: local signing key must be at least 32 bytes")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	// Expiry lives in the payload, so the codec's own age check is off.
	codec := securecookie.New(hashKey, nil).MaxAge(0)
	return &Local{
		root:    abs,
		urlBase: strings.TrimRight(urlBase, "/"),
		codec:   codec,
		now:     time.Now,
	}, nil
}

// GetFullPath maps key to a path under root, rejecting keys that escape it.
func (l *Local) GetFullPath(key string) (string, error) {
	key = strings.TrimLeft(filepath.ToSlash(key), "/")
	if key == "" {
		return "", ErrInvalidKey
	}
	full := filepath.Join(l.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(l.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return full, nil
}

// Put writes r to key, replacing any existing file.
func (l *Local) Put(_ context.Context, key string, r io.Reader, _ *PutOptions) error {
	full, err := l.GetFullPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), full)
}

// PresignedURL returns urlBase/<token>, where token names key and expires.
func (l *Local) PresignedURL(_ context.Context, key string, opts *PresignOptions) (string, error) {
	if _, err := l.GetFullPath(key); err != nil {
		return "", err
	}
	tok := blobToken{Key: key, Expires: l.now().Add(expiryOf(opts)).Unix()}
	encoded, err := l.codec.Encode(tokenName, tok)
	if err != nil {
		return "", err
	}
	return l.urlBase + "/" + encoded, nil
}

// ErrExpiredToken is returned for tokens that are malformed, forged or expired.
var ErrExpiredToken = errors.New("blobstore: invalid or expired token")

// Resolve verifies token and returns the path of the file it names.
func (l *Local) Resolve(token string) (string, error) {
	var tok blobToken
	if err := l.codec.Decode(tokenName, token, &tok); err != nil {
		return "", ErrExpiredToken
	}
	if l.now().Unix() > tok.Expires {
		return "", ErrExpiredToken
	}
	return l.GetFullPath(tok.Key)
}
