// Package storage abstracts where site files are published.
package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"path"
	"strings"
)

// ErrInvalidKey is returned for keys that are absolute or escape the store root.
var ErrInvalidKey = errors.New("storage: invalid key")

// Storage saves and deletes files addressed by slash-separated keys.
// The local filesystem is the only implementation; a bucket-backed one can
// satisfy the same interface.
type Storage interface {
	// Save writes data under key and returns the URL path it is served at.
	// key is slash-separated, e.g. "assets/app.3f9a.js".
	Save(ctx context.Context, key string, data io.Reader, mode fs.FileMode) (url string, err error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// CleanKey validates key and returns its canonical form.
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return "", ErrInvalidKey
	}
	k := path.Clean(key)
	if k == "." || k == ".." || strings.HasPrefix(k, "../") {
		return "", ErrInvalidKey
	}
	return k, nil
}
