package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrNotFound is returned by Open when no object is stored under key.
var ErrNotFound = errors.New("object not found")

// Object is an opened stored blob. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Reader serves stored images back, for backends that are not publicly
// reachable on their own.
type Reader interface {
	Open(ctx context.Context, key string) (*Object, error)
}

// objectName joins prefix and key and strips any leading slash.
func objectName(prefix, key string) string {
	key = strings.TrimLeft(key, "/")
	if prefix == "" {
		return key
	}
	return path.Join(strings.Trim(prefix, "/"), key)
}

// validKey rejects keys that escape the prefix.
func validKey(key string) bool {
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return false
	}
	return true
}
