// Package storage holds uploaded images: the temporary on-disk artifact
// received from a client and the object store it is forwarded to.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Upload is a client file spooled to a temporary file. Whoever receives an
// Upload owns it and must call Discard on every exit path; Discard is
// idempotent.
type Upload struct {
	path        string
	filename    string
	contentType string
	size        int64

	once sync.Once
	err  error
}

// Spool copies r into a new temporary file under dir.
func Spool(dir, filename, contentType string, r io.Reader) (*Upload, error) {
	f, err := os.CreateTemp(dir, "upload-*"+safeExt(filename))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("spool upload: %w", err)
	}

	return &Upload{path: f.Name(), filename: filename, contentType: contentType, size: n}, nil
}

func (u *Upload) Path() string        { return u.path }
func (u *Upload) Filename() string    { return u.filename }
func (u *Upload) ContentType() string { return u.contentType }
func (u *Upload) Size() int64         { return u.size }

// Ext is the lower-cased extension of the original filename.
func (u *Upload) Ext() string { return safeExt(u.filename) }

// Open opens the spooled file for reading.
func (u *Upload) Open() (*os.File, error) {
	return os.Open(u.path)
}

// Discard removes the temporary file. A nil Upload is a no-op.
func (u *Upload) Discard() error {
	if u == nil {
		return nil
	}
	u.once.Do(func() {
		if err := os.Remove(u.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			u.err = err
		}
	})
	return u.err
}

func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	for _, r := range strings.TrimPrefix(ext, ".") {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
