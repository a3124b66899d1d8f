package staging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"sheet-reader/api/internal/logging"
)

var (
	ErrTooLarge = errors.New("file exceeds size limit")
	ErrEmpty    = errors.New("file is empty")
)

// Stager writes uploads to a scratch directory under collision-free names.
type Stager struct {
	dir      string
	maxBytes int64
}

func New(dir string, maxBytes int64) (*Stager, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Stager{dir: dir, maxBytes: maxBytes}, nil
}

func (s *Stager) Dir() string      { return s.dir }
func (s *Stager) MaxBytes() int64 { return s.maxBytes }

// File is one staged upload. Remove must be called on every exit path.
type File struct {
	Path         string
	OriginalName string
	Size         int64
}

// Stage copies at most maxBytes from r to a new file. On any error the
// partial file is already gone when Stage returns.
func (s *Stager) Stage(r io.Reader, originalName string) (*File, error) {
	name := uuid.NewString() + safeExt(originalName)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create staged file: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	closeErr := f.Close()

	switch {
	case err != nil:
		err = fmt.Errorf("write staged file: %w", err)
	case closeErr != nil:
		err = fmt.Errorf("close staged file: %w", closeErr)
	case n > s.maxBytes:
		err = ErrTooLarge
	case n == 0:
		err = ErrEmpty
	}
	if err != nil {
		removeQuietly(path)
		return nil, err
	}
	return &File{Path: path, OriginalName: originalName, Size: n}, nil
}

// Remove deletes the staged file. A file that is already gone is not an error.
func (f *File) Remove() error {
	if f == nil {
		return nil
	}
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn("staged file cleanup failed", "path", path, "error", err)
	}
}

// safeExt keeps a short alphanumeric extension so MIME fallback by suffix still works.
func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
