// Package upload stores profile photos on local disk.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/supportdesk/support-portal/internal/config"
)

// URLPrefix is the public path under which stored files are served.
const URLPrefix = "/uploads"

var (
	ErrTooLarge        = errors.New("file exceeds size limit")
	ErrUnsupportedType = errors.New("invalid file type: only JPEG, PNG and GIF are allowed")
)

var allowedTypes = []string{"image/jpeg", "image/png", "image/gif"}

// Stored describes a saved file.
type Stored struct {
	Name string
	URL  string
	Path string
}

// Store writes uploads into a single directory.
type Store struct {
	dir      string
	maxBytes int64
}

// NewStore creates the upload directory when missing.
func NewStore(cfg config.UploadConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: cfg.Dir, maxBytes: cfg.MaxBytes}, nil
}

// Dir returns the directory served under URLPrefix.
func (s *Store) Dir() string {
	return s.dir
}

// MaxBytes returns the per-file size limit.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// SavePhoto validates an uploaded image by content and writes it as
// photo-<uuid><ext>.
func (s *Store) SavePhoto(fh *multipart.FileHeader) (*Stored, error) {
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return nil, ErrTooLarge
	}
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, fmt.Errorf("detect upload type: %w", err)
	}
	if !mimetype.EqualsAny(mtype.String(), allowedTypes...) {
		return nil, ErrUnsupportedType
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	name := "photo-" + uuid.NewString() + mtype.Extension()
	path := filepath.Join(s.dir, name)
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}

	limit := s.maxBytes
	if limit <= 0 {
		limit = fh.Size
	}
	n, err := io.Copy(dst, io.LimitReader(src, limit+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > limit {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("write upload: %w", err)
	}

	return &Stored{Name: name, URL: URLPrefix + "/" + name, Path: path}, nil
}

// Remove deletes a stored file by name.
func (s *Store) Remove(name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
