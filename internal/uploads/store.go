// Package uploads stores submission proof files on local disk under
// random storage names and hands back descriptors for later retrieval.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/taskhive/backend/internal/models"
)

// MaxFiles is the per-submission file cap.
const MaxFiles = 5

// maxFileSize caps a single uploaded file at 20 MB.
const maxFileSize = 20 * 1024 * 1024

// ErrFileTooLarge is returned when an uploaded file exceeds maxFileSize.
var ErrFileTooLarge = errors.New("file too large")

type Store struct {
	dir string
}

// NewStore creates the upload directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

// Save writes one multipart file to disk under a random storage name,
// preserving only a sanitized extension from the original name.
func (s *Store) Save(fh *multipart.FileHeader) (models.SubmissionFile, error) {
	if fh.Size > maxFileSize {
		return models.SubmissionFile{}, ErrFileTooLarge
	}
	src, err := fh.Open()
	if err != nil {
		return models.SubmissionFile{}, err
	}
	defer src.Close()

	storageName := uuid.New().String() + safeExt(fh.Filename)
	dstPath := filepath.Join(s.dir, storageName)
	dst, err := os.Create(dstPath)
	if err != nil {
		return models.SubmissionFile{}, err
	}
	defer dst.Close()

	n, err := io.Copy(dst, io.LimitReader(src, maxFileSize+1))
	if err != nil {
		os.Remove(dstPath)
		return models.SubmissionFile{}, err
	}
	// Size header lies sometimes; re-check what actually arrived.
	if n > maxFileSize {
		os.Remove(dstPath)
		return models.SubmissionFile{}, ErrFileTooLarge
	}

	return models.SubmissionFile{
		ID:          uuid.New(),
		DisplayName: filepath.Base(fh.Filename),
		StorageName: storageName,
		Path:        "/uploads/" + storageName,
	}, nil
}

// safeExt returns the lowercased extension of name if it is plain
// alphanumeric, otherwise nothing.
func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || len(ext) > 10 {
		return ""
	}
	for _, c := range ext[1:] {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return ext
}
