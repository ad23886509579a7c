// Package storage uploads user files (invitation background images) and
// returns the public URL they are served from.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const BucketBackgrounds = "backgrounds"

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
	ErrEmptyFile       = errors.New("empty file")
)

// File is an upload ready to be stored
type File struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type Uploader interface {
	UploadFile(ctx context.Context, bucket, objectPath string, file File) (string, error)
}

// UploadError is a transport failure while storing a file
type UploadError struct {
	Bucket string
	Path   string
	Err    error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s/%s failed: %v", e.Bucket, e.Path, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

var allowedImageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ValidateImage checks extension and size of an image upload
func ValidateImage(f File, maxBytes int64) error {
	if f.Size == 0 {
		return ErrEmptyFile
	}
	if maxBytes > 0 && f.Size > maxBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, f.Size, maxBytes)
	}
	if _, ok := allowedImageTypes[strings.ToLower(filepath.Ext(f.Name))]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(f.Name))
	}
	return nil
}

// ContentTypeFor guesses the MIME type from the file name
func ContentTypeFor(name string) string {
	if ct, ok := allowedImageTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ObjectPath returns "<prefix>/<uuid><ext>" for an uploaded file name
func ObjectPath(prefix, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return path.Join(prefix, uuid.New().String()+ext)
}
