package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalUploader writes files below Root and serves them from BaseURL + "/uploads"
type LocalUploader struct {
	Root    string
	BaseURL string
}

func NewLocalUploader(root, baseURL string) *LocalUploader {
	return &LocalUploader{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (u *LocalUploader) UploadFile(ctx context.Context, bucket, objectPath string, file File) (string, error) {
	fail := func(err error) (string, error) {
		return "", &UploadError{Bucket: bucket, Path: objectPath, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	root := filepath.Clean(u.Root)
	dst := filepath.Clean(filepath.Join(root, bucket, filepath.FromSlash(objectPath)))
	if !strings.HasPrefix(dst, root+string(os.PathSeparator)) {
		return fail(errors.New("path escapes upload root"))
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fail(err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fail(err)
	}
	if _, err := io.Copy(out, file.Reader); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return fail(err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return fail(err)
	}

	return u.BaseURL + "/uploads/" + bucket + "/" + strings.TrimLeft(objectPath, "/"), nil
}
