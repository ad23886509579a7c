package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	fbstorage "firebase.google.com/go/v4/storage"
)

// FirebaseUploader stores files in a Firebase Storage bucket. The logical
// bucket becomes the first path segment inside the configured GCS bucket.
type FirebaseUploader struct {
	client *fbstorage.Client
	bucket string
}

func NewFirebaseUploader(client *fbstorage.Client, bucket string) *FirebaseUploader {
	return &FirebaseUploader{client: client, bucket: bucket}
}

func (u *FirebaseUploader) UploadFile(ctx context.Context, bucket, objectPath string, file File) (string, error) {
	name := bucket + "/" + objectPath
	fail := func(err error) (string, error) {
		return "", &UploadError{Bucket: bucket, Path: objectPath, Err: err}
	}

	handle, err := u.client.Bucket(u.bucket)
	if err != nil {
		return fail(err)
	}

	w := handle.Object(name).NewWriter(ctx)
	w.ContentType = file.ContentType
	if w.ContentType == "" {
		w.ContentType = ContentTypeFor(file.Name)
	}
	w.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(w, file.Reader); err != nil {
		_ = w.Close()
		return fail(err)
	}
	if err := w.Close(); err != nil {
		return fail(err)
	}

	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media",
		u.bucket, url.PathEscape(name)), nil
}
