package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// GCSStorage uploads to a Cloud Storage bucket (the Firebase Storage bucket in
// the default deployment).
//
// With a public base URL the object URL is baseURL/name. Otherwise a
// Firebase download URL is built from a per-object download token.
type GCSStorage struct {
	client  *gcs.Client
	bucket  string
	prefix  string
	baseURL string
}

func NewGCSStorage(ctx context.Context, bucket, prefix, publicBaseURL string) (*GCSStorage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage bucket is required for gcs driver")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &GCSStorage{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

func (s *GCSStorage) Upload(ctx context.Context, data []byte, key, mimeType string) (string, error) {
	if !validKey(key) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	name := objectName(s.prefix, key)
	token := uuid.NewString()

	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = mimeType
	w.CacheControl = "public, max-age=31536000"
	w.Metadata = map[string]string{"firebaseStorageDownloadTokens": token}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("gcs write %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs close %s: %w", name, err)
	}
	return s.objectURL(name, token), nil
}

func (s *GCSStorage) objectURL(name, token string) string {
	if s.baseURL != "" {
		return s.baseURL + "/" + name
	}
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		s.bucket, url.PathEscape(name), token)
}

func (s *GCSStorage) Open(ctx context.Context, key string) (*Object, error) {
	if !validKey(key) {
		return nil, ErrNotFound
	}
	r, err := s.client.Bucket(s.bucket).Object(objectName(s.prefix, key)).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &Object{Body: r, ContentType: r.Attrs.ContentType, Size: r.Attrs.Size}, nil
}

func (s *GCSStorage) Close() error {
	return s.client.Close()
}
