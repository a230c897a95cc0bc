package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const gridFSBucketName = "images"

// GridFSStorage keeps images in the Mongo database itself. URLs point at the
// API's image route, which streams them back through Open.
type GridFSStorage struct {
	db      *mongo.Database
	prefix  string
	baseURL string
}

func NewGridFSStorage(db *mongo.Database, prefix, publicBaseURL string) *GridFSStorage {
	return &GridFSStorage{
		db:      db,
		prefix:  prefix,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (s *GridFSStorage) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(gridFSBucketName))
	if err != nil {
		return nil, err
	}
	if dl, ok := ctx.Deadline(); ok {
		if err := b.SetWriteDeadline(dl); err != nil {
			return nil, err
		}
		if err := b.SetReadDeadline(dl); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (s *GridFSStorage) Upload(ctx context.Context, data []byte, key, mimeType string) (string, error) {
	if !validKey(key) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	b, err := s.bucket(ctx)
	if err != nil {
		return "", err
	}

	name := objectName(s.prefix, key)
	opts := options.GridFSUpload().SetMetadata(bson.M{
		"contentType": mimeType,
		"uploadedAt":  time.Now().UTC(),
	})
	if _, err := b.UploadFromStream(name, bytes.NewReader(data), opts); err != nil {
		return "", fmt.Errorf("gridfs upload %s: %w", name, err)
	}
	return s.baseURL + "/api/v1/images/" + key, nil
}

func (s *GridFSStorage) Open(ctx context.Context, key string) (*Object, error) {
	if !validKey(key) {
		return nil, ErrNotFound
	}
	b, err := s.bucket(ctx)
	if err != nil {
		return nil, err
	}

	stream, err := b.OpenDownloadStreamByName(objectName(s.prefix, key))
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	obj := &Object{Body: stream, ContentType: "application/octet-stream"}
	if f := stream.GetFile(); f != nil {
		obj.Size = f.Length
		var meta struct {
			ContentType string `bson:"contentType"`
		}
		if len(f.Metadata) > 0 && bson.Unmarshal(f.Metadata, &meta) == nil && meta.ContentType != "" {
			obj.ContentType = meta.ContentType
		}
	}
	return obj, nil
}
