package storage

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	assert.Equal(t, "post-images/a.png", objectName("post-images", "a.png"))
	assert.Equal(t, "post-images/a.png", objectName("/post-images/", "/a.png"))
	assert.Equal(t, "a.png", objectName("", "a.png"))
}

func TestValidKey(t *testing.T) {
	assert.True(t, validKey("abc.png"))
	assert.False(t, validKey(""))
	assert.False(t, validKey("../secrets"))
	assert.False(t, validKey("/etc/passwd"))
}

func TestGCSObjectURL(t *testing.T) {
	s := &GCSStorage{bucket: "marlang.appspot.com"}
	assert.Equal(t,
		"https://firebasestorage.googleapis.com/v0/b/marlang.appspot.com/o/post-images%2Fa.png?alt=media&token=tok",
		s.objectURL("post-images/a.png", "tok"))

	s.baseURL = "https://cdn.example.com"
	assert.Equal(t, "https://cdn.example.com/post-images/a.png", s.objectURL("post-images/a.png", "tok"))
}

func TestMemoryStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage("http://localhost:8080/")

	url, err := s.Upload(ctx, []byte("png-bytes"), "k1.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1/images/k1.png", url)

	obj, err := s.Open(ctx, "k1.png")
	require.NoError(t, err)
	defer obj.Body.Close()
	body, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(body))
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, int64(9), obj.Size)

	_, err = s.Open(ctx, "missing.png")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Upload(ctx, []byte("x"), "../escape.png", "image/png")
	assert.Error(t, err)
}
