package storage

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/inkpress/blog-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(baseURL string) *S3Storage {
	return NewS3Storage(context.Background(), config.S3Config{
		Region:          "ap-northeast-1",
		Bucket:          "blog-media",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
		BaseURL:         baseURL,
	})
}

func TestS3Storage_PresignUpload(t *testing.T) {
	s := newTestStorage("")

	upload, err := s.PresignUpload(context.Background(), "media/1/abc.png", "image/png", 2048)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, upload.Method)
	assert.Equal(t, "media/1/abc.png", upload.Key)
	assert.Equal(t, "image/png", upload.Headers["Content-Type"])
	assert.Equal(t, "https://blog-media.s3.ap-northeast-1.amazonaws.com/media/1/abc.png", upload.FileURL)

	u, err := url.Parse(upload.UploadURL)
	require.NoError(t, err)
	assert.True(t, strings.Contains(u.Host, "blog-media"))
	assert.True(t, strings.HasSuffix(u.Path, "/media/1/abc.png"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
}

func TestS3Storage_FileURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/media/2/x.jpg", newTestStorage("https://cdn.example.com").FileURL("media/2/x.jpg"))
}
