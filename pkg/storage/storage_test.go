package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	t.Run("save then open returns the same bytes", func(t *testing.T) {
		name := ObjectName(".PDF")
		assert.True(t, strings.HasSuffix(name, ".pdf"))

		ref, err := s.Save(ctx, name, strings.NewReader("%PDF-1.4 body"), 13, "application/pdf")
		require.NoError(t, err)

		rc, err := s.Open(ctx, ref)
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 body", string(data))
	})

	t.Run("existing names are not overwritten", func(t *testing.T) {
		_, err := s.Save(ctx, "dup.pdf", strings.NewReader("a"), 1, "")
		require.NoError(t, err)
		_, err = s.Save(ctx, "dup.pdf", strings.NewReader("b"), 1, "")
		assert.Error(t, err)
	})

	t.Run("missing objects report ErrNotFound", func(t *testing.T) {
		_, err := s.Open(ctx, "missing.pdf")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("path traversal is rejected", func(t *testing.T) {
		_, err := s.Save(ctx, "../escape.pdf", strings.NewReader("x"), 1, "")
		assert.ErrorIs(t, err, ErrInvalidName)
		_, err = s.Open(ctx, "a/b.pdf")
		assert.ErrorIs(t, err, ErrInvalidName)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		ref, err := s.Save(ctx, ObjectName(".docx"), strings.NewReader("PK"), 2, "")
		require.NoError(t, err)
		require.NoError(t, s.Delete(ctx, ref))
		require.NoError(t, s.Delete(ctx, ref))
		_, err = s.Open(ctx, ref)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestS3ConfigEndpoint(t *testing.T) {
	assert.Equal(t, "", S3Config{Provider: S3ProviderAWS}.endpoint())
	assert.Equal(t, "s3.eu-west-1.wasabisys.com", S3Config{Provider: S3ProviderWasabi, Region: "eu-west-1"}.endpoint())
	assert.Equal(t, "s3.ap-southeast-1.wasabisys.com", S3Config{Provider: S3ProviderWasabi, Region: "mars-1"}.endpoint())
	assert.Equal(t, "minio.local:9000", S3Config{Provider: S3ProviderAWS, Endpoint: "minio.local:9000"}.endpoint())
}
