package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	t.Run("plain URL keeps host and port", func(t *testing.T) {
		opts, err := Options(Config{URL: "redis://:secret@localhost:6380"})
		require.NoError(t, err)
		assert.Equal(t, "localhost:6380", opts.Addr)
		assert.Equal(t, "secret", opts.Password)
		assert.Nil(t, opts.TLSConfig)
	})

	t.Run("rediss enables TLS and default port", func(t *testing.T) {
		opts, err := Options(Config{URL: "rediss://cache.example.com", Password: "override"})
		require.NoError(t, err)
		assert.Equal(t, "cache.example.com:6379", opts.Addr)
		assert.Equal(t, "override", opts.Password)
		assert.NotNil(t, opts.TLSConfig)
	})

	t.Run("empty URL is not configured", func(t *testing.T) {
		_, err := Options(Config{})
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("unknown scheme is rejected", func(t *testing.T) {
		_, err := Options(Config{URL: "http://localhost"})
		assert.Error(t, err)
	})
}
