package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filetransfer/internal/config"
)

func TestNew(t *testing.T) {
	t.Run("local", func(t *testing.T) {
		s, err := New(config.StorageConfig{Backend: config.BackendLocal, UploadDir: t.TempDir()})
		require.NoError(t, err)
		assert.IsType(t, &localStorage{}, s)
	})

	t.Run("local without dir", func(t *testing.T) {
		_, err := New(config.StorageConfig{Backend: config.BackendLocal})
		assert.Error(t, err)
	})

	t.Run("memory", func(t *testing.T) {
		s, err := New(config.StorageConfig{Backend: config.BackendMemory})
		require.NoError(t, err)
		assert.IsType(t, &memoryStorage{}, s)
	})

	t.Run("minio requires endpoint", func(t *testing.T) {
		_, err := New(config.StorageConfig{Backend: config.BackendMinIO})
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := New(config.StorageConfig{Backend: "tape"})
		assert.ErrorContains(t, err, "unknown backend")
	})
}
