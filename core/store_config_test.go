package core

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadStoreConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.yaml")
	data := []byte("defaultCapacity: 32\ncacheEnabled: false\ningestBatchSize: 10\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	config, err := LoadStoreConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 32, config.DefaultCapacity)
	assert.False(t, config.CacheEnabled)
	assert.Equal(t, 10, config.IngestBatchSize)
	// Unset keys keep their defaults.
	assert.Equal(t, DefaultStoreConfig().IngestQueueSize, config.IngestQueueSize)
	assert.NotNil(t, config.Logger)

	ingestConfig := config.IngestConfig(2)
	assert.Equal(t, 2, ingestConfig.Field)
	assert.Equal(t, 10, ingestConfig.BatchSize)
}

func TestLoadStoreConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadStoreConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("defaultCapacity: -3\n"), 0644))
	_, err = LoadStoreConfig(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("defaultCapacity: [\n"), 0644))
	_, err = LoadStoreConfig(path)
	assert.Error(t, err)
}
