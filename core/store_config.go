package core

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"os"
	"streamhist/ingest"
)

// StoreConfig holds the DB settings. DefaultCapacity applies to streams
// created without a capacity and CacheSize bounds the number of cached
// bins.
type StoreConfig struct {
	DefaultCapacity int   `yaml:"defaultCapacity"`
	CacheEnabled    bool  `yaml:"cacheEnabled"`
	CacheSize       int64 `yaml:"cacheSize"`
	InMemory        bool  `yaml:"inMemory"`
	IngestBatchSize int   `yaml:"ingestBatchSize"`
	IngestQueueSize int   `yaml:"ingestQueueSize"`

	Logger *zap.Logger `yaml:"-"`
}

func DefaultStoreConfig() *StoreConfig {
	return &StoreConfig{
		DefaultCapacity: 64,
		CacheEnabled:    true,
		CacheSize:       1 << 20,
		InMemory:        false,
		IngestBatchSize: 1024,
		IngestQueueSize: 4,
		Logger:          zap.NewNop(),
	}
}

// LoadStoreConfig reads a YAML file over the defaults.
func LoadStoreConfig(path string) (*StoreConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading store config %q", path)
	}
	config := DefaultStoreConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "parsing store config %q", path)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (config *StoreConfig) Validate() error {
	if config.DefaultCapacity < 1 {
		return errors.Newf("defaultCapacity must be positive, got %d", config.DefaultCapacity)
	}
	if config.CacheEnabled && config.CacheSize < 1 {
		return errors.Newf("cacheSize must be positive, got %d", config.CacheSize)
	}
	if config.IngestBatchSize < 1 || config.IngestQueueSize < 1 {
		return errors.Newf("ingest batch and queue sizes must be positive, got %d and %d",
			config.IngestBatchSize, config.IngestQueueSize)
	}
	return nil
}

// IngestConfig derives the ingest settings for the given 0-based field.
func (config *StoreConfig) IngestConfig(field int) *ingest.Config {
	return &ingest.Config{
		Field:     field,
		BatchSize: config.IngestBatchSize,
		QueueSize: config.IngestQueueSize,
		Logger:    config.logger().Named("ingest"),
	}
}

func (config *StoreConfig) logger() *zap.Logger {
	if config.Logger == nil {
		return zap.NewNop()
	}
	return config.Logger
}
