package core

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"sort"
	"streamhist/hist"
	"streamhist/stats"
	"streamhist/storage"
	"sync"
)

var (
	ErrStreamNotFound = errors.New("stream not found")
	ErrStreamExists   = errors.New("stream already exists")
)

type DB struct {
	store   *BackingStore
	config  *StoreConfig
	metrics *Metrics
	logger  *zap.Logger
	streams map[string]*Stream
	mu      sync.Mutex
}

// New creates a DB backed by badger at path, or by an in-memory badger
// when config.InMemory is set. A nil config means DefaultStoreConfig.
func New(path string, config *StoreConfig) (*DB, error) {
	if config == nil {
		config = DefaultStoreConfig()
	}
	if config.InMemory {
		path = ""
	}
	badgerDb, err := storage.OpenBadgerDB(path, config.logger())
	if err != nil {
		return nil, err
	}
	db, err := newDB(storage.NewBadgerBackend(badgerDb), config)
	if err != nil {
		_ = badgerDb.Close()
		return nil, err
	}
	return db, nil
}

// NewInMemory creates a DB over a plain map, for tests and one-shot use.
func NewInMemory(config *StoreConfig) (*DB, error) {
	if config == nil {
		config = DefaultStoreConfig()
	}
	return newDB(storage.NewInMemoryBackend(), config)
}

func newDB(backend storage.Backend, config *StoreConfig) (*DB, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	store, err := NewBackingStore(backend, config.CacheEnabled, config.CacheSize)
	if err != nil {
		return nil, err
	}
	return &DB{
		store:   store,
		config:  config,
		metrics: NewMetrics(),
		logger:  config.logger(),
		streams: make(map[string]*Stream),
		mu:      sync.Mutex{},
	}, nil
}

// Open creates the DB and loads every persisted stream.
func Open(path string, config *StoreConfig) (*DB, error) {
	db, err := New(path, config)
	if err != nil {
		return nil, err
	}
	err = db.ReadDB()
	if err != nil {
		_ = db.store.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) ReadDB() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	names, err := db.store.Names()
	if err != nil {
		return errors.Wrap(err, "listing streams")
	}
	for _, name := range names {
		h, err := db.store.Get(name)
		if err != nil {
			return err
		}
		statistics, err := db.store.GetStatistics(name)
		if errors.Is(err, storage.ErrNotFound) {
			statistics = stats.NewStreamStatistics()
		} else if err != nil {
			return err
		}
		db.streams[name] = newStream(name, h, statistics, db.store, db.metrics)
		db.logger.Debug("loaded stream",
			zap.String("stream", name),
			zap.Int("bins", h.Len()),
			zap.Uint64("count", h.Count()))
	}
	db.metrics.streams.Set(float64(len(db.streams)))
	return nil
}

// NewStream creates and persists an empty stream. A capacity of 0 uses
// the configured default.
func (db *DB) NewStream(name string, capacity int) (*Stream, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.streams[name]; ok {
		return nil, errors.Wrapf(ErrStreamExists, "%q", name)
	}
	if capacity == 0 {
		capacity = db.config.DefaultCapacity
	}
	h, err := hist.New(capacity)
	if err != nil {
		return nil, err
	}

	stream := newStream(name, h, stats.NewStreamStatistics(), db.store, db.metrics)
	stream.dirty = true
	if err := stream.Flush(); err != nil {
		return nil, err
	}
	db.streams[name] = stream
	db.metrics.streams.Set(float64(len(db.streams)))
	db.logger.Info("created stream", zap.String("stream", name), zap.Int("capacity", capacity))
	return stream, nil
}

func (db *DB) GetStream(name string) (*Stream, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	stream, ok := db.streams[name]
	if !ok {
		return nil, errors.Wrapf(ErrStreamNotFound, "%q", name)
	}
	return stream, nil
}

// GetOrCreateStream returns the named stream, creating it with capacity
// when it does not exist.
func (db *DB) GetOrCreateStream(name string, capacity int) (*Stream, error) {
	stream, err := db.GetStream(name)
	if errors.Is(err, ErrStreamNotFound) {
		return db.NewStream(name, capacity)
	}
	return stream, err
}

// Streams lists the stream names in sorted order.
func (db *DB) Streams() []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	names := make([]string, 0, len(db.streams))
	for name := range db.streams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (db *DB) DeleteStream(name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.streams[name]; !ok {
		return errors.Wrapf(ErrStreamNotFound, "%q", name)
	}
	if err := db.store.Delete(name); err != nil {
		return err
	}
	delete(db.streams, name)
	db.metrics.forgetStream(name)
	db.metrics.streams.Set(float64(len(db.streams)))
	db.logger.Info("deleted stream", zap.String("stream", name))
	return nil
}

// Load returns the histogram of a stream as of its last flush.
func (db *DB) Load(name string) (*hist.StreamHist, error) {
	if _, err := db.GetStream(name); err != nil {
		return nil, err
	}
	h, err := db.store.Get(name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, errors.Wrapf(ErrStreamNotFound, "%q", name)
	}
	return h, err
}

// Merge combines the current histograms of the named streams into a new
// histogram. The streams are left untouched.
func (db *DB) Merge(names ...string) (*hist.StreamHist, error) {
	if len(names) == 0 {
		return nil, errors.New("no streams to merge")
	}
	hists := make([]*hist.StreamHist, len(names))
	for i, name := range names {
		stream, err := db.GetStream(name)
		if err != nil {
			return nil, err
		}
		hists[i] = stream.Hist()
	}
	return hist.MergeAll(hists...)
}

func (db *DB) Flush() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	var flushErr error
	for _, stream := range db.streams {
		if err := stream.Flush(); err != nil {
			flushErr = errors.CombineErrors(flushErr, err)
		}
	}
	db.logger.Debug("flushed streams", zap.Int("streams", len(db.streams)), zap.Error(flushErr))
	return flushErr
}

// Close flushes every stream and closes the backend.
func (db *DB) Close() error {
	flushErr := db.Flush()
	return errors.CombineErrors(flushErr, db.store.Close())
}

func (db *DB) Registry() *prometheus.Registry {
	return db.metrics.Registry()
}

func (db *DB) Config() *StoreConfig {
	return db.config
}
