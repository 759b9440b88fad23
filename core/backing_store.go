package core

import (
	"fmt"
	"github.com/cockroachdb/errors"
	"github.com/dgraph-io/ristretto"
	"streamhist/hist"
	"streamhist/serde"
	"streamhist/stats"
	"streamhist/storage"
	"sync"
)

// BackingStore persists stream histograms and statistics through a
// storage backend, with a read cache of decoded histograms. Values are
// cloned on the way in and out of the cache. Cache sets are applied
// asynchronously, so entries are keyed by a per-stream generation that
// every completed write bumps; an entry from an older write is never read.
type BackingStore struct {
	backend      storage.Backend
	cacheEnabled bool
	histCache    *ristretto.Cache
	generations  map[string]uint64
	mu           sync.Mutex
}

func NewBackingStore(backend storage.Backend, cacheEnabled bool, cacheSize int64) (*BackingStore, error) {
	store := &BackingStore{
		backend:      backend,
		cacheEnabled: cacheEnabled,
		generations:  make(map[string]uint64),
	}
	if cacheEnabled {
		histCache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: 1e4,
			MaxCost:     cacheSize,
			BufferItems: 64,
		})
		if err != nil {
			return nil, errors.Wrap(err, "creating histogram cache")
		}
		store.histCache = histCache
	}
	return store, nil
}

func cacheCost(h *hist.StreamHist) int64 {
	return int64(h.Len()) + 1
}

func (store *BackingStore) cacheKey(name string) string {
	store.mu.Lock()
	defer store.mu.Unlock()
	return fmt.Sprintf("%d/%s", store.generations[name], name)
}

func (store *BackingStore) bumpGeneration(name string) string {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.generations[name]++
	return fmt.Sprintf("%d/%s", store.generations[name], name)
}

func (store *BackingStore) Get(name string) (*hist.StreamHist, error) {
	key := store.cacheKey(name)
	if store.cacheEnabled {
		cached, found := store.histCache.Get(key)
		if found {
			return cached.(*hist.StreamHist).Clone(), nil
		}
	}
	buf, err := store.backend.Get(storage.KindHistogram, name)
	if err != nil {
		return nil, err
	}
	h, err := serde.BytesToHist(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "stream %q", name)
	}
	if store.cacheEnabled {
		store.histCache.Set(key, h.Clone(), cacheCost(h))
	}
	return h, nil
}

func (store *BackingStore) GetStatistics(name string) (*stats.StreamStatistics, error) {
	buf, err := store.backend.Get(storage.KindStatistics, name)
	if err != nil {
		return nil, err
	}
	statistics, err := serde.BytesToStatistics(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "stream %q", name)
	}
	return statistics, nil
}

// Put writes the histogram and statistics of a stream in one batch.
func (store *BackingStore) Put(name string, h *hist.StreamHist, statistics *stats.StreamStatistics) error {
	histBuf, err := serde.HistToBytes(h)
	if err != nil {
		return err
	}
	statisticsBuf, err := serde.StatisticsToBytes(statistics)
	if err != nil {
		return err
	}
	batch := storage.NewBatch()
	batch.Put(storage.KindHistogram, name, histBuf)
	batch.Put(storage.KindStatistics, name, statisticsBuf)
	if err := store.backend.Write(batch); err != nil {
		return err
	}
	key := store.bumpGeneration(name)
	if store.cacheEnabled {
		store.histCache.Set(key, h.Clone(), cacheCost(h))
	}
	return nil
}

func (store *BackingStore) Delete(name string) error {
	batch := storage.NewBatch()
	batch.Delete(storage.KindHistogram, name)
	batch.Delete(storage.KindStatistics, name)
	err := store.backend.Write(batch)
	store.bumpGeneration(name)
	return err
}

// Names lists the persisted streams in key order.
func (store *BackingStore) Names() ([]string, error) {
	names := make([]string, 0)
	err := store.backend.Iterate(storage.KindHistogram, func(name string, _ []byte) error {
		names = append(names, name)
		return nil
	})
	return names, err
}

func (store *BackingStore) Close() error {
	if store.cacheEnabled {
		store.histCache.Close()
	}
	return store.backend.Close()
}
