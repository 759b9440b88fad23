package storage

import (
	"github.com/cockroachdb/errors"
	"sort"
	"sync"
)

var (
	ErrNotFound = errors.New("key not found")
	ErrClosed   = errors.New("backend is closed")
)

// Kind separates the record types stored under one stream name.
type Kind byte

const (
	KindHistogram  Kind = 'h'
	KindStatistics Kind = 's'
)

// GetKey lays a key out as <1 byte kind> <name bytes>.
func GetKey(kind Kind, name string) []byte {
	buf := make([]byte, 1+len(name))
	buf[0] = byte(kind)
	copy(buf[1:], name)
	return buf
}

func GetKindFromKey(buf []byte) Kind {
	return Kind(buf[0])
}

func GetNameFromKey(buf []byte) string {
	return string(buf[1:])
}

// Batch collects writes that a backend applies atomically.
type Batch struct {
	puts    map[string][]byte
	deletes map[string]struct{}
}

func NewBatch() *Batch {
	return &Batch{
		puts:    make(map[string][]byte),
		deletes: make(map[string]struct{}),
	}
}

func (batch *Batch) Put(kind Kind, name string, buf []byte) {
	key := string(GetKey(kind, name))
	delete(batch.deletes, key)
	batch.puts[key] = buf
}

func (batch *Batch) Delete(kind Kind, name string) {
	key := string(GetKey(kind, name))
	delete(batch.puts, key)
	batch.deletes[key] = struct{}{}
}

func (batch *Batch) Len() int {
	return len(batch.puts) + len(batch.deletes)
}

type Backend interface {
	Get(Kind, string) ([]byte, error)
	Put(Kind, string, []byte) error
	Delete(Kind, string) error
	Write(*Batch) error

	// Iterate visits every record of a kind in key order.
	Iterate(Kind, func(string, []byte) error) error

	Close() error
}

type InMemoryBackend struct {
	records map[string][]byte
	mutex   sync.Mutex
}

func NewInMemoryBackend() *InMemoryBackend {
	return &InMemoryBackend{
		records: make(map[string][]byte),
	}
}

func cloneBytes(buf []byte) []byte {
	if buf == nil {
		return nil
	}
	clone := make([]byte, len(buf))
	copy(clone, buf)
	return clone
}

func (backend *InMemoryBackend) Get(kind Kind, name string) ([]byte, error) {
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	if backend.records == nil {
		return nil, ErrClosed
	}
	buf, ok := backend.records[string(GetKey(kind, name))]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%c/%s", kind, name)
	}
	return cloneBytes(buf), nil
}

func (backend *InMemoryBackend) Put(kind Kind, name string, buf []byte) error {
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	if backend.records == nil {
		return ErrClosed
	}
	backend.records[string(GetKey(kind, name))] = cloneBytes(buf)
	return nil
}

func (backend *InMemoryBackend) Delete(kind Kind, name string) error {
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	if backend.records == nil {
		return ErrClosed
	}
	delete(backend.records, string(GetKey(kind, name)))
	return nil
}

func (backend *InMemoryBackend) Write(batch *Batch) error {
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	if backend.records == nil {
		return ErrClosed
	}
	for key, buf := range batch.puts {
		backend.records[key] = cloneBytes(buf)
	}
	for key := range batch.deletes {
		delete(backend.records, key)
	}
	return nil
}

func (backend *InMemoryBackend) Iterate(kind Kind, lambda func(string, []byte) error) error {
	backend.mutex.Lock()
	if backend.records == nil {
		backend.mutex.Unlock()
		return ErrClosed
	}
	keys := make([]string, 0)
	values := make(map[string][]byte)
	for key, buf := range backend.records {
		if GetKindFromKey([]byte(key)) != kind {
			continue
		}
		keys = append(keys, key)
		values[key] = cloneBytes(buf)
	}
	backend.mutex.Unlock()

	// The lock is released so lambda may call back into the backend.
	sort.Strings(keys)
	for _, key := range keys {
		if err := lambda(GetNameFromKey([]byte(key)), values[key]); err != nil {
			return err
		}
	}
	return nil
}

func (backend *InMemoryBackend) Close() error {
	backend.mutex.Lock()
	defer backend.mutex.Unlock()
	backend.records = nil
	return nil
}
