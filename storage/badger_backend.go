package storage

import (
	"github.com/cockroachdb/errors"
	"github.com/dgraph-io/badger/v2"
	"go.uber.org/zap"
)

// badgerLogger routes badger's internal logging to zap.
type badgerLogger struct {
	sugar *zap.SugaredLogger
}

func (logger badgerLogger) Errorf(format string, args ...interface{}) {
	logger.sugar.Errorf(format, args...)
}

func (logger badgerLogger) Warningf(format string, args ...interface{}) {
	logger.sugar.Warnf(format, args...)
}

func (logger badgerLogger) Infof(format string, args ...interface{}) {
	logger.sugar.Infof(format, args...)
}

func (logger badgerLogger) Debugf(format string, args ...interface{}) {
	logger.sugar.Debugf(format, args...)
}

// OpenBadgerDB opens the badger database at path, or an in-memory one
// when path is empty.
func OpenBadgerDB(path string, logger *zap.Logger) (*badger.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	option := badger.DefaultOptions(path).
		WithInMemory(path == "").
		WithLogger(badgerLogger{sugar: logger.Named("badger").Sugar()})
	db, err := badger.Open(option)
	if err != nil {
		return nil, errors.Wrapf(err, "opening badger database %q", path)
	}
	return db, nil
}

func TestBadgerDB() *badger.DB {
	db, err := OpenBadgerDB("", nil)
	if err != nil {
		panic(err)
	}
	return db
}

type BadgerBackend struct {
	db *badger.DB
}

func NewBadgerBackend(db *badger.DB) *BadgerBackend {
	return &BadgerBackend{db: db}
}

func (backend *BadgerBackend) Close() error {
	return backend.db.Close()
}

func (backend *BadgerBackend) txnGet(key []byte) ([]byte, error) {
	var buf []byte
	err := backend.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		buf, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "%c/%s", GetKindFromKey(key), GetNameFromKey(key))
	}
	return buf, err
}

func (backend *BadgerBackend) txnPut(key, buf []byte) error {
	err := backend.db.Update(func(txn *badger.Txn) error {
		err := txn.Set(key, buf)
		return err
	})
	return err
}

func (backend *BadgerBackend) txnDelete(key []byte) error {
	err := backend.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(key)
		return err
	})
	return err
}

func (backend *BadgerBackend) Get(kind Kind, name string) ([]byte, error) {
	return backend.txnGet(GetKey(kind, name))
}

func (backend *BadgerBackend) Put(kind Kind, name string, buf []byte) error {
	return backend.txnPut(GetKey(kind, name), buf)
}

func (backend *BadgerBackend) Delete(kind Kind, name string) error {
	return backend.txnDelete(GetKey(kind, name))
}

func writeTxnFunc(txn *badger.Txn, batch *Batch) error {
	for key, buf := range batch.puts {
		err := txn.Set([]byte(key), buf)
		if err != nil {
			return err
		}
	}
	for key := range batch.deletes {
		err := txn.Delete([]byte(key))
		if err != nil {
			return err
		}
	}
	return nil
}

func (backend *BadgerBackend) Write(batch *Batch) error {
	return backend.db.Update(func(txn *badger.Txn) error {
		return writeTxnFunc(txn, batch)
	})
}

func (backend *BadgerBackend) Iterate(kind Kind, lambda func(string, []byte) error) error {
	prefix := []byte{byte(kind)}
	iterOpts := badger.DefaultIteratorOptions
	iterOpts.Prefix = prefix
	return backend.db.View(func(txn *badger.Txn) error {
		iter := txn.NewIterator(iterOpts)
		defer iter.Close()

		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			item := iter.Item()
			buf, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := lambda(GetNameFromKey(item.Key()), buf); err != nil {
				return err
			}
		}
		return nil
	})
}
