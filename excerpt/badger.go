package excerpt

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/hupe1980/semsearch/model"
)

// BadgerStore keeps lz4-compressed excerpts in a badger database, keyed by
// the big-endian context id.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens or creates the database in dir.
func OpenBadger(dir string) (*BadgerStore, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, err
	}
	opts := badger.DefaultOptions(dir).
		WithNumVersionsToKeep(1).
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

// Get returns the raw excerpt line of a context.
func (s *BadgerStore) Get(_ context.Context, contextId model.Id) (string, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(contextKey(contextId))
		if err != nil {
			return err
		}
		// The item value is only valid inside the transaction.
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", fmt.Errorf("%w: %d", ErrNotFound, contextId)
	}
	if err != nil {
		return "", err
	}
	return decompressValue(value)
}

// PutDocuments stores documents, committing whenever a transaction
// grows too big.
func (s *BadgerStore) PutDocuments(_ context.Context, docs []Document) error {
	txn := s.db.NewTransaction(true)
	defer func() { txn.Discard() }()

	for _, d := range docs {
		v, err := compressValue(d.Raw())
		if err != nil {
			return err
		}
		key := contextKey(d.ContextId)
		if err := txn.Set(key, v); err != nil {
			if !errors.Is(err, badger.ErrTxnTooBig) {
				return err
			}
			if err := txn.Commit(); err != nil {
				return err
			}
			txn = s.db.NewTransaction(true)
			if err := txn.Set(key, v); err != nil {
				return err
			}
		}
	}
	return txn.Commit()
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
