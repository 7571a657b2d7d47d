package excerpt

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/hupe1980/semsearch/model"
)

const defaultBucket = "excerpts"

// BoltStore keeps lz4-compressed excerpts in a bbolt database, keyed by
// the big-endian context id.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
}

// BoltOptions configures OpenBolt.
type BoltOptions struct {
	Bucket   string
	ReadOnly bool
	NoSync   bool
}

// OpenBolt opens or creates the database at path.
func OpenBolt(path string, optFns ...func(o *BoltOptions)) (*BoltStore, error) {
	opts := BoltOptions{Bucket: defaultBucket}
	for _, fn := range optFns {
		fn(&opts)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{
		ReadOnly: opts.ReadOnly,
		Timeout:  time.Second,
	})
	if err != nil {
		return nil, err
	}
	db.NoSync = opts.NoSync

	if !opts.ReadOnly {
		err = db.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists([]byte(opts.Bucket))
			return err
		})
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &BoltStore{db: db, bucket: []byte(opts.Bucket)}, nil
}

// Get returns the raw excerpt line of a context.
func (s *BoltStore) Get(_ context.Context, contextId model.Id) (string, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return nil
		}
		if v := b.Get(contextKey(contextId)); v != nil {
			// v is only valid inside the transaction.
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if value == nil {
		return "", fmt.Errorf("%w: %d", ErrNotFound, contextId)
	}
	return decompressValue(value)
}

// PutDocuments stores documents in a single transaction.
func (s *BoltStore) PutDocuments(_ context.Context, docs []Document) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for _, d := range docs {
			v, err := compressValue(d.Raw())
			if err != nil {
				return err
			}
			if err := b.Put(contextKey(d.ContextId), v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
