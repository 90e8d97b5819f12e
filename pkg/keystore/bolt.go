package keystore

import (
	"context"
	"errors"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/fivetwenty-io/stripe-client/internal/constants"
)

const (
	boltBucket      = "idempotency_keys"
	boltOpenTimeout = time.Second
)

// BoltStore keeps keys in a single BoltDB file so they survive restarts of
// the process that owns it.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (or creates) the database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, constants.ConfigFilePerm, &bolt.Options{Timeout: boltOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening key store %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucket))

		return err
	})
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("creating key store bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close releases the database file lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Get implements Store.
func (s *BoltStore) Get(ctx context.Context, name string) (string, error) {
	err := ctx.Err()
	if err != nil {
		return "", err
	}

	var key string

	err = s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket([]byte(boltBucket)).Get([]byte(name))
		if value == nil {
			return ErrNotFound
		}

		key = string(value)

		return nil
	})
	if err != nil {
		return "", mapBoltError(err)
	}

	return key, nil
}

// PutIfAbsent implements Store.
func (s *BoltStore) PutIfAbsent(ctx context.Context, name, key string) (string, error) {
	err := validateName(name)
	if err != nil {
		return "", err
	}

	err = ctx.Err()
	if err != nil {
		return "", err
	}

	stored := key

	err = s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucket))

		existing := bucket.Get([]byte(name))
		if existing != nil {
			stored = string(existing)

			return nil
		}

		return bucket.Put([]byte(name), []byte(key))
	})
	if err != nil {
		return "", mapBoltError(err)
	}

	return stored, nil
}

// Delete implements Store.
func (s *BoltStore) Delete(ctx context.Context, name string) error {
	err := ctx.Err()
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(boltBucket)).Delete([]byte(name))
	})

	return mapBoltError(err)
}

func mapBoltError(err error) error {
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return ErrClosed
	}

	return err
}
