package storage

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketValues = []byte("values")

// BoltKV implements KV on a single bbolt bucket.
type BoltKV struct {
	db *bolt.DB
}

// NewBoltKV opens (or creates) the database file at path.
func NewBoltKV(path string) (*BoltKV, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketValues)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltKV{db: db}, nil
}

// Get returns the value stored under key, or ErrNotFound.
func (s *BoltKV) Get(key string) (string, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketValues).Get([]byte(key))
		if raw == nil {
			return ErrNotFound
		}
		value = append(value, raw...)
		return nil
	})
	if err != nil {
		return "", err
	}
	return string(value), nil
}

// Set stores value under key, overwriting any previous value.
func (s *BoltKV) Set(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketValues).Put([]byte(key), []byte(value))
	})
}

// Remove deletes the value under key. Deleting an absent key is not an error.
func (s *BoltKV) Remove(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketValues).Delete([]byte(key))
	})
}

// Close closes the underlying database.
func (s *BoltKV) Close() error {
	return s.db.Close()
}
