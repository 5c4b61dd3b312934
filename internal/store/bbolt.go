package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("rooms")

// envelope wraps a stored value with its expiry so bbolt can honour the
// same TTL contract Redis gives us natively. Expired entries are treated as
// missing on read and lazily deleted.
type envelope struct {
	ExpiresAt time.Time `json:"expiresAt"`
	Value     []byte    `json:"value"`
}

// BBoltStore is the embedded alternative to Redis, used for local
// development and tests. A single write transaction per Update gives the
// same no-lost-update guarantee the Redis WATCH loop provides.
type BBoltStore struct {
	db *bolt.DB
}

func NewBBoltStore(path string) (*BBoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db at %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating rooms bucket: %w", err)
	}

	return &BBoltStore{db: db}, nil
}

func (s *BBoltStore) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		env, err := liveEnvelope(b, key)
		if err != nil {
			return err
		}
		value = append([]byte(nil), env.Value...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *BBoltStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putEnvelope(tx.Bucket(bucketName), key, value, ttl)
	})
}

func (s *BBoltStore) Update(_ context.Context, key string, ttl time.Duration, fn UpdateFunc) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		env, err := liveEnvelope(b, key)
		if err != nil {
			return err
		}

		next, err := fn(env.Value)
		if err != nil {
			return err
		}
		return putEnvelope(b, key, next, ttl)
	})
}

func (s *BBoltStore) Delete(_ context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
}

func (s *BBoltStore) Close() error {
	return s.db.Close()
}

// liveEnvelope loads a key's envelope, deleting and reporting ErrNotFound
// for entries past their expiry.
func liveEnvelope(b *bolt.Bucket, key string) (*envelope, error) {
	data := b.Get([]byte(key))
	if data == nil {
		return nil, ErrNotFound
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshaling entry %s: %w", key, err)
	}

	if time.Now().After(env.ExpiresAt) {
		if err := b.Delete([]byte(key)); err != nil {
			return nil, fmt.Errorf("deleting expired entry %s: %w", key, err)
		}
		return nil, ErrNotFound
	}
	return &env, nil
}

func putEnvelope(b *bolt.Bucket, key string, value []byte, ttl time.Duration) error {
	env := envelope{
		ExpiresAt: time.Now().Add(ttl),
		Value:     value,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshaling entry %s: %w", key, err)
	}
	if err := b.Put([]byte(key), data); err != nil {
		return fmt.Errorf("writing entry %s: %w", key, err)
	}
	return nil
}
