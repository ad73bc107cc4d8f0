package authclient

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var authBucket = []byte("auth")

// BoltMirror is a Mirror backed by a bbolt file, so the session survives
// restarts of the client process.
type BoltMirror struct {
	db *bolt.DB
}

// OpenBoltMirror opens (creating if needed) the mirror file at path.
func OpenBoltMirror(path string) (*BoltMirror, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("authclient: open mirror: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(authBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("authclient: init mirror: %w", err)
	}

	return &BoltMirror{db: db}, nil
}

func (m *BoltMirror) Get(_ context.Context, key string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := m.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(authBucket).Get([]byte(key)); v != nil {
			value, ok = string(v), true
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("authclient: read %s: %w", key, err)
	}
	return value, ok, nil
}

func (m *BoltMirror) Set(_ context.Context, key, value string) error {
	err := m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(authBucket).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("authclient: write %s: %w", key, err)
	}
	return nil
}

func (m *BoltMirror) Delete(_ context.Context, key string) error {
	err := m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(authBucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("authclient: delete %s: %w", key, err)
	}
	return nil
}

// Close releases the file lock.
func (m *BoltMirror) Close() error {
	return m.db.Close()
}
