package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brettbedarf/treestore/config"
	bolt "go.etcd.io/bbolt"
)

// documentKey is the single key the document lives under
var documentKey = []byte("root")

// BoltStorage keeps the document as one value in a bbolt bucket
type BoltStorage struct {
	db     *bolt.DB
	bucket []byte
}

// BoltPath derives the database path from the configured document path by
// swapping its extension for ".db"
func BoltPath(cfg *config.Config) string {
	p := cfg.StoragePath()
	return strings.TrimSuffix(p, filepath.Ext(p)) + ".db"
}

// OpenBoltStorage opens or creates the database at path and ensures bucket exists
func OpenBoltStorage(path, bucket string) (*BoltStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltStorage{db: db, bucket: []byte(bucket)}, nil
}

func (s *BoltStorage) Load() ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get(documentKey)
		if v == nil {
			return fmt.Errorf("bucket %s has no document: %w", s.bucket, fs.ErrNotExist)
		}
		// v is only valid for the life of the transaction
		data = append([]byte(nil), v...)
		return nil
	})
	return data, err
}

func (s *BoltStorage) Save(data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(documentKey, data)
	})
}

func (s *BoltStorage) Close() error {
	return s.db.Close()
}
