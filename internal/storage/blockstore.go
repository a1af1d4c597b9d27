package storage

import (
	"errors"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"

	"nodereg/internal/domain"
)

// ErrNotFound is returned when a block is not held locally or by any peer
var ErrNotFound = errors.New("block not found")

// BlockStore is the local block repository
type BlockStore struct {
	db *badger.DB
}

// OpenBlockStore opens the badger repository at path. An empty path opens
// an in-memory repository.
func OpenBlockStore(path string) (*BlockStore, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(filepath.Clean(path))
		opts = opts.WithValueLogFileSize(1 << 24)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BlockStore{db: db}, nil
}

func blockKey(h domain.ContentHash) []byte {
	return []byte("block:" + string(h))
}

// Put stores a block. Storing an existing block is a no-op.
func (s *BlockStore) Put(h domain.ContentHash, data []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(blockKey(h))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(blockKey(h), data)
	})
}

// Get returns a copy of the block
func (s *BlockStore) Get(h domain.ContentHash) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blockKey(h))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Has reports whether the block is stored locally
func (s *BlockStore) Has(h domain.ContentHash) (bool, error) {
	_, err := s.Get(h)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Close closes the repository
func (s *BlockStore) Close() error {
	return s.db.Close()
}
