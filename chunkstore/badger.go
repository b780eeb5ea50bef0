package chunkstore

import (
	"context"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// Badger is a chunk store backed by a local badger key-value database, with
// one key per chunk name. It suits single-machine pipelines that want chunk
// persistence without a directory per array.
type Badger struct {
	db *badger.DB
}

// NewBadger creates a chunk store over an open badger database. The caller
// keeps ownership of the database and closes it.
func NewBadger(db *badger.DB) *Badger {
	return &Badger{db: db}
}

// Get retrieves the chunk of the named array designated by slices.
func (s *Badger) Get(ctx context.Context, array string, slices []Slice, dtype DType) (*Array, error) {
	key := []byte(ChunkName(array, slices))
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: chunk %q", ErrNotFound, string(key))
	}
	if err != nil {
		return nil, err
	}
	return decodeRequested(data, array, slices, dtype)
}

// Put stores a chunk of the named array in the region designated by slices.
func (s *Badger) Put(ctx context.Context, array string, slices []Slice, chunk *Array) error {
	if err := checkChunk(slices, chunk); err != nil {
		return err
	}
	key := []byte(ChunkName(array, slices))
	data := EncodeChunk(chunk)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}
