package chunkstore

import (
	"context"
	"fmt"
	"sync"
)

// Dict is an in-memory chunk store backed by a mapping of array names to
// full arrays. It is the reference implementation the other backends are
// checked against. Safe for concurrent use.
type Dict struct {
	mu     sync.RWMutex
	arrays map[string]*Array
}

// NewDict creates a chunk store over the given arrays. The map may be nil;
// arrays can also be added later with AddArray.
func NewDict(arrays map[string]*Array) *Dict {
	if arrays == nil {
		arrays = make(map[string]*Array)
	}
	return &Dict{arrays: arrays}
}

// AddArray registers a full array under the given name, replacing any
// previous array with that name.
func (s *Dict) AddArray(name string, a *Array) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arrays[name] = a
}

func (s *Dict) lookup(array string, dtype DType) (*Array, error) {
	parent, ok := s.arrays[array]
	if !ok {
		return nil, fmt.Errorf("%w: array %q", ErrNotFound, array)
	}
	if parent.DType != dtype {
		return nil, fmt.Errorf("%w: array %q holds %s, not %s",
			ErrDTypeMismatch, array, parent.DType, dtype)
	}
	return parent, nil
}

// Get retrieves the chunk of the named array designated by slices.
func (s *Dict) Get(ctx context.Context, array string, slices []Slice, dtype DType) (*Array, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	parent, err := s.lookup(array, dtype)
	if err != nil {
		return nil, err
	}
	return parent.extract(slices)
}

// Put stores a chunk of the named array in the region designated by slices.
func (s *Dict) Put(ctx context.Context, array string, slices []Slice, chunk *Array) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	parent, err := s.lookup(array, chunk.DType)
	if err != nil {
		return err
	}
	return parent.assign(slices, chunk)
}
