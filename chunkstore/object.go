package chunkstore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/thanos-io/objstore"
)

// Object is a chunk store backed by an object-store bucket, with one object
// per chunk name. Chunk names double as object keys, which is why name
// components are restricted to characters valid in S3 names.
type Object struct {
	bucket objstore.Bucket
}

// NewObject creates a chunk store over the given bucket.
func NewObject(bucket objstore.Bucket) *Object {
	return &Object{bucket: bucket}
}

// Get retrieves the chunk of the named array designated by slices.
func (s *Object) Get(ctx context.Context, array string, slices []Slice, dtype DType) (*Array, error) {
	key := ChunkName(array, slices) + fileExt
	rc, err := s.bucket.Get(ctx, key)
	if s.bucket.IsObjNotFoundErr(err) {
		return nil, fmt.Errorf("%w: chunk %q", ErrNotFound, ChunkName(array, slices))
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return decodeRequested(data, array, slices, dtype)
}

// Put stores a chunk of the named array in the region designated by slices.
func (s *Object) Put(ctx context.Context, array string, slices []Slice, chunk *Array) error {
	if err := checkChunk(slices, chunk); err != nil {
		return err
	}
	key := ChunkName(array, slices) + fileExt
	return s.bucket.Upload(ctx, key, bytes.NewReader(EncodeChunk(chunk)))
}
