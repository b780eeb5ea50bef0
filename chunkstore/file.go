package chunkstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// fileExt marks the chunk files of a File store.
const fileExt = ".chunk"

// File is a chunk store backed by a directory tree, with one encoded chunk
// file per chunk name. Name components become path components, so chunks of
// one array share a subdirectory. Writes go through a temporary file in the
// destination directory followed by a rename, so concurrent readers never
// observe a partial chunk.
type File struct {
	root string
	log  *slog.Logger
}

// NewFile creates a chunk store rooted at the given directory. A nil logger
// falls back to the default logger.
func NewFile(root string, log *slog.Logger) *File {
	if log == nil {
		log = slog.Default()
	}
	return &File{root: root, log: log}
}

func (s *File) path(array string, slices []Slice) string {
	return filepath.Join(s.root, filepath.FromSlash(ChunkName(array, slices))+fileExt)
}

// Get retrieves the chunk of the named array designated by slices.
func (s *File) Get(ctx context.Context, array string, slices []Slice, dtype DType) (*Array, error) {
	data, err := os.ReadFile(s.path(array, slices))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: chunk %q", ErrNotFound, ChunkName(array, slices))
	}
	if err != nil {
		return nil, err
	}
	return decodeRequested(data, array, slices, dtype)
}

// Put stores a chunk of the named array in the region designated by slices.
func (s *File) Put(ctx context.Context, array string, slices []Slice, chunk *Array) error {
	if err := checkChunk(slices, chunk); err != nil {
		return err
	}
	path := s.path(array, slices)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	data := EncodeChunk(chunk)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	s.log.Debug("stored chunk", "name", ChunkName(array, slices), "bytes", len(data))
	return nil
}
