package chunkstore

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// GetMany retrieves several chunks of one array concurrently, preserving the
// order of the requests in the result. At most limit requests are in flight
// at once; a non-positive limit means one per CPU. The first failure cancels
// the remaining requests.
func GetMany(ctx context.Context, s Store, array string, chunks [][]Slice, dtype DType, limit int) ([]*Array, error) {
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	out := make([]*Array, len(chunks))
	for i, slices := range chunks {
		i, slices := i, slices
		g.Go(func() error {
			a, err := s.Get(ctx, array, slices, dtype)
			if err != nil {
				return fmt.Errorf("chunk %s: %w", ChunkName(array, slices), err)
			}
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
