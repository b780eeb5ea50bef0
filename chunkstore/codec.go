package chunkstore

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Encoded chunk layout, all integers little-endian:
//
//	magic    4 bytes
//	version  1 byte
//	dtype    1 byte
//	ndim     2 bytes
//	shape    ndim * 4 bytes
//	checksum 8 bytes, xxhash64 of the payload
//	payload  flat element data
const (
	codecMagic   = "OBSC"
	codecVersion = 1
)

var errCorrupt = errors.New("cannot decode chunk")

// EncodeChunk serializes a chunk for storage in a single blob.
func EncodeChunk(chunk *Array) []byte {
	n := len(codecMagic) + 2 + 2 + 4*len(chunk.Shape) + 8 + len(chunk.Data)
	buf := make([]byte, 0, n)
	buf = append(buf, codecMagic...)
	buf = append(buf, codecVersion, byte(chunk.DType))
	nd := len(chunk.Shape)
	buf = append(buf, byte(nd), byte(nd>>8))
	for _, v := range chunk.Shape {
		buf = append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	sum := xxhash.Sum64(chunk.Data)
	for i := 0; i < 8; i++ {
		buf = append(buf, byte(sum>>(8*i)))
	}
	return append(buf, chunk.Data...)
}

// DecodeChunk deserializes a chunk encoded by EncodeChunk, verifying the
// payload checksum.
func DecodeChunk(data []byte) (*Array, error) {
	if len(data) < len(codecMagic)+4 || string(data[:len(codecMagic)]) != codecMagic {
		return nil, fmt.Errorf("%w: bad magic", errCorrupt)
	}
	data = data[len(codecMagic):]
	if data[0] != codecVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", errCorrupt, data[0])
	}
	dtype := DType(data[1])
	if dtype.Size() == 0 {
		return nil, fmt.Errorf("%w: unknown dtype %d", errCorrupt, data[1])
	}
	nd := int(data[2]) | int(data[3])<<8
	data = data[4:]
	if len(data) < 4*nd+8 {
		return nil, fmt.Errorf("%w: truncated header", errCorrupt)
	}
	shape := make([]int, nd)
	n := 1
	for i := range shape {
		shape[i] = int(data[0]) | int(data[1])<<8 | int(data[2])<<16 | int(data[3])<<24
		n *= shape[i]
		data = data[4:]
	}
	var sum uint64
	for i := 0; i < 8; i++ {
		sum |= uint64(data[i]) << (8 * i)
	}
	data = data[8:]
	if len(data) != n*dtype.Size() {
		return nil, fmt.Errorf("%w: payload holds %d bytes, shape %v of %s needs %d",
			errCorrupt, len(data), shape, dtype, n*dtype.Size())
	}
	if xxhash.Sum64(data) != sum {
		return nil, fmt.Errorf("%w: checksum mismatch", errCorrupt)
	}
	payload := make([]byte, len(data))
	copy(payload, data)
	return &Array{DType: dtype, Shape: shape, Data: payload}, nil
}

// decodeRequested decodes an encoded chunk and verifies it against the dtype
// and slices of the request that retrieved it.
func decodeRequested(data []byte, array string, slices []Slice, dtype DType) (*Array, error) {
	chunk, err := DecodeChunk(data)
	if err != nil {
		return nil, fmt.Errorf("array %q: %w", array, err)
	}
	if chunk.DType != dtype {
		return nil, fmt.Errorf("%w: array %q holds %s, not %s",
			ErrDTypeMismatch, array, chunk.DType, dtype)
	}
	if err := checkChunk(slices, chunk); err != nil {
		return nil, err
	}
	return chunk, nil
}
