package chunkstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrNotFound is returned when the requested array or chunk is not in
	// the store.
	ErrNotFound = errors.New("chunk not found")
	// ErrDTypeMismatch is returned when the dtype of a chunk differs from
	// the dtype of the array it belongs to.
	ErrDTypeMismatch = errors.New("dtype mismatch")
	// ErrShapeMismatch is returned when the shape of a chunk is
	// inconsistent with the slices locating it, or when the slices fall
	// outside the parent array.
	ErrShapeMismatch = errors.New("shape mismatch")
)

// NameSep is the character separating the components of array and chunk
// names.
const NameSep = "/"

// nameIndexWidth is the fixed width of each zero-padded index in a chunk
// name, wide enough for the offsets of any supported array.
const nameIndexWidth = 5

// A DType identifies the element type of an array.
type DType uint8

const (
	Uint8 DType = iota
	Int32
	Float32
	Float64
	Complex64
)

// Size returns the size of one element in bytes.
func (d DType) Size() int {
	switch d {
	case Uint8:
		return 1
	case Int32, Float32:
		return 4
	case Float64, Complex64:
		return 8
	}
	return 0
}

func (d DType) String() string {
	switch d {
	case Uint8:
		return "uint8"
	case Int32:
		return "int32"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Complex64:
		return "complex64"
	}
	return fmt.Sprintf("dtype(%d)", uint8(d))
}

// A Slice selects the half-open index range [Start, Stop) along one
// dimension of an array. Only unit strides are supported.
type Slice struct {
	Start int
	Stop  int
}

// Shape returns the shape of the region selected by slices.
func Shape(slices []Slice) []int {
	shape := make([]int, len(slices))
	for i, s := range slices {
		shape[i] = s.Stop - s.Start
	}
	return shape
}

// An Array is an N-dimensional array of a fixed element type, stored as flat
// little-endian bytes in row-major order.
type Array struct {
	DType DType
	Shape []int
	Data  []byte
}

// NewArray creates a zero-filled array of the given dtype and shape.
func NewArray(dtype DType, shape ...int) *Array {
	n := 1
	for _, v := range shape {
		n *= v
	}
	return &Array{DType: dtype, Shape: shape, Data: make([]byte, n*dtype.Size())}
}

// NumElements returns the number of elements in the array.
func (a *Array) NumElements() int {
	n := 1
	for _, v := range a.Shape {
		n *= v
	}
	return n
}

// Float32 returns the element at flat index i of a float32 array.
func (a *Array) Float32(i int) float32 {
	return float32FromBits(a.Data[i*4:])
}

// SetFloat32 sets the element at flat index i of a float32 array.
func (a *Array) SetFloat32(i int, x float32) {
	putFloat32Bits(a.Data[i*4:], x)
}

// Join joins name components with the name separator.
func Join(names ...string) string {
	return strings.Join(names, NameSep)
}

// Split splits a name into its components.
func Split(name string) []string {
	return strings.Split(name, NameSep)
}

// ChunkName forms the chunk name from the array name and the slices locating
// the chunk within its parent array, by appending the zero-padded start
// offset of each dimension. The name is a pure function of its inputs, so
// the same chunk always maps to the same name.
func ChunkName(array string, slices []Slice) string {
	idx := make([]string, len(slices))
	for i, s := range slices {
		idx[i] = fmt.Sprintf("%0*d", nameIndexWidth, s.Start)
	}
	return Join(array, strings.Join(idx, "_"))
}

// A Store holds chunks of multiple N-dimensional arrays addressed by name.
//
// Get retrieves the chunk of the named array designated by slices, checking
// that the array holds elements of the expected dtype. Put stores a chunk
// whose shape must match the region designated by slices. Identical slices
// address the same chunk, so a Get after a successful Put of the same region
// returns equal data.
type Store interface {
	Get(ctx context.Context, array string, slices []Slice, dtype DType) (*Array, error)
	Put(ctx context.Context, array string, slices []Slice, chunk *Array) error
}

// checkSlices verifies that slices select a non-empty region inside shape.
func checkSlices(shape []int, slices []Slice) error {
	if len(slices) == 0 || len(slices) != len(shape) {
		return fmt.Errorf("%w: %d slices for %d dimensions", ErrShapeMismatch, len(slices), len(shape))
	}
	for d, s := range slices {
		if s.Start < 0 || s.Stop <= s.Start || s.Stop > shape[d] {
			return fmt.Errorf("%w: slice %d:%d outside dimension %d of size %d",
				ErrShapeMismatch, s.Start, s.Stop, d, shape[d])
		}
	}
	return nil
}

// checkChunk verifies that the shape of chunk matches the region selected by
// slices and that its data has the right length.
func checkChunk(slices []Slice, chunk *Array) error {
	want := Shape(slices)
	if len(chunk.Shape) != len(want) {
		return fmt.Errorf("%w: chunk has %d dimensions, slices select %d",
			ErrShapeMismatch, len(chunk.Shape), len(want))
	}
	for d := range want {
		if chunk.Shape[d] != want[d] {
			return fmt.Errorf("%w: chunk shape %v does not match slices shape %v",
				ErrShapeMismatch, chunk.Shape, want)
		}
	}
	if len(chunk.Data) != chunk.NumElements()*chunk.DType.Size() {
		return fmt.Errorf("%w: chunk data holds %d bytes, shape %v of %s needs %d",
			ErrShapeMismatch, len(chunk.Data), chunk.Shape, chunk.DType,
			chunk.NumElements()*chunk.DType.Size())
	}
	return nil
}

// forEachRow visits the contiguous rows of the region selected by slices
// within an array of the given shape, reporting byte offsets into the parent
// array and into a packed chunk of the region along with the row length in
// bytes. Rows run along the last dimension.
func forEachRow(shape []int, slices []Slice, esize int, fn func(parentOff, chunkOff, n int)) {
	ndim := len(slices)
	strides := make([]int, ndim)
	stride := 1
	for d := ndim - 1; d >= 0; d-- {
		strides[d] = stride
		stride *= shape[d]
	}
	chunkShape := Shape(slices)
	row := chunkShape[ndim-1]
	idx := make([]int, ndim-1)
	chunkOff := 0
	for {
		parentOff := slices[ndim-1].Start
		for d := 0; d < ndim-1; d++ {
			parentOff += (slices[d].Start + idx[d]) * strides[d]
		}
		fn(parentOff*esize, chunkOff*esize, row*esize)
		chunkOff += row
		d := ndim - 2
		for d >= 0 {
			idx[d]++
			if idx[d] < chunkShape[d] {
				break
			}
			idx[d] = 0
			d--
		}
		if d < 0 {
			break
		}
	}
}

// extract returns a copy of the sub-region of a selected by slices.
func (a *Array) extract(slices []Slice) (*Array, error) {
	if err := checkSlices(a.Shape, slices); err != nil {
		return nil, err
	}
	out := NewArray(a.DType, Shape(slices)...)
	forEachRow(a.Shape, slices, a.DType.Size(), func(parentOff, chunkOff, n int) {
		copy(out.Data[chunkOff:chunkOff+n], a.Data[parentOff:parentOff+n])
	})
	return out, nil
}

// assign writes chunk into the sub-region of a selected by slices.
func (a *Array) assign(slices []Slice, chunk *Array) error {
	if err := checkSlices(a.Shape, slices); err != nil {
		return err
	}
	if err := checkChunk(slices, chunk); err != nil {
		return err
	}
	forEachRow(a.Shape, slices, a.DType.Size(), func(parentOff, chunkOff, n int) {
		copy(a.Data[parentOff:parentOff+n], chunk.Data[chunkOff:chunkOff+n])
	})
	return nil
}

func float32FromBits(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}

func putFloat32Bits(b []byte, x float32) {
	bits := math.Float32bits(x)
	b[0] = byte(bits)
	b[1] = byte(bits >> 8)
	b[2] = byte(bits >> 16)
	b[3] = byte(bits >> 24)
}
