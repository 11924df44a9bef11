package layout

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/robert-malhotra/go-dotthz/internal/binary"
	"github.com/robert-malhotra/go-dotthz/internal/btree"
	"github.com/robert-malhotra/go-dotthz/internal/filter"
	"github.com/robert-malhotra/go-dotthz/internal/message"
)

var (
	ErrUnsupported = errors.New("unsupported storage layout")
	ErrInvalid     = errors.New("invalid storage layout")
)

// maxDataSize bounds the bytes read for one dataset.
const maxDataSize = 1 << 40

// Read returns the elements of a dataset, packed in row-major order.
func Read(r *binary.Reader, lay *message.Layout, space *message.Dataspace, dt *message.Datatype, pipeline *message.FilterPipeline) ([]byte, error) {
	size, err := DataSize(space, dt)
	if err != nil {
		return nil, err
	}
	switch lay.Class {
	case message.LayoutCompact:
		if uint64(len(lay.CompactData)) < size {
			return nil, fmt.Errorf("%w: %d compact bytes for %d bytes of data", ErrInvalid, len(lay.CompactData), size)
		}
		return append([]byte(nil), lay.CompactData[:size]...), nil
	case message.LayoutContiguous:
		return readContiguous(r, lay, size)
	case message.LayoutChunked:
		return readChunked(r, lay, space, dt, pipeline, size)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, lay.Class)
}

// DataSize returns the bytes held by a dataset of the given shape and type.
func DataSize(space *message.Dataspace, dt *message.Datatype) (uint64, error) {
	hi, size := bits.Mul64(space.NumElements(), uint64(dt.Size))
	if hi != 0 || size > maxDataSize {
		return 0, fmt.Errorf("%w: %d elements of %d bytes", ErrInvalid, space.NumElements(), dt.Size)
	}
	return size, nil
}

func readContiguous(r *binary.Reader, lay *message.Layout, size uint64) ([]byte, error) {
	if size == 0 || r.IsUndefinedOffset(lay.Address) {
		return make([]byte, size), nil
	}
	if lay.Size != 0 && lay.Size < size {
		return nil, fmt.Errorf("%w: %d stored bytes for %d bytes of data", ErrInvalid, lay.Size, size)
	}
	data, err := r.At(int64(lay.Address)).ReadBytes(int(size))
	if err != nil {
		return nil, fmt.Errorf("reading contiguous data at 0x%x: %w", lay.Address, err)
	}
	return data, nil
}

func readChunked(r *binary.Reader, lay *message.Layout, space *message.Dataspace, dt *message.Datatype, pipeline *message.FilterPipeline, size uint64) ([]byte, error) {
	g := grid{dims: space.Dims, chunk: lay.ChunkDims, elem: uint64(dt.Size)}
	if err := g.check(lay); err != nil {
		return nil, err
	}
	if err := filter.Supported(pipeline); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	out := make([]byte, size)
	if size == 0 || r.IsUndefinedOffset(lay.Address) {
		return out, nil
	}

	cr := chunkReader{r: r, pipeline: pipeline, grid: g}
	switch lay.Index {
	case message.ChunkIndexBTreeV1:
		chunks, err := btree.ReadChunks(r, lay.Address, len(g.dims))
		if err != nil {
			return nil, err
		}
		for _, c := range chunks {
			if err := cr.place(out, c.Offset, c.Address, uint64(c.Size), c.FilterMask); err != nil {
				return nil, err
			}
		}
	case message.ChunkIndexSingle:
		stored, mask := g.chunkBytes(), uint32(0)
		if pipeline != nil && len(pipeline.Filters) > 0 {
			stored, mask = lay.FilteredSize, lay.FilterMask
		}
		if err := cr.place(out, make([]uint64, len(g.dims)), lay.Address, stored, mask); err != nil {
			return nil, err
		}
	case message.ChunkIndexImplicit:
		n := g.chunkBytes()
		i := uint64(0)
		err := g.eachChunk(func(offset []uint64) error {
			err := cr.place(out, offset, lay.Address+i*n, n, 0)
			i++
			return err
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: chunk index type %d", ErrUnsupported, lay.Index)
	}
	return out, nil
}

type chunkReader struct {
	r        *binary.Reader
	pipeline *message.FilterPipeline
	grid
}

// place reads the chunk stored at addr and copies it into out.
func (cr chunkReader) place(out []byte, offset []uint64, addr, stored uint64, mask uint32) error {
	if stored > maxDataSize {
		return fmt.Errorf("%w: chunk of %d bytes", ErrInvalid, stored)
	}
	raw, err := cr.r.At(int64(addr)).ReadBytes(int(stored))
	if err != nil {
		return fmt.Errorf("reading chunk at 0x%x: %w", addr, err)
	}
	data, err := filter.Decode(cr.pipeline, raw, mask, int(cr.elem))
	if err != nil {
		return fmt.Errorf("chunk at 0x%x: %w", addr, err)
	}
	if uint64(len(data)) < cr.chunkBytes() {
		return fmt.Errorf("%w: chunk at 0x%x holds %d bytes, want %d", ErrInvalid, addr, len(data), cr.chunkBytes())
	}
	cr.copyChunk(out, data, offset)
	return nil
}

// grid describes how a dataset's extent is cut into chunks.
type grid struct {
	dims  []uint64
	chunk []uint64
	elem  uint64
}

func (g grid) check(lay *message.Layout) error {
	if len(g.dims) == 0 || len(g.chunk) != len(g.dims) {
		return fmt.Errorf("%w: rank %d chunks for a rank %d dataset", ErrInvalid, len(g.chunk), len(g.dims))
	}
	if lay.ElementSize != 0 && uint64(lay.ElementSize) != g.elem {
		return fmt.Errorf("%w: chunk element size %d, datatype size %d", ErrInvalid, lay.ElementSize, g.elem)
	}
	n := g.elem
	for _, c := range g.chunk {
		hi, m := bits.Mul64(n, c)
		if c == 0 || hi != 0 || m > maxDataSize {
			return fmt.Errorf("%w: chunk dimensions %v", ErrInvalid, g.chunk)
		}
		n = m
	}
	return nil
}

func (g grid) chunkBytes() uint64 {
	n := g.elem
	for _, c := range g.chunk {
		n *= c
	}
	return n
}

// eachChunk calls fn with the offset of every chunk in row-major order.
func (g grid) eachChunk(fn func(offset []uint64) error) error {
	offset := make([]uint64, len(g.dims))
	for {
		if err := fn(offset); err != nil {
			return err
		}
		d := len(offset) - 1
		for ; d >= 0; d-- {
			offset[d] += g.chunk[d]
			if offset[d] < g.dims[d] {
				break
			}
			offset[d] = 0
		}
		if d < 0 {
			return nil
		}
	}
}

// copyChunk copies the part of a chunk whose first element is at offset
// that lies inside the dataset extent.
func (g grid) copyChunk(out, chunk []byte, offset []uint64) {
	rank := len(g.dims)
	n := make([]uint64, rank)
	for d := range rank {
		if offset[d] >= g.dims[d] {
			return
		}
		n[d] = min(g.chunk[d], g.dims[d]-offset[d])
	}
	// dst and src are element indexes of the current row, accumulated one
	// dimension at a time.
	var rows func(d int, dst, src uint64)
	rows = func(d int, dst, src uint64) {
		if d == rank-1 {
			at := (dst + offset[d]) * g.elem
			copy(out[at:at+n[d]*g.elem], chunk[src*g.elem:(src+n[d])*g.elem])
			return
		}
		for i := uint64(0); i < n[d]; i++ {
			rows(d+1, (dst+offset[d]+i)*g.dims[d+1], (src+i)*g.chunk[d+1])
		}
	}
	rows(0, 0, 0)
}
