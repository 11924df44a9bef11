package message

import "fmt"

// LayoutClass says where a dataset's elements are stored.
type LayoutClass uint8

const (
	LayoutCompact    LayoutClass = 0
	LayoutContiguous LayoutClass = 1
	LayoutChunked    LayoutClass = 2
	LayoutVirtual    LayoutClass = 3
)

func (c LayoutClass) String() string {
	switch c {
	case LayoutCompact:
		return "compact"
	case LayoutContiguous:
		return "contiguous"
	case LayoutChunked:
		return "chunked"
	case LayoutVirtual:
		return "virtual"
	}
	return fmt.Sprintf("layout %d", uint8(c))
}

// ChunkIndex is the structure that maps chunk offsets to addresses.
type ChunkIndex uint8

const (
	ChunkIndexBTreeV1    ChunkIndex = 0 // layout versions 1 to 3
	ChunkIndexSingle     ChunkIndex = 1
	ChunkIndexImplicit   ChunkIndex = 2
	ChunkIndexFixedArray ChunkIndex = 3
	ChunkIndexExtArray   ChunkIndex = 4
	ChunkIndexBTreeV2    ChunkIndex = 5
)

// Layout is the data layout message of a dataset.
type Layout struct {
	Version uint8
	Class   LayoutClass

	// Address of the contiguous data, or of the chunk index. Undefined when
	// no storage has been allocated.
	Address uint64

	// Size of the contiguous data in bytes. Layout versions 1 and 2 do not
	// record it; it is 0 there.
	Size uint64

	// CompactData holds the elements of a compact dataset.
	CompactData []byte

	// Chunked storage.
	ChunkDims   []uint64
	ElementSize uint32
	Index       ChunkIndex

	// Single chunk index with filters.
	FilteredSize uint64
	FilterMask   uint32
}

func (m *Layout) Type() Type { return TypeDataLayout }

// NewContiguousLayout returns a version 3 contiguous layout.
func NewContiguousLayout(addr, size uint64) *Layout {
	return &Layout{Version: 3, Class: LayoutContiguous, Address: addr, Size: size}
}

/*
Versions 1 and 2:

	1   version
	1   dimensionality
	1   class
	5   reserved
	O   address (absent for compact)
	4*  dimensions; for chunked storage the last one is the element size
	4   compact data size, then the data (compact only)

Version 3 and 4:

	1   version
	1   class
	*   class fields:
	      compact:    2 size, data
	      contiguous: O address, L size
	      chunked v3: 1 dimensionality, O B-tree address, 4* chunk dims,
	                  4 element size
	      chunked v4: 1 flags, 1 dimensionality, 1 dim field width, dims,
	                  1 index type, index fields, O index address
*/

func parseLayout(c *cursor) *Layout {
	m := &Layout{Version: c.u8()}
	switch m.Version {
	case 1, 2:
		parseLayoutV1(c, m)
	case 3:
		m.Class = LayoutClass(c.u8())
		parseLayoutV3(c, m)
	case 4:
		m.Class = LayoutClass(c.u8())
		if m.Class == LayoutChunked {
			parseChunkedV4(c, m)
		} else {
			parseLayoutV3(c, m)
		}
	default:
		c.fail(fmt.Errorf("%w: layout version %d", ErrVersion, m.Version))
	}
	return m
}

func parseLayoutV1(c *cursor, m *Layout) {
	ndims := int(c.u8())
	m.Class = LayoutClass(c.u8())
	c.skip(5)
	if m.Class != LayoutCompact {
		m.Address = c.offset()
	}
	dims := make([]uint64, ndims)
	for i := range dims {
		dims[i] = uint64(c.u32())
	}
	switch m.Class {
	case LayoutChunked:
		if ndims < 1 {
			c.fail(fmt.Errorf("chunked layout with %d dimensions", ndims))
			return
		}
		m.ChunkDims = dims[:ndims-1]
		m.ElementSize = uint32(dims[ndims-1])
	case LayoutCompact:
		m.CompactData = c.bytes(int(c.u32()))
	}
}

func parseLayoutV3(c *cursor, m *Layout) {
	switch m.Class {
	case LayoutCompact:
		m.CompactData = c.bytes(int(c.u16()))
	case LayoutContiguous:
		m.Address = c.offset()
		m.Size = c.length()
	case LayoutChunked:
		ndims := int(c.u8())
		m.Address = c.offset()
		if ndims < 1 {
			c.fail(fmt.Errorf("chunked layout with %d dimensions", ndims))
			return
		}
		m.ChunkDims = make([]uint64, ndims-1)
		for i := range m.ChunkDims {
			m.ChunkDims[i] = uint64(c.u32())
		}
		m.ElementSize = c.u32()
	case LayoutVirtual:
		c.rest()
	default:
		c.fail(fmt.Errorf("unknown layout class %d", m.Class))
	}
}

func parseChunkedV4(c *cursor, m *Layout) {
	flags := c.u8()
	ndims := int(c.u8())
	width := int(c.u8())
	if ndims < 1 || width < 1 || width > 8 {
		c.fail(fmt.Errorf("chunked layout with %d dimensions of width %d", ndims, width))
		return
	}
	m.ChunkDims = make([]uint64, ndims-1)
	for i := range m.ChunkDims {
		m.ChunkDims[i] = c.uint(width)
	}
	m.ElementSize = uint32(c.uint(width))

	m.Index = ChunkIndex(c.u8())
	switch m.Index {
	case ChunkIndexSingle:
		if flags&0x02 != 0 {
			m.FilteredSize = c.length()
			m.FilterMask = c.u32()
		}
	case ChunkIndexImplicit:
	case ChunkIndexFixedArray:
		c.skip(1)
	case ChunkIndexExtArray:
		c.skip(5)
	case ChunkIndexBTreeV2:
		c.skip(6)
	default:
		c.fail(fmt.Errorf("unknown chunk index type %d", m.Index))
		return
	}
	m.Address = c.offset()
}

func (m *Layout) encode(e *encoding) {
	e.u8(3)
	e.u8(uint8(m.Class))
	switch m.Class {
	case LayoutCompact:
		e.u16(uint16(len(m.CompactData)))
		e.bytes(m.CompactData)
	case LayoutContiguous:
		e.offset(m.Address)
		e.length(m.Size)
	}
}
