package heap

import (
	"fmt"

	"github.com/robert-malhotra/go-dotthz/internal/binary"
)

// GlobalHeap is one global heap collection. Variable-length data such as
// variable-length strings lives in these collections.
type GlobalHeap struct {
	Address uint64
	objects map[uint16][]byte
}

// ID locates an object in a global heap collection.
type ID struct {
	Collection uint64
	Index      uint32
}

/*
Collection:

	4   "GCOL"
	1   version (1)
	3   reserved
	L   collection size, header included
	*   objects, each:
	      2   heap object index (0 ends the list and marks free space)
	      2   reference count
	      4   reserved
	      L   object size
	      *   data, padded to a multiple of 8
*/

// ReadGlobalHeap reads the collection at address.
func ReadGlobalHeap(r *binary.Reader, address uint64) (*GlobalHeap, error) {
	if address == 0 || r.IsUndefinedOffset(address) {
		return nil, fmt.Errorf("invalid global heap address 0x%x", address)
	}
	hr := r.At(int64(address))

	sig, err := hr.ReadBytes(4)
	if err != nil {
		return nil, fmt.Errorf("reading global heap signature: %w", err)
	}
	if string(sig) != "GCOL" {
		return nil, fmt.Errorf("invalid global heap signature %q at 0x%x", sig, address)
	}
	version, err := hr.ReadUint8()
	if err != nil {
		return nil, err
	}
	if version != 1 {
		return nil, fmt.Errorf("unsupported global heap version %d", version)
	}
	hr.Skip(3)

	size, err := hr.ReadLength()
	if err != nil {
		return nil, err
	}
	end := int64(address + size)
	objHeader := int64(8 + r.LengthSize())

	heap := &GlobalHeap{Address: address, objects: make(map[uint16][]byte)}
	for hr.Pos()+objHeader <= end {
		index, err := hr.ReadUint16()
		if err != nil {
			return nil, err
		}
		if index == 0 {
			break
		}
		hr.Skip(6)
		n, err := hr.ReadLength()
		if err != nil {
			return nil, err
		}
		if hr.Pos()+int64(n) > end {
			return nil, fmt.Errorf("global heap object %d overruns its collection", index)
		}
		data, err := hr.ReadBytes(int(n))
		if err != nil {
			return nil, err
		}
		heap.objects[index] = data
		hr.Skip(int64((8 - n%8) % 8))
	}
	return heap, nil
}

// Object returns the data of object index.
func (h *GlobalHeap) Object(index uint32) ([]byte, error) {
	data, ok := h.objects[uint16(index)]
	if !ok || index > 0xffff {
		return nil, fmt.Errorf("object %d not found in global heap at 0x%x", index, h.Address)
	}
	return data, nil
}

// ParseID decodes a heap ID: a collection address followed by a 4-byte
// object index.
func ParseID(r *binary.Reader, data []byte) (ID, error) {
	n := r.OffsetSize()
	if len(data) < n+4 {
		return ID{}, fmt.Errorf("global heap ID needs %d bytes, have %d", n+4, len(data))
	}
	order := r.ByteOrder()
	return ID{
		Collection: binary.DecodeUint(order, data[:n]),
		Index:      uint32(binary.DecodeUint(order, data[n:n+4])),
	}, nil
}

// Collections reads global heap objects, reading each collection once.
type Collections struct {
	r     *binary.Reader
	cache map[uint64]*GlobalHeap
}

// NewCollections returns an empty cache reading through r.
func NewCollections(r *binary.Reader) *Collections {
	return &Collections{r: r, cache: make(map[uint64]*GlobalHeap)}
}

// Object returns the data of the object id refers to.
func (c *Collections) Object(id ID) ([]byte, error) {
	h, ok := c.cache[id.Collection]
	if !ok {
		var err error
		if h, err = ReadGlobalHeap(c.r, id.Collection); err != nil {
			return nil, err
		}
		c.cache[id.Collection] = h
	}
	return h.Object(id.Index)
}
