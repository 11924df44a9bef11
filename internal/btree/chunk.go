package btree

import (
	"github.com/robert-malhotra/go-dotthz/internal/binary"
)

// Chunk locates one stored chunk of a dataset.
type Chunk struct {
	// Offset is the element coordinate of the chunk's first element.
	Offset     []uint64
	Size       uint32 // bytes stored, after filtering
	FilterMask uint32 // bit i set: filter i was skipped
	Address    uint64
}

/*
Chunk key, rank being the dataset rank:

	4   chunk size in bytes
	4   filter mask
	8*  offset in each dimension, then a zero for the element dimension
*/

// ReadChunks returns the chunks indexed by the B-tree at addr.
func ReadChunks(r *binary.Reader, addr uint64, rank int) ([]Chunk, error) {
	order := r.ByteOrder()
	keySize := 8 + 8*(rank+1)
	var chunks []Chunk
	err := walk(r, addr, nodeChunk, keySize, 0, func(key []byte, child uint64) error {
		c := Chunk{
			Size:       uint32(binary.DecodeUint(order, key[0:4])),
			FilterMask: uint32(binary.DecodeUint(order, key[4:8])),
			Offset:     make([]uint64, rank),
			Address:    child,
		}
		for i := range c.Offset {
			c.Offset[i] = binary.DecodeUint(order, key[8+8*i:16+8*i])
		}
		chunks = append(chunks, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chunks, nil
}
