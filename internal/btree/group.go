package btree

import (
	"fmt"

	"github.com/robert-malhotra/go-dotthz/internal/binary"
	"github.com/robert-malhotra/go-dotthz/internal/heap"
)

// GroupEntry is one member of an old-style group.
type GroupEntry struct {
	Name    string
	Address uint64

	// SoftLink is the target path when the entry is a soft link.
	SoftLink string
}

// Cache types of a symbol table entry.
const (
	cacheNone     = 0
	cacheGroup    = 1
	cacheSoftLink = 2
)

/*
Symbol table node:

	4   "SNOD"
	1   version (1)
	1   reserved
	2   number of symbols
	*   entries, each:
	      O   name offset in the local heap
	      O   object header address
	      4   cache type
	      4   reserved
	      16  scratch pad
*/

// ReadGroupEntries returns the members of the group whose B-tree is at
// addr, in name order.
func ReadGroupEntries(r *binary.Reader, addr uint64, names *heap.LocalHeap) ([]GroupEntry, error) {
	var entries []GroupEntry
	err := walk(r, addr, nodeGroup, r.LengthSize(), 0, func(_ []byte, snod uint64) error {
		got, err := readSymbolNode(r, snod, names)
		entries = append(entries, got...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func readSymbolNode(r *binary.Reader, addr uint64, names *heap.LocalHeap) ([]GroupEntry, error) {
	nr := r.At(int64(addr))
	head, err := nr.ReadBytes(8)
	if err != nil {
		return nil, fmt.Errorf("reading symbol table node at 0x%x: %w", addr, err)
	}
	if string(head[:4]) != "SNOD" {
		return nil, fmt.Errorf("%w: symbol table node signature %q at 0x%x", ErrInvalidNode, head[:4], addr)
	}
	if head[4] != 1 {
		return nil, fmt.Errorf("%w: symbol table node version %d", ErrInvalidNode, head[4])
	}
	n := int(binary.DecodeUint(r.ByteOrder(), head[6:8]))

	osize := r.OffsetSize()
	entrySize := 2*osize + 24
	raw, err := nr.ReadBytes(n * entrySize)
	if err != nil {
		return nil, fmt.Errorf("reading symbol table node at 0x%x: %w", addr, err)
	}

	order := r.ByteOrder()
	entries := make([]GroupEntry, 0, n)
	for i := 0; i < n; i++ {
		e := raw[i*entrySize : (i+1)*entrySize]
		entry := GroupEntry{
			Name:    names.String(binary.DecodeUint(order, e[:osize])),
			Address: binary.DecodeUint(order, e[osize:2*osize]),
		}
		if binary.DecodeUint(order, e[2*osize:2*osize+4]) == cacheSoftLink {
			scratch := e[2*osize+8:]
			entry.SoftLink = names.String(binary.DecodeUint(order, scratch[:4]))
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
