package btree

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-dotthz/internal/binary"
)

// Node types.
const (
	nodeGroup = 0
	nodeChunk = 1
)

// maxDepth bounds the tree height followed before giving up.
const maxDepth = 32

var ErrInvalidNode = errors.New("invalid B-tree node")

/*
Node:

	4   "TREE"
	1   node type
	1   level (0 for leaves)
	2   entries used
	O   left sibling
	O   right sibling
	*   key 0, child 0, key 1, child 1, ... key N
*/

// visitFunc is called for each child of a leaf node with the key to its
// left.
type visitFunc func(key []byte, child uint64) error

// walk visits the leaf entries of the subtree at addr in key order.
func walk(r *binary.Reader, addr uint64, typ uint8, keySize int, depth int, visit visitFunc) error {
	if depth > maxDepth {
		return fmt.Errorf("%w: tree deeper than %d levels", ErrInvalidNode, maxDepth)
	}
	nr := r.At(int64(addr))
	head, err := nr.ReadBytes(8)
	if err != nil {
		return fmt.Errorf("reading B-tree node at 0x%x: %w", addr, err)
	}
	if string(head[:4]) != "TREE" {
		return fmt.Errorf("%w: signature %q at 0x%x", ErrInvalidNode, head[:4], addr)
	}
	if head[4] != typ {
		return fmt.Errorf("%w: node type %d at 0x%x, want %d", ErrInvalidNode, head[4], addr, typ)
	}
	level := head[5]
	entries := int(binary.DecodeUint(r.ByteOrder(), head[6:8]))
	nr.Skip(int64(2 * r.OffsetSize()))

	osize := r.OffsetSize()
	body, err := nr.ReadBytes(entries*(keySize+osize) + keySize)
	if err != nil {
		return fmt.Errorf("reading B-tree node at 0x%x: %w", addr, err)
	}
	for i := 0; i < entries; i++ {
		at := i * (keySize + osize)
		key := body[at : at+keySize]
		child := binary.DecodeUint(r.ByteOrder(), body[at+keySize:at+keySize+osize])
		if level > 0 {
			err = walk(r, child, typ, keySize, depth+1, visit)
		} else {
			err = visit(key, child)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
