package heap

import (
	"bytes"
	"fmt"

	"github.com/robert-malhotra/go-dotthz/internal/binary"
)

// LocalHeap is a version 0 local heap. Symbol table groups store their
// member names in one.
type LocalHeap struct {
	DataAddress uint64
	data        []byte
}

/*
Local heap header:

	4   "HEAP"
	1   version (0)
	3   reserved
	L   data segment size
	L   offset to head of free list
	O   data segment address
*/

// ReadLocalHeap reads the local heap whose header is at address.
func ReadLocalHeap(r *binary.Reader, address uint64) (*LocalHeap, error) {
	hr := r.At(int64(address))

	sig, err := hr.ReadBytes(4)
	if err != nil {
		return nil, fmt.Errorf("reading local heap signature: %w", err)
	}
	if string(sig) != "HEAP" {
		return nil, fmt.Errorf("invalid local heap signature %q at 0x%x", sig, address)
	}
	version, err := hr.ReadUint8()
	if err != nil {
		return nil, err
	}
	if version != 0 {
		return nil, fmt.Errorf("unsupported local heap version %d", version)
	}
	hr.Skip(3)

	size, err := hr.ReadLength()
	if err != nil {
		return nil, err
	}
	if _, err := hr.ReadLength(); err != nil {
		return nil, err
	}
	dataAddr, err := hr.ReadOffset()
	if err != nil {
		return nil, err
	}

	data, err := r.At(int64(dataAddr)).ReadBytes(int(size))
	if err != nil {
		return nil, fmt.Errorf("reading local heap data: %w", err)
	}
	return &LocalHeap{DataAddress: dataAddr, data: data}, nil
}

// String returns the NUL-terminated string at offset, or "" when offset is
// outside the data segment.
func (h *LocalHeap) String(offset uint64) string {
	if offset >= uint64(len(h.data)) {
		return ""
	}
	s := h.data[offset:]
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return string(s)
}
