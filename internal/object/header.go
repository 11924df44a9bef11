package object

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-dotthz/internal/binary"
	"github.com/robert-malhotra/go-dotthz/internal/message"
)

var (
	ErrInvalidHeader    = errors.New("invalid object header")
	ErrChecksumMismatch = errors.New("object header checksum mismatch")
)

// maxBlocks bounds the continuation chain of one header.
const maxBlocks = 4096

// Header is a parsed object header. Continuation and NIL messages are
// consumed while reading and do not appear in Messages.
type Header struct {
	Version  uint8
	Address  uint64
	Messages []message.Message
}

/*
Version 1 prefix, messages start 16 bytes in:

	1   version (1)
	1   reserved
	2   number of messages
	4   reference count
	4   size of the first block
	4   reserved (alignment)

Version 1 message: 2 type, 2 size, 1 flags, 3 reserved, data.

Version 2 prefix:

	4   "OHDR"
	1   version (2)
	1   flags: bits 0-1 width of the block size, 0x04 messages carry a
	    creation order, 0x10 attribute phase change values present,
	    0x20 times present
	16  access, modification, change and birth time (if 0x20)
	4   max compact / min dense attributes (if 0x10)
	*   size of the first block
	*   messages, then a gap shorter than a message header
	4   checksum

Version 2 message: 1 type, 2 size, 1 flags, 2 creation order (if 0x04),
data.
*/

// Read parses the object header at addr, following continuation blocks.
func Read(r *binary.Reader, addr uint64) (*Header, error) {
	if addr == 0 || r.IsUndefinedOffset(addr) {
		return nil, fmt.Errorf("%w: address 0x%x", ErrInvalidHeader, addr)
	}
	sig, err := r.At(int64(addr)).ReadBytes(4)
	if err != nil {
		return nil, fmt.Errorf("reading object header at 0x%x: %w", addr, err)
	}

	h := &Header{Address: addr}
	var block0 []byte
	var flags uint8
	switch {
	case string(sig) == "OHDR":
		h.Version = 2
		block0, flags, err = readPrefixV2(r, addr)
	case sig[0] == 1:
		h.Version = 1
		block0, err = readPrefixV1(r, addr)
	default:
		return nil, fmt.Errorf("%w: unknown signature % x at 0x%x", ErrInvalidHeader, sig, addr)
	}
	if err != nil {
		return nil, fmt.Errorf("object header at 0x%x: %w", addr, err)
	}

	pending := [][]byte{block0}
	seen := map[uint64]bool{addr: true}
	for len(pending) > 0 {
		block := pending[0]
		pending = pending[1:]

		conts, err := h.parseBlock(r, block, flags)
		if err != nil {
			return nil, fmt.Errorf("object header at 0x%x: %w", addr, err)
		}
		for _, c := range conts {
			if seen[c.Offset] || len(seen) > maxBlocks {
				return nil, fmt.Errorf("%w: continuation loop at 0x%x", ErrInvalidHeader, c.Offset)
			}
			seen[c.Offset] = true
			next, err := h.readContinuation(r, c)
			if err != nil {
				return nil, fmt.Errorf("object header at 0x%x: %w", addr, err)
			}
			pending = append(pending, next)
		}
	}
	return h, nil
}

func readPrefixV1(r *binary.Reader, addr uint64) ([]byte, error) {
	hr := r.At(int64(addr) + 8)
	size, err := hr.ReadUint32()
	if err != nil {
		return nil, err
	}
	return r.At(int64(addr) + 16).ReadBytes(int(size))
}

func readPrefixV2(r *binary.Reader, addr uint64) ([]byte, uint8, error) {
	hr := r.At(int64(addr) + 4)
	version, err := hr.ReadUint8()
	if err != nil {
		return nil, 0, err
	}
	if version != 2 {
		return nil, 0, fmt.Errorf("%w: version %d", ErrInvalidHeader, version)
	}
	flags, err := hr.ReadUint8()
	if err != nil {
		return nil, 0, err
	}
	if flags&0x20 != 0 {
		hr.Skip(16)
	}
	if flags&0x10 != 0 {
		hr.Skip(4)
	}
	size, err := hr.ReadUintN(1 << (flags & 0x03))
	if err != nil {
		return nil, 0, err
	}

	prefix := int(hr.Pos() - int64(addr))
	raw, err := r.At(int64(addr)).ReadBytes(prefix + int(size) + 4)
	if err != nil {
		return nil, 0, err
	}
	if err := verify(r, raw); err != nil {
		return nil, 0, err
	}
	return raw[prefix : len(raw)-4], flags, nil
}

func (h *Header) readContinuation(r *binary.Reader, c *message.Continuation) ([]byte, error) {
	raw, err := r.At(int64(c.Offset)).ReadBytes(int(c.Length))
	if err != nil {
		return nil, fmt.Errorf("reading continuation block at 0x%x: %w", c.Offset, err)
	}
	if h.Version == 1 {
		return raw, nil
	}
	if len(raw) < 8 || string(raw[:4]) != "OCHK" {
		return nil, fmt.Errorf("%w: bad continuation block at 0x%x", ErrInvalidHeader, c.Offset)
	}
	if err := verify(r, raw); err != nil {
		return nil, err
	}
	return raw[4 : len(raw)-4], nil
}

// verify checks the trailing checksum of a version 2 block.
func verify(r *binary.Reader, raw []byte) error {
	n := len(raw) - 4
	stored := uint32(binary.DecodeUint(r.ByteOrder(), raw[n:]))
	if sum := binary.Lookup3Checksum(raw[:n]); sum != stored {
		return fmt.Errorf("%w: stored 0x%08x, computed 0x%08x", ErrChecksumMismatch, stored, sum)
	}
	return nil
}

// parseBlock appends the messages of one block to h and returns the
// continuations it found.
func (h *Header) parseBlock(r *binary.Reader, block []byte, flags uint8) ([]*message.Continuation, error) {
	var conts []*message.Continuation
	order := r.ByteOrder()
	pos := 0
	for {
		var typ message.Type
		var size int
		var msgFlags uint8
		if h.Version == 1 {
			if len(block)-pos < 8 {
				break
			}
			typ = message.Type(binary.DecodeUint(order, block[pos:pos+2]))
			size = int(binary.DecodeUint(order, block[pos+2:pos+4]))
			msgFlags = block[pos+4]
			pos += 8
		} else {
			hdr := 4
			if flags&0x04 != 0 {
				hdr += 2
			}
			if len(block)-pos < hdr {
				break
			}
			typ = message.Type(block[pos])
			size = int(binary.DecodeUint(order, block[pos+1:pos+3]))
			msgFlags = block[pos+3]
			pos += hdr
		}
		if size > len(block)-pos {
			return nil, fmt.Errorf("%w: %s message of %d bytes overruns its block", ErrInvalidHeader, typ, size)
		}
		data := block[pos : pos+size]
		pos += size

		if typ == message.TypeNIL {
			continue
		}
		msg, err := message.Parse(typ, msgFlags, data, r)
		if err != nil {
			return nil, err
		}
		if c, ok := msg.(*message.Continuation); ok {
			conts = append(conts, c)
			continue
		}
		h.Messages = append(h.Messages, msg)
	}
	return conts, nil
}

func first[T message.Message](h *Header) T {
	for _, msg := range h.Messages {
		if m, ok := msg.(T); ok {
			return m
		}
	}
	var zero T
	return zero
}

func all[T message.Message](h *Header) []T {
	var out []T
	for _, msg := range h.Messages {
		if m, ok := msg.(T); ok {
			out = append(out, m)
		}
	}
	return out
}

// Dataspace returns the dataspace message, or nil.
func (h *Header) Dataspace() *message.Dataspace { return first[*message.Dataspace](h) }

// Datatype returns the datatype message, or nil.
func (h *Header) Datatype() *message.Datatype { return first[*message.Datatype](h) }

// Layout returns the data layout message, or nil.
func (h *Header) Layout() *message.Layout { return first[*message.Layout](h) }

// FilterPipeline returns the filter pipeline message, or nil.
func (h *Header) FilterPipeline() *message.FilterPipeline {
	return first[*message.FilterPipeline](h)
}

// SymbolTable returns the symbol table message of an old-style group, or nil.
func (h *Header) SymbolTable() *message.SymbolTable { return first[*message.SymbolTable](h) }

// LinkInfo returns the link info message of a new-style group, or nil.
func (h *Header) LinkInfo() *message.LinkInfo { return first[*message.LinkInfo](h) }

// AttributeInfo returns the attribute info message, or nil.
func (h *Header) AttributeInfo() *message.AttributeInfo {
	return first[*message.AttributeInfo](h)
}

// Links returns the link messages in header order.
func (h *Header) Links() []*message.Link { return all[*message.Link](h) }

// Attributes returns the attribute messages in header order.
func (h *Header) Attributes() []*message.Attribute { return all[*message.Attribute](h) }

// IsDataset reports whether the header describes a dataset.
func (h *Header) IsDataset() bool {
	return h.Dataspace() != nil && h.Layout() != nil
}
