package message

import (
	"bytes"

	"github.com/robert-malhotra/go-dotthz/internal/binary"
)

// cursor decodes the fields of a message body. The first read past the end
// records ErrTruncated; every later read returns zero values, so parsers
// check c.err once at the end.
type cursor struct {
	buf []byte
	pos int
	cfg binary.Config
	err error
}

func newCursor(data []byte, cfg binary.Config) *cursor {
	return &cursor{buf: data, cfg: cfg}
}

func (c *cursor) bytes(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || n > len(c.buf)-c.pos {
		c.err = ErrTruncated
		return nil
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b
}

func (c *cursor) uint(n int) uint64 {
	b := c.bytes(n)
	if b == nil {
		return 0
	}
	return binary.DecodeUint(c.cfg.ByteOrder, b)
}

func (c *cursor) u8() uint8 { return uint8(c.uint(1)) }
func (c *cursor) u16() uint16 { return uint16(c.uint(2)) }
func (c *cursor) u32() uint32 { return uint32(c.uint(4)) }
func (c *cursor) u64() uint64 { return c.uint(8) }
func (c *cursor) offset() uint64 { return c.uint(c.cfg.OffsetSize) }
func (c *cursor) length() uint64 { return c.uint(c.cfg.LengthSize) }

func (c *cursor) skip(n int) { c.bytes(n) }

// align skips to the next multiple of 8 bytes counted from start.
func (c *cursor) align(start int) {
	if rem := (c.pos - start) % 8; rem != 0 {
		c.skip(8 - rem)
	}
}

// rest returns the unread bytes.
func (c *cursor) rest() []byte {
	if c.err != nil {
		return nil
	}
	b := c.buf[c.pos:]
	c.pos = len(c.buf)
	return b
}

func (c *cursor) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// cString returns b up to its first NUL.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// encoding accumulates an encoded message body.
type encoding struct {
	buf []byte
	cfg binary.Config
}

func (e *encoding) uint(v uint64, n int) {
	b := make([]byte, n)
	binary.EncodeUint(e.cfg.ByteOrder, b, v)
	e.buf = append(e.buf, b...)
}

func (e *encoding) u8(v uint8) { e.buf = append(e.buf, v) }
func (e *encoding) u16(v uint16) { e.uint(uint64(v), 2) }
func (e *encoding) u32(v uint32) { e.uint(uint64(v), 4) }
func (e *encoding) bytes(b []byte) { e.buf = append(e.buf, b...) }
func (e *encoding) offset(v uint64) { e.uint(v, e.cfg.OffsetSize) }
func (e *encoding) length(v uint64) { e.uint(v, e.cfg.LengthSize) }

// undefined writes the undefined address.
func (e *encoding) undefined() {
	for i := 0; i < e.cfg.OffsetSize; i++ {
		e.buf = append(e.buf, 0xff)
	}
}

// sub encodes a nested message with the same configuration.
func (e *encoding) sub(m encoder) []byte {
	s := &encoding{cfg: e.cfg}
	m.encode(s)
	return s.buf
}
