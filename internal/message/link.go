package message

import (
	"fmt"
	"unicode/utf8"
)

// LinkType distinguishes hard, soft and external links.
type LinkType uint8

const (
	LinkHard     LinkType = 0
	LinkSoft     LinkType = 1
	LinkExternal LinkType = 64
)

// Link is one named member of a group.
type Link struct {
	Name     string
	LinkType LinkType
	Charset  Charset

	// Address of the target object header (hard links).
	Address uint64

	// Target path (soft links) or object path within File (external links).
	Target string
	File   string

	CreationOrder    uint64
	HasCreationOrder bool
}

func (m *Link) Type() Type { return TypeLink }

// NewHardLink returns a hard link to the object header at addr.
func NewHardLink(name string, addr uint64) *Link {
	l := &Link{Name: name, LinkType: LinkHard, Address: addr}
	for i := 0; i < len(name); i++ {
		if name[i] >= utf8.RuneSelf {
			l.Charset = CharsetUTF8
			break
		}
	}
	return l
}

/*
	1   version (1)
	1   flags: bits 0-1 name length width (1, 2, 4, 8 bytes),
	    0x04 creation order present, 0x08 link type present,
	    0x10 charset present
	1   link type (if 0x08)
	8   creation order (if 0x04)
	1   charset (if 0x10)
	*   name length, name
	*   hard: O address; soft: 2 length, path;
	    external: 2 length, 1 flags, file NUL, path NUL
*/

func parseLink(c *cursor) *Link {
	m := &Link{}
	if v := c.u8(); v != 1 {
		c.fail(fmt.Errorf("%w: link version %d", ErrVersion, v))
		return m
	}
	flags := c.u8()
	if flags&0x08 != 0 {
		m.LinkType = LinkType(c.u8())
	}
	if flags&0x04 != 0 {
		m.CreationOrder = c.u64()
		m.HasCreationOrder = true
	}
	if flags&0x10 != 0 {
		m.Charset = Charset(c.u8())
	}
	nameLen := int(c.uint(1 << (flags & 0x03)))
	m.Name = string(c.bytes(nameLen))

	switch m.LinkType {
	case LinkHard:
		m.Address = c.offset()
	case LinkSoft:
		m.Target = string(c.bytes(int(c.u16())))
	case LinkExternal:
		info := c.bytes(int(c.u16()))
		if len(info) > 0 {
			file := cString(info[1:])
			m.File = file
			if rest := info[1+len(file):]; len(rest) > 1 {
				m.Target = cString(rest[1:])
			}
		}
	default:
		c.rest()
	}
	return m
}

func (m *Link) encode(e *encoding) {
	var width uint8
	switch n := len(m.Name); {
	case n > 0xffff:
		width = 2
	case n > 0xff:
		width = 1
	}
	flags := width
	if m.Charset != CharsetASCII {
		flags |= 0x10
	}
	e.u8(1)
	e.u8(flags)
	if flags&0x10 != 0 {
		e.u8(uint8(m.Charset))
	}
	e.uint(uint64(len(m.Name)), 1<<width)
	e.bytes([]byte(m.Name))
	e.offset(m.Address)
}

// LinkInfo is carried by new-style groups. A defined FractalHeapAddress
// means the links are stored densely instead of as Link messages. Encoding
// always writes undefined addresses.
type LinkInfo struct {
	MaxCreationIndex   uint64
	FractalHeapAddress uint64
	NameIndexAddress   uint64
}

func (m *LinkInfo) Type() Type { return TypeLinkInfo }

// NewLinkInfo returns link info for a group with compact link storage.
func NewLinkInfo() *LinkInfo {
	return &LinkInfo{}
}

func parseLinkInfo(c *cursor) *LinkInfo {
	m := &LinkInfo{}
	if v := c.u8(); v != 0 {
		c.fail(fmt.Errorf("%w: link info version %d", ErrVersion, v))
		return m
	}
	flags := c.u8()
	if flags&0x01 != 0 {
		m.MaxCreationIndex = c.u64()
	}
	m.FractalHeapAddress = c.offset()
	m.NameIndexAddress = c.offset()
	if flags&0x02 != 0 {
		c.offset()
	}
	return m
}

func (m *LinkInfo) encode(e *encoding) {
	e.u8(0)
	e.u8(0)
	e.undefined()
	e.undefined()
}

// GroupInfo is written next to LinkInfo in every new-style group; its
// defaults are used for link storage thresholds.
type GroupInfo struct{}

func (m *GroupInfo) Type() Type { return TypeGroupInfo }

func (m *GroupInfo) encode(e *encoding) {
	e.u8(0)
	e.u8(0)
}

// AttributeInfo is present when an object tracks attribute creation order
// or stores attributes densely.
type AttributeInfo struct {
	FractalHeapAddress uint64
	NameIndexAddress   uint64
}

func (m *AttributeInfo) Type() Type { return TypeAttributeInfo }

func parseAttributeInfo(c *cursor) *AttributeInfo {
	m := &AttributeInfo{}
	if v := c.u8(); v != 0 {
		c.fail(fmt.Errorf("%w: attribute info version %d", ErrVersion, v))
		return m
	}
	flags := c.u8()
	if flags&0x01 != 0 {
		c.u16()
	}
	m.FractalHeapAddress = c.offset()
	m.NameIndexAddress = c.offset()
	if flags&0x02 != 0 {
		c.offset()
	}
	return m
}
