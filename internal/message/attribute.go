package message

import (
	"fmt"
	"unicode/utf8"
)

// Attribute is a named value attached to a group or dataset.
type Attribute struct {
	Version     uint8
	Name        string
	NameCharset Charset
	Datatype    *Datatype
	Dataspace   *Dataspace
	Data        []byte
}

func (m *Attribute) Type() Type { return TypeAttribute }

// NewAttribute returns a version 3 attribute. data holds the encoded
// elements.
func NewAttribute(name string, dt *Datatype, ds *Dataspace, data []byte) *Attribute {
	cs := CharsetASCII
	for i := 0; i < len(name); i++ {
		if name[i] >= utf8.RuneSelf {
			cs = CharsetUTF8
			break
		}
	}
	return &Attribute{
		Version:     3,
		Name:        name,
		NameCharset: cs,
		Datatype:    dt,
		Dataspace:   ds,
		Data:        data,
	}
}

/*
	1   version
	1   reserved (v1), flags (v2, v3: 0x01 shared datatype, 0x02 shared dataspace)
	2   name size, NUL included
	2   datatype size
	2   dataspace size
	1   name charset (v3 only)
	*   name, datatype, dataspace; each padded to 8 bytes in v1
	*   data
*/

func parseAttribute(c *cursor) *Attribute {
	m := &Attribute{Version: c.u8()}
	if m.Version < 1 || m.Version > 3 {
		c.fail(fmt.Errorf("%w: attribute version %d", ErrVersion, m.Version))
		return m
	}
	flags := c.u8()
	nameSize := int(c.u16())
	dtSize := int(c.u16())
	dsSize := int(c.u16())
	if m.Version == 3 {
		m.NameCharset = Charset(c.u8())
	}
	if flags&0x03 != 0 {
		c.fail(ErrShared)
		return m
	}

	field := func(n int) []byte {
		start := c.pos
		b := c.bytes(n)
		if m.Version == 1 {
			c.align(start)
		}
		return b
	}
	m.Name = cString(field(nameSize))
	dtBytes := field(dtSize)
	dsBytes := field(dsSize)
	if c.err != nil {
		return m
	}

	dc := newCursor(dtBytes, c.cfg)
	m.Datatype = parseDatatype(dc)
	if dc.err != nil {
		c.fail(fmt.Errorf("attribute %q datatype: %w", m.Name, dc.err))
		return m
	}
	sc := newCursor(dsBytes, c.cfg)
	m.Dataspace = parseDataspace(sc)
	if sc.err != nil {
		c.fail(fmt.Errorf("attribute %q dataspace: %w", m.Name, sc.err))
		return m
	}

	want := m.Dataspace.NumElements() * uint64(m.Datatype.Size)
	data := c.rest()
	if uint64(len(data)) < want {
		c.fail(fmt.Errorf("attribute %q: %d data bytes, want %d: %w", m.Name, len(data), want, ErrTruncated))
		return m
	}
	m.Data = data[:want]
	return m
}

func (m *Attribute) encode(e *encoding) {
	dt := e.sub(m.Datatype)
	ds := e.sub(m.Dataspace)
	e.u8(3)
	e.u8(0)
	e.u16(uint16(len(m.Name) + 1))
	e.u16(uint16(len(dt)))
	e.u16(uint16(len(ds)))
	e.u8(uint8(m.NameCharset))
	e.bytes([]byte(m.Name))
	e.u8(0)
	e.bytes(dt)
	e.bytes(ds)
	e.bytes(m.Data)
}
