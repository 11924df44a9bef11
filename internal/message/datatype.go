package message

import (
	"errors"
	"fmt"
)

// DatatypeClass is the class of a datatype.
type DatatypeClass uint8

const (
	ClassFixedPoint DatatypeClass = 0
	ClassFloatPoint DatatypeClass = 1
	ClassTime       DatatypeClass = 2
	ClassString     DatatypeClass = 3
	ClassBitfield   DatatypeClass = 4
	ClassOpaque     DatatypeClass = 5
	ClassCompound   DatatypeClass = 6
	ClassReference  DatatypeClass = 7
	ClassEnum       DatatypeClass = 8
	ClassVarLen     DatatypeClass = 9
	ClassArray      DatatypeClass = 10
)

var classNames = [...]string{
	"integer", "float", "time", "string", "bitfield", "opaque",
	"compound", "reference", "enum", "variable-length", "array",
}

func (c DatatypeClass) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("class %d", uint8(c))
}

// StringPadding says how a fixed-length string fills its slot.
type StringPadding uint8

const (
	PadNullTerm StringPadding = 0
	PadNullPad  StringPadding = 1
	PadSpace    StringPadding = 2
)

// Charset is a string encoding.
type Charset uint8

const (
	CharsetASCII Charset = 0
	CharsetUTF8  Charset = 1
)

// Datatype describes the elements of a dataset or attribute.
type Datatype struct {
	Class   DatatypeClass
	Version uint8
	Size    uint32

	// Integers and floats.
	BigEndian bool
	Signed    bool
	BitOffset uint16
	Precision uint16

	// Floats.
	SignLocation uint8
	ExpLocation  uint8
	ExpSize      uint8
	MantLocation uint8
	MantSize     uint8
	ExpBias      uint32

	// Fixed-length strings, and variable-length strings.
	Padding StringPadding
	Charset Charset

	// VarLenString is set for a variable-length string; a variable-length
	// sequence has it clear.
	VarLenString bool

	// Base is the parent type of an enum, variable-length or array type.
	Base *Datatype

	// Props holds the raw class properties.
	Props []byte
}

func (m *Datatype) Type() Type { return TypeDatatype }

// NewIntegerDatatype returns a little-endian integer type of size bytes.
func NewIntegerDatatype(size uint32, signed bool) *Datatype {
	return &Datatype{
		Class:     ClassFixedPoint,
		Version:   1,
		Size:      size,
		Signed:    signed,
		Precision: uint16(size * 8),
	}
}

// NewFloatDatatype returns a little-endian IEEE 754 type of 4 or 8 bytes.
func NewFloatDatatype(size uint32) *Datatype {
	dt := &Datatype{
		Class:        ClassFloatPoint,
		Version:      1,
		Size:         size,
		Precision:    uint16(size * 8),
		SignLocation: uint8(size*8 - 1),
	}
	if size == 4 {
		dt.ExpLocation, dt.ExpSize, dt.MantSize, dt.ExpBias = 23, 8, 23, 127
	} else {
		dt.ExpLocation, dt.ExpSize, dt.MantSize, dt.ExpBias = 52, 11, 52, 1023
	}
	return dt
}

// NewStringDatatype returns a fixed-length string type of size bytes.
func NewStringDatatype(size uint32, pad StringPadding, cs Charset) *Datatype {
	return &Datatype{
		Class:   ClassString,
		Version: 1,
		Size:    size,
		Padding: pad,
		Charset: cs,
	}
}

// IsIEEE reports whether a float type has the standard binary32 or binary64
// layout.
func (m *Datatype) IsIEEE() bool {
	if m.Class != ClassFloatPoint || m.BitOffset != 0 || m.MantLocation != 0 {
		return false
	}
	switch m.Size {
	case 4:
		return m.Precision == 32 && m.ExpLocation == 23 && m.ExpSize == 8 &&
			m.MantSize == 23 && m.ExpBias == 127 && m.SignLocation == 31
	case 8:
		return m.Precision == 64 && m.ExpLocation == 52 && m.ExpSize == 11 &&
			m.MantSize == 52 && m.ExpBias == 1023 && m.SignLocation == 63
	}
	return false
}

// IsString reports whether values of this type are fixed- or
// variable-length strings.
func (m *Datatype) IsString() bool {
	return m.Class == ClassString || (m.Class == ClassVarLen && m.VarLenString)
}

func (m *Datatype) String() string {
	switch m.Class {
	case ClassFixedPoint:
		if m.Signed {
			return fmt.Sprintf("int%d", m.Size*8)
		}
		return fmt.Sprintf("uint%d", m.Size*8)
	case ClassFloatPoint:
		return fmt.Sprintf("float%d", m.Size*8)
	case ClassString:
		return fmt.Sprintf("string[%d]", m.Size)
	case ClassVarLen:
		if m.VarLenString {
			return "vlen string"
		}
	case ClassEnum:
		if m.Base != nil {
			return "enum " + m.Base.String()
		}
	}
	return m.Class.String()
}

/*
Common header, then class properties:

	1   class (low 4 bits) and version (high 4 bits)
	3   class bit field
	4   size
	*   properties

Integer properties: bit offset (2), precision (2).
Float properties: bit offset (2), precision (2), exponent location (1),
exponent size (1), mantissa location (1), mantissa size (1), bias (4).
Enum, variable-length and array properties begin (array: after the
dimensions) with the base type.
*/

func parseDatatype(c *cursor) *Datatype {
	classVersion := c.u8()
	bits := uint32(c.uint(3))
	m := &Datatype{
		Class:   DatatypeClass(classVersion & 0x0f),
		Version: classVersion >> 4,
		Size:    c.u32(),
	}
	if m.Version < 1 || m.Version > 4 {
		c.fail(fmt.Errorf("%w: datatype version %d", ErrVersion, m.Version))
		return m
	}

	start := c.pos
	switch m.Class {
	case ClassFixedPoint, ClassBitfield:
		m.BigEndian = bits&0x01 != 0
		m.Signed = bits&0x08 != 0
		m.BitOffset = c.u16()
		m.Precision = c.u16()
	case ClassFloatPoint:
		m.BigEndian = bits&0x01 != 0
		if bits&0x40 != 0 {
			c.fail(errors.New("VAX byte order is not supported"))
		}
		m.SignLocation = uint8(bits >> 8)
		m.BitOffset = c.u16()
		m.Precision = c.u16()
		m.ExpLocation = c.u8()
		m.ExpSize = c.u8()
		m.MantLocation = c.u8()
		m.MantSize = c.u8()
		m.ExpBias = c.u32()
	case ClassString:
		m.Padding = StringPadding(bits & 0x0f)
		m.Charset = Charset((bits >> 4) & 0x0f)
	case ClassVarLen:
		m.VarLenString = bits&0x0f == 1
		m.Padding = StringPadding((bits >> 4) & 0x0f)
		m.Charset = Charset((bits >> 8) & 0x0f)
		m.Base = parseDatatype(c)
	case ClassEnum:
		m.Base = parseDatatype(c)
		c.rest()
	default:
		c.rest()
	}
	if c.err == nil {
		m.Props = c.buf[start:c.pos]
	}
	return m
}

func (m *Datatype) encode(e *encoding) {
	var bits uint32
	var props []byte
	switch m.Class {
	case ClassFixedPoint:
		if m.BigEndian {
			bits |= 0x01
		}
		if m.Signed {
			bits |= 0x08
		}
		p := &encoding{cfg: e.cfg}
		p.u16(m.BitOffset)
		p.u16(m.Precision)
		props = p.buf
	case ClassFloatPoint:
		if m.BigEndian {
			bits |= 0x01
		}
		// Mantissa normalization 2: the leading 1 is implied.
		bits |= 2 << 4
		bits |= uint32(m.SignLocation) << 8
		p := &encoding{cfg: e.cfg}
		p.u16(m.BitOffset)
		p.u16(m.Precision)
		p.u8(m.ExpLocation)
		p.u8(m.ExpSize)
		p.u8(m.MantLocation)
		p.u8(m.MantSize)
		p.u32(m.ExpBias)
		props = p.buf
	case ClassString:
		bits = uint32(m.Padding) | uint32(m.Charset)<<4
	default:
		props = m.Props
	}

	version := m.Version
	if version == 0 {
		version = 1
	}
	e.u8(uint8(m.Class) | version<<4)
	e.uint(uint64(bits), 3)
	e.u32(m.Size)
	e.bytes(props)
}
