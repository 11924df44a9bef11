package message

import (
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-dotthz/internal/binary"
)

// Type identifies a header message.
type Type uint16

const (
	TypeNIL            Type = 0x00
	TypeDataspace      Type = 0x01
	TypeLinkInfo       Type = 0x02
	TypeDatatype       Type = 0x03
	TypeFillValue      Type = 0x05
	TypeLink           Type = 0x06
	TypeDataLayout     Type = 0x08
	TypeGroupInfo      Type = 0x0A
	TypeFilterPipeline Type = 0x0B
	TypeAttribute      Type = 0x0C
	TypeContinuation   Type = 0x10
	TypeSymbolTable    Type = 0x11
	TypeAttributeInfo  Type = 0x15
)

var typeNames = map[Type]string{
	TypeNIL:            "nil",
	TypeDataspace:      "dataspace",
	TypeLinkInfo:       "link info",
	TypeDatatype:       "datatype",
	TypeFillValue:      "fill value",
	TypeLink:           "link",
	TypeDataLayout:     "data layout",
	TypeGroupInfo:      "group info",
	TypeFilterPipeline: "filter pipeline",
	TypeAttribute:      "attribute",
	TypeContinuation:   "continuation",
	TypeSymbolTable:    "symbol table",
	TypeAttributeInfo:  "attribute info",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("message 0x%02x", uint16(t))
}

// Header message flags.
const (
	FlagConstant = 0x01
	FlagShared   = 0x02
)

var (
	ErrTruncated = errors.New("message truncated")
	ErrVersion   = errors.New("unsupported message version")
	ErrShared    = errors.New("shared messages are not supported")
)

// Message is a parsed header message.
type Message interface {
	Type() Type
}

// Unknown holds the body of a message this package does not interpret.
type Unknown struct {
	MsgType Type
	Flags   uint8
	Data    []byte
}

func (m *Unknown) Type() Type { return m.MsgType }

// Parse decodes the body of a message of type typ. r supplies the file's
// offset and length sizes.
func Parse(typ Type, flags uint8, data []byte, r *binary.Reader) (Message, error) {
	if flags&FlagShared != 0 {
		switch typ {
		case TypeDatatype, TypeDataspace, TypeFilterPipeline, TypeAttribute:
			return nil, fmt.Errorf("%s: %w", typ, ErrShared)
		}
		return &Unknown{MsgType: typ, Flags: flags, Data: data}, nil
	}

	c := newCursor(data, r.Config())
	var msg Message
	switch typ {
	case TypeDataspace:
		msg = parseDataspace(c)
	case TypeLinkInfo:
		msg = parseLinkInfo(c)
	case TypeDatatype:
		msg = parseDatatype(c)
	case TypeLink:
		msg = parseLink(c)
	case TypeDataLayout:
		msg = parseLayout(c)
	case TypeFilterPipeline:
		msg = parseFilterPipeline(c)
	case TypeAttribute:
		msg = parseAttribute(c)
	case TypeContinuation:
		msg = &Continuation{Offset: c.offset(), Length: c.length()}
	case TypeSymbolTable:
		msg = &SymbolTable{BTreeAddress: c.offset(), LocalHeapAddress: c.offset()}
	case TypeAttributeInfo:
		msg = parseAttributeInfo(c)
	default:
		return &Unknown{MsgType: typ, Flags: flags, Data: data}, nil
	}
	if c.err != nil {
		return nil, fmt.Errorf("%s: %w", typ, c.err)
	}
	return msg, nil
}

// Continuation points at a further block of header messages.
type Continuation struct {
	Offset uint64
	Length uint64
}

func (m *Continuation) Type() Type { return TypeContinuation }

// SymbolTable marks an old-style group whose members are found through a
// version 1 B-tree and a local heap.
type SymbolTable struct {
	BTreeAddress     uint64
	LocalHeapAddress uint64
}

func (m *SymbolTable) Type() Type { return TypeSymbolTable }

// encoder is implemented by messages that can be written.
type encoder interface {
	Message
	encode(e *encoding)
}

// Encode returns the body of msg as written to an object header.
func Encode(msg Message, cfg binary.Config) ([]byte, error) {
	m, ok := msg.(encoder)
	if !ok {
		return nil, fmt.Errorf("%s: encoding not supported", msg.Type())
	}
	e := &encoding{cfg: cfg}
	m.encode(e)
	return e.buf, nil
}
