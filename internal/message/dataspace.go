package message

import "fmt"

// SpaceKind is the dataspace class.
type SpaceKind uint8

const (
	SpaceScalar SpaceKind = 0
	SpaceSimple SpaceKind = 1
	SpaceNull   SpaceKind = 2
)

// Dataspace gives the shape of a dataset or attribute.
type Dataspace struct {
	Version uint8
	Kind    SpaceKind
	Dims    []uint64
	MaxDims []uint64 // nil when equal to Dims
}

func (m *Dataspace) Type() Type { return TypeDataspace }

// NewDataspace returns a simple dataspace with the given dimensions.
func NewDataspace(dims ...uint64) *Dataspace {
	return &Dataspace{Version: 2, Kind: SpaceSimple, Dims: dims}
}

// NewScalarDataspace returns a dataspace holding exactly one element.
func NewScalarDataspace() *Dataspace {
	return &Dataspace{Version: 2, Kind: SpaceScalar}
}

func (m *Dataspace) Rank() int { return len(m.Dims) }

func (m *Dataspace) IsScalar() bool { return m.Kind == SpaceScalar }

// NumElements returns the number of elements: 1 for a scalar, 0 for a null
// dataspace.
func (m *Dataspace) NumElements() uint64 {
	switch m.Kind {
	case SpaceScalar:
		return 1
	case SpaceNull:
		return 0
	}
	n := uint64(1)
	for _, d := range m.Dims {
		n *= d
	}
	return n
}

/*
Version 1:

	1   version
	1   rank
	1   flags (0x01 max dims present, 0x02 permutation present)
	5   reserved
	L*  dims, max dims, permutation

Version 2:

	1   version
	1   rank
	1   flags
	1   kind
	L*  dims, max dims
*/

func parseDataspace(c *cursor) *Dataspace {
	m := &Dataspace{Version: c.u8()}
	rank := int(c.u8())
	flags := c.u8()
	switch m.Version {
	case 1:
		c.skip(5)
		m.Kind = SpaceSimple
		if rank == 0 {
			m.Kind = SpaceScalar
		}
	case 2:
		m.Kind = SpaceKind(c.u8())
		if m.Kind > SpaceNull {
			c.fail(fmt.Errorf("unknown dataspace kind %d", m.Kind))
		}
	default:
		c.fail(fmt.Errorf("%w: dataspace version %d", ErrVersion, m.Version))
		return m
	}
	if rank > 32 {
		c.fail(fmt.Errorf("dataspace rank %d exceeds 32", rank))
		return m
	}
	if rank > 0 {
		m.Dims = make([]uint64, rank)
		for i := range m.Dims {
			m.Dims[i] = c.length()
		}
	}
	if flags&0x01 != 0 {
		m.MaxDims = make([]uint64, rank)
		for i := range m.MaxDims {
			m.MaxDims[i] = c.length()
		}
	}
	return m
}

func (m *Dataspace) encode(e *encoding) {
	var flags uint8
	if m.MaxDims != nil {
		flags |= 0x01
	}
	e.u8(2)
	e.u8(uint8(len(m.Dims)))
	e.u8(flags)
	e.u8(uint8(m.Kind))
	for _, d := range m.Dims {
		e.length(d)
	}
	for _, d := range m.MaxDims {
		e.length(d)
	}
}
