package message

import "fmt"

// Filter IDs registered with the HDF Group that appear in this package's
// messages.
const (
	FilterDeflate     uint16 = 1
	FilterShuffle     uint16 = 2
	FilterFletcher32  uint16 = 3
	FilterSzip        uint16 = 4
	FilterNbit        uint16 = 5
	FilterScaleOffset uint16 = 6
)

// Filter is one stage of a filter pipeline.
type Filter struct {
	ID         uint16
	Name       string
	Flags      uint16
	ClientData []uint32
}

// Optional reports whether a chunk may skip this filter.
func (f Filter) Optional() bool { return f.Flags&0x01 != 0 }

// FilterPipeline lists the filters applied, in order, when chunks are
// written.
type FilterPipeline struct {
	Version uint8
	Filters []Filter
}

func (m *FilterPipeline) Type() Type { return TypeFilterPipeline }

/*
	1   version
	1   number of filters
	6   reserved (v1 only)

Each filter:

	2   ID
	2   name length (v2: only present for IDs >= 256)
	2   flags
	2   number of client data values
	*   name, NUL terminated (v1: padded to 8)
	4*  client data (v1: padded to an even count)
*/

func parseFilterPipeline(c *cursor) *FilterPipeline {
	m := &FilterPipeline{Version: c.u8()}
	if m.Version != 1 && m.Version != 2 {
		c.fail(fmt.Errorf("%w: filter pipeline version %d", ErrVersion, m.Version))
		return m
	}
	n := int(c.u8())
	if m.Version == 1 {
		c.skip(6)
	}
	for i := 0; i < n && c.err == nil; i++ {
		var f Filter
		f.ID = c.u16()
		nameLen := 0
		if m.Version == 1 || f.ID >= 256 {
			nameLen = int(c.u16())
		}
		f.Flags = c.u16()
		nvals := int(c.u16())
		if nameLen > 0 {
			f.Name = cString(c.bytes(nameLen))
		}
		f.ClientData = make([]uint32, nvals)
		for j := range f.ClientData {
			f.ClientData[j] = c.u32()
		}
		if m.Version == 1 && nvals%2 == 1 {
			c.skip(4)
		}
		m.Filters = append(m.Filters, f)
	}
	return m
}
