package dotthz

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Container is the in-memory form of a dotTHz file: measurements keyed by
// group name, in file order.
type Container struct {
	Groups *orderedmap.OrderedMap[string, *Measurement]
}

// NewContainer returns an empty container.
func NewContainer() *Container {
	return &Container{Groups: orderedmap.New[string, *Measurement]()}
}

// Len returns the number of measurements.
func (c *Container) Len() int {
	if c == nil || c.Groups == nil {
		return 0
	}
	return c.Groups.Len()
}

// Measurement returns the measurement stored under name.
func (c *Container) Measurement(name string) (*Measurement, bool) {
	if c.Len() == 0 {
		return nil, false
	}
	return c.Groups.Get(name)
}

// Equal reports whether both containers hold equal measurements under the
// same names in the same order.
func (c *Container) Equal(o *Container) bool {
	if c.Len() != o.Len() {
		return false
	}
	if c.Len() == 0 {
		return true
	}
	for pa, pb := c.Groups.Oldest(), o.Groups.Oldest(); pa != nil; pa, pb = pa.Next(), pb.Next() {
		if pa.Key != pb.Key || !pa.Value.Equal(pb.Value) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of c.
func (c *Container) Clone() *Container {
	out := NewContainer()
	if c.Len() == 0 {
		return out
	}
	for p := c.Groups.Oldest(); p != nil; p = p.Next() {
		out.Groups.Set(p.Key, p.Value.Clone())
	}
	return out
}

// Measurement is one terahertz measurement: its metadata and its datasets
// keyed by name, in file order.
type Measurement struct {
	MetaData MetaData
	Datasets *orderedmap.OrderedMap[string, Dataset]
}

// NewMeasurement returns a measurement with the given metadata and no
// datasets.
func NewMeasurement(md MetaData) *Measurement {
	return &Measurement{
		MetaData: md,
		Datasets: orderedmap.New[string, Dataset](),
	}
}

// NumDatasets returns the number of datasets.
func (m *Measurement) NumDatasets() int {
	if m == nil || m.Datasets == nil {
		return 0
	}
	return m.Datasets.Len()
}

// Dataset returns the dataset stored under name.
func (m *Measurement) Dataset(name string) (Dataset, bool) {
	if m.NumDatasets() == 0 {
		return Dataset{}, false
	}
	return m.Datasets.Get(name)
}

// Equal compares metadata and datasets, including dataset order.
func (m *Measurement) Equal(o *Measurement) bool {
	if m == nil || o == nil {
		return m == o
	}
	if !m.MetaData.Equal(o.MetaData) || m.NumDatasets() != o.NumDatasets() {
		return false
	}
	if m.NumDatasets() == 0 {
		return true
	}
	for pa, pb := m.Datasets.Oldest(), o.Datasets.Oldest(); pa != nil; pa, pb = pa.Next(), pb.Next() {
		if pa.Key != pb.Key || !pa.Value.Equal(pb.Value) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of m.
func (m *Measurement) Clone() *Measurement {
	if m == nil {
		return nil
	}
	out := NewMeasurement(m.MetaData.Clone())
	if m.NumDatasets() == 0 {
		return out
	}
	for p := m.Datasets.Oldest(); p != nil; p = p.Next() {
		out.Datasets.Set(p.Key, p.Value.Clone())
	}
	return out
}
