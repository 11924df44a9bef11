package hdf5

import (
	"fmt"
	"path"
	"reflect"

	"github.com/robert-malhotra/go-dotthz/internal/dtype"
	"github.com/robert-malhotra/go-dotthz/internal/layout"
	"github.com/robert-malhotra/go-dotthz/internal/message"
	"github.com/robert-malhotra/go-dotthz/internal/object"
)

// Dataset is a typed N-dimensional array in an HDF5 file. Datasets
// returned by CreateDataset describe what was written and cannot be read
// back until the file is reopened.
type Dataset struct {
	file      *File
	path      string
	header    *object.Header
	dataspace *message.Dataspace
	datatype  *message.Datatype
	layout    *message.Layout
	pipeline  *message.FilterPipeline
}

func newDataset(f *File, path string, header *object.Header) (*Dataset, error) {
	ds := &Dataset{
		file:      f,
		path:      path,
		header:    header,
		dataspace: header.Dataspace(),
		datatype:  header.Datatype(),
		layout:    header.Layout(),
		pipeline:  header.FilterPipeline(),
	}
	var missing string
	switch {
	case ds.dataspace == nil:
		missing = "dataspace"
	case ds.datatype == nil:
		missing = "datatype"
	case ds.layout == nil:
		missing = "layout"
	default:
		return ds, nil
	}
	return nil, fmt.Errorf("dataset %s: %w: no %s message", path, ErrNotDataset, missing)
}

// Name returns the last component of the dataset's path, the name it is
// linked under in its parent group.
func (d *Dataset) Name() string { return path.Base(d.path) }

// Path returns the absolute path of the dataset within the file, for example
// "/measurement/ds1".
func (d *Dataset) Path() string { return d.path }

// Shape returns the dimensions, slowest varying first, or nil for a scalar.
// A dataset with a zero dimension has a non-nil shape and no elements.
func (d *Dataset) Shape() []uint64 {
	if d.dataspace.IsScalar() {
		return nil
	}
	return d.dataspace.Dims
}

// NumElements returns the number of elements: the product of Shape, 1 for
// a scalar and 0 when any dimension is zero.
func (d *Dataset) NumElements() uint64 { return d.dataspace.NumElements() }

// IsScalar reports whether the dataset has a scalar dataspace, holding a
// single element with no dimensions. A one-element array of shape [1] is not
// scalar.
func (d *Dataset) IsScalar() bool { return d.dataspace.IsScalar() }

// Datatype describes the stored element type, for example "float64" or
// "string[12]".
func (d *Dataset) Datatype() string { return d.datatype.String() }

// GoType returns the Go type that corresponds to this dataset's datatype.
// Types without a Go equivalent fail with ErrUnsupportedType.
func (d *Dataset) GoType() (reflect.Type, error) {
	t, err := dtype.GoType(d.datatype)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, err)
	}
	return t, nil
}

// Read reads all elements into dest, a pointer to a slice of the dataset's
// Go type, in row-major order. Compressed chunks are inflated through the
// filter pipeline. Datasets returned by CreateDataset cannot be read.
func (d *Dataset) Read(dest any) error {
	if d.header == nil {
		return fmt.Errorf("dataset %s was not opened for reading", d.path)
	}
	raw, err := layout.Read(d.file.reader, d.layout, d.dataspace, d.datatype, d.pipeline)
	if err != nil {
		return fmt.Errorf("reading data: %w", err)
	}
	return dtype.Decode(d.datatype, raw, d.dataspace.NumElements(), dest)
}

// Attrs returns the attribute names for this dataset in storage order, or
// nil for a dataset returned by CreateDataset.
func (d *Dataset) Attrs() []string {
	if d.header == nil {
		return nil
	}
	return attrNames(d.header.Attributes())
}

// Attr returns an attribute by name, or nil if not found.
func (d *Dataset) Attr(name string) *Attribute {
	if d.header == nil {
		return nil
	}
	return findAttr(d.header.Attributes(), name, d.file.reader)
}
