package hdf5

import (
	binpkg "github.com/robert-malhotra/go-dotthz/internal/binary"
)

// FileOption configures Create.
type FileOption func(*createOptions)

type createOptions struct {
	cfg       binpkg.Config
	exclusive bool
}

// WithAddressSize sets the width in bytes of file addresses and lengths.
// Widths other than 2, 4 and 8 (the default) are ignored.
func WithAddressSize(n int) FileOption {
	return func(o *createOptions) {
		if n == 2 || n == 4 || n == 8 {
			o.cfg.OffsetSize = n
			o.cfg.LengthSize = n
		}
	}
}

// WithExclusive makes Create fail with fs.ErrExist rather than truncate an
// existing file.
func WithExclusive() FileOption {
	return func(o *createOptions) { o.exclusive = true }
}

// DatasetOption configures CreateDataset.
type DatasetOption func(*datasetOptions)

type datasetOptions struct {
	shape    []uint64
	shapeSet bool
	attrs    []attrValue
}

type attrValue struct {
	name  string
	value any
}

// WithShape stores a flat slice under the given dimensions instead of
// inferring them from nested slices. An empty shape stores a scalar.
func WithShape(dims ...uint64) DatasetOption {
	return func(o *datasetOptions) {
		o.shape = dims
		o.shapeSet = true
	}
}

// WithAttr attaches an attribute to the dataset being created. The value
// takes the same types as Group.SetAttr.
func WithAttr(name string, value any) DatasetOption {
	return func(o *datasetOptions) {
		o.attrs = append(o.attrs, attrValue{name, value})
	}
}
