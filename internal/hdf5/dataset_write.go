package hdf5

import (
	"fmt"
	"reflect"

	"github.com/robert-malhotra/go-dotthz/internal/dtype"
	"github.com/robert-malhotra/go-dotthz/internal/message"
	"github.com/robert-malhotra/go-dotthz/internal/object"
)

// CreateDataset creates a new contiguous dataset holding data.
//
// Without WithShape the dimensions are inferred from nested slices/arrays
// (a bare scalar becomes a one-element 1-D dataset). With WithShape, data
// must be a flat slice whose length is the product of the dimensions.
func (g *Group) CreateDataset(name string, data interface{}, opts ...DatasetOption) (*Dataset, error) {
	if !g.file.writable {
		return nil, ErrReadOnly
	}
	if err := checkLinkName(name); err != nil {
		return nil, err
	}

	options := &datasetOptions{}
	for _, opt := range opts {
		opt(options)
	}

	dataVal := reflect.ValueOf(data)
	if dataVal.Kind() == reflect.Ptr {
		dataVal = dataVal.Elem()
	}

	dims, elemType, err := inferDimensionsAndType(dataVal)
	if err != nil {
		return nil, fmt.Errorf("inferring dimensions: %w", err)
	}

	var dataspace *message.Dataspace
	if options.shapeSet {
		if len(dims) != 1 {
			return nil, fmt.Errorf("shaped data must be a flat slice, got %d levels", len(dims))
		}
		n := uint64(1)
		for _, d := range options.shape {
			n *= d
		}
		if n != dims[0] {
			return nil, fmt.Errorf("shape %v needs %d elements, data has %d", options.shape, n, dims[0])
		}
		if len(options.shape) == 0 {
			dataspace = message.NewScalarDataspace()
		} else {
			dataspace = message.NewDataspace(options.shape...)
		}
	} else {
		dataspace = message.NewDataspace(dims...)
	}

	datatype, err := dtype.FromGoType(elemType)
	if err != nil {
		return nil, fmt.Errorf("%w: dataset element type %v", ErrUnsupportedType, elemType)
	}

	attrs := make([]*message.Attribute, 0, len(options.attrs))
	for _, a := range options.attrs {
		msg, err := createAttributeMessage(a.name, a.value)
		if err != nil {
			return nil, fmt.Errorf("creating attribute %q: %w", a.name, err)
		}
		attrs = append(attrs, msg)
	}

	rawData, err := dtype.Encode(datatype, flatten(dataVal))
	if err != nil {
		return nil, fmt.Errorf("encoding data: %w", err)
	}

	dsPath := childPath(g.path, name)
	dataSize := uint64(len(rawData))
	dataAddr := g.file.writer.UndefinedOffset()
	if dataSize > 0 {
		dataAddr = g.file.allocate(int64(dataSize), "dataset data "+dsPath)
		if err := g.file.writer.At(int64(dataAddr)).WriteBytes(rawData); err != nil {
			return nil, fmt.Errorf("writing data: %w", err)
		}
	}

	layout := message.NewContiguousLayout(dataAddr, dataSize)
	datasetAddr, err := g.file.writeHeader(object.DatasetMessages(dataspace, datatype, layout, attrs...), "dataset header "+dsPath)
	if err != nil {
		return nil, err
	}

	if err := g.addLink(message.NewHardLink(name, datasetAddr)); err != nil {
		return nil, fmt.Errorf("adding link to parent: %w", err)
	}

	return &Dataset{
		file:      g.file,
		path:      dsPath,
		dataspace: dataspace,
		datatype:  datatype,
		layout:    layout,
	}, nil
}

// inferDimensionsAndType infers the dimensions and element type from a Go value.
func inferDimensionsAndType(val reflect.Value) ([]uint64, reflect.Type, error) {
	if !val.IsValid() {
		return nil, nil, fmt.Errorf("nil data")
	}

	var dims []uint64
	current := val
	for {
		switch current.Kind() {
		case reflect.Slice, reflect.Array:
			dims = append(dims, uint64(current.Len()))
			if current.Len() == 0 {
				elem := current.Type().Elem()
				for elem.Kind() == reflect.Slice || elem.Kind() == reflect.Array {
					dims = append(dims, 0)
					elem = elem.Elem()
				}
				return dims, elem, nil
			}
			current = current.Index(0)
		default:
			if len(dims) == 0 {
				dims = []uint64{1}
			}
			return dims, current.Type(), nil
		}
	}
}

// flatten returns nested slices as a single flat slice of the element type,
// in row-major order. Flat slices and scalars are returned unchanged.
func flatten(val reflect.Value) interface{} {
	if val.Kind() != reflect.Slice && val.Kind() != reflect.Array {
		return val.Interface()
	}
	elem := val.Type().Elem()
	if elem.Kind() != reflect.Slice && elem.Kind() != reflect.Array {
		return val.Interface()
	}

	for elem.Kind() == reflect.Slice || elem.Kind() == reflect.Array {
		elem = elem.Elem()
	}
	out := reflect.MakeSlice(reflect.SliceOf(elem), 0, 0)
	var walk func(v reflect.Value)
	walk = func(v reflect.Value) {
		if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
			for i := 0; i < v.Len(); i++ {
				walk(v.Index(i))
			}
			return
		}
		out = reflect.Append(out, v)
	}
	walk(val)
	return out.Interface()
}

// createAttributeMessage creates an attribute message from a name and value.
func createAttributeMessage(name string, value interface{}) (*message.Attribute, error) {
	val := reflect.ValueOf(value)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if !val.IsValid() {
		return nil, fmt.Errorf("nil attribute value")
	}

	if val.Kind() == reflect.String {
		return createStringAttribute(name, val.String()), nil
	}
	if val.Kind() == reflect.Slice && val.Type().Elem().Kind() == reflect.String {
		return createStringArrayAttribute(name, val), nil
	}

	var dataspace *message.Dataspace
	var elemType reflect.Type
	switch val.Kind() {
	case reflect.Slice, reflect.Array:
		dataspace = message.NewDataspace(uint64(val.Len()))
		elemType = val.Type().Elem()
	default:
		dataspace = message.NewScalarDataspace()
		elemType = val.Type()
	}

	datatype, err := dtype.FromGoType(elemType)
	if err != nil {
		return nil, fmt.Errorf("%w: attribute type %v", ErrUnsupportedType, elemType)
	}

	data, err := dtype.Encode(datatype, val.Interface())
	if err != nil {
		return nil, fmt.Errorf("encoding attribute value: %w", err)
	}

	return message.NewAttribute(name, datatype, dataspace, data), nil
}

// createStringAttribute creates a scalar fixed-length, null-terminated UTF-8
// string attribute.
func createStringAttribute(name string, s string) *message.Attribute {
	strLen := len(s) + 1
	datatype := message.NewStringDatatype(uint32(strLen), message.PadNullTerm, message.CharsetUTF8)

	data := make([]byte, strLen)
	copy(data, s)

	return message.NewAttribute(name, datatype, message.NewScalarDataspace(), data)
}

// createStringArrayAttribute creates a 1-D attribute of fixed-length strings,
// all padded to the longest element.
func createStringArrayAttribute(name string, val reflect.Value) *message.Attribute {
	n := val.Len()

	maxLen := 0
	for i := 0; i < n; i++ {
		if l := len(val.Index(i).String()); l > maxLen {
			maxLen = l
		}
	}
	strLen := maxLen + 1

	datatype := message.NewStringDatatype(uint32(strLen), message.PadNullTerm, message.CharsetUTF8)
	dataspace := message.NewDataspace(uint64(n))

	data := make([]byte, n*strLen)
	for i := 0; i < n; i++ {
		copy(data[i*strLen:], val.Index(i).String())
	}

	return message.NewAttribute(name, datatype, dataspace, data)
}
