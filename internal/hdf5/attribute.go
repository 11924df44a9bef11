package hdf5

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/robert-malhotra/go-dotthz/internal/binary"
	"github.com/robert-malhotra/go-dotthz/internal/dtype"
	"github.com/robert-malhotra/go-dotthz/internal/message"
)

// Attribute represents an HDF5 attribute attached to a dataset or group.
type Attribute struct {
	msg    *message.Attribute
	reader *binary.Reader // resolves variable-length strings
}

func attrNames(attrs []*message.Attribute) []string {
	var names []string
	for _, a := range attrs {
		names = append(names, a.Name)
	}
	return names
}

func findAttr(attrs []*message.Attribute, name string, r *binary.Reader) *Attribute {
	for _, a := range attrs {
		if a.Name == name {
			return &Attribute{msg: a, reader: r}
		}
	}
	return nil
}

// Name returns the attribute name.
func (a *Attribute) Name() string {
	return a.msg.Name
}

// Shape returns the dimensions of the attribute value, nil for a scalar.
func (a *Attribute) Shape() []uint64 {
	if a.msg.Dataspace.IsScalar() {
		return nil
	}
	return a.msg.Dataspace.Dims
}

// NumElements returns the total number of elements.
func (a *Attribute) NumElements() uint64 {
	return a.msg.Dataspace.NumElements()
}

// IsScalar returns true if the attribute is a scalar value.
func (a *Attribute) IsScalar() bool {
	return a.msg.Dataspace.IsScalar()
}

// IsString reports whether the attribute holds fixed- or variable-length
// strings.
func (a *Attribute) IsString() bool {
	return a.msg.Datatype.IsString()
}

// Datatype describes the attribute's element type, e.g. "float64" or
// "vlen string".
func (a *Attribute) Datatype() string {
	return a.msg.Datatype.String()
}

// Read reads a numeric attribute into dest, a pointer to a slice of the
// attribute's Go type or of int64, uint64 or float64.
func (a *Attribute) Read(dest any) error {
	err := dtype.Decode(a.msg.Datatype, a.msg.Data, a.NumElements(), dest)
	if errors.Is(err, dtype.ErrUnsupported) {
		return fmt.Errorf("%w: %v", ErrUnsupportedType, err)
	}
	return err
}

// ReadString reads the attribute as string values.
func (a *Attribute) ReadString() ([]string, error) {
	vals, err := dtype.Strings(a.reader, a.msg.Datatype, a.msg.Data, a.NumElements())
	if errors.Is(err, dtype.ErrUnsupported) {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, err)
	}
	return vals, err
}

// ReadScalarString reads a scalar string attribute.
func (a *Attribute) ReadScalarString() (string, error) {
	vals, err := a.ReadString()
	if err != nil {
		return "", err
	}
	if len(vals) == 0 {
		return "", fmt.Errorf("no values in attribute")
	}
	return vals[0], nil
}

// Value reads the attribute into a Go value chosen by its datatype:
//   - signed integers: int64
//   - unsigned integers: uint64
//   - enums: as their integer base
//   - floats: float64
//   - strings: string
//
// A scalar yields the value itself and anything else a slice of it. Other
// datatypes give ErrUnsupportedType.
func (a *Attribute) Value() (any, error) {
	dt := a.msg.Datatype
	if dt.IsString() {
		vals, err := a.ReadString()
		return scalarOrSlice(a, vals, err)
	}

	goType, err := dtype.GoType(dt)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, dt)
	}
	switch goType.Kind() {
	case reflect.Float32, reflect.Float64:
		var vals []float64
		err := a.Read(&vals)
		return scalarOrSlice(a, vals, err)
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var vals []uint64
		err := a.Read(&vals)
		return scalarOrSlice(a, vals, err)
	}
	var vals []int64
	err = a.Read(&vals)
	return scalarOrSlice(a, vals, err)
}

func scalarOrSlice[T any](a *Attribute, vals []T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if a.IsScalar() && len(vals) == 1 {
		return vals[0], nil
	}
	return vals, nil
}
