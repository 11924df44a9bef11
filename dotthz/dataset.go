package dotthz

import (
	"fmt"
	"math"
	"reflect"
)

// DType names the element type of a Dataset.
type DType uint8

const (
	Invalid DType = iota
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
)

var dtypeInfo = [...]struct {
	name string
	typ  reflect.Type
}{
	Invalid: {"invalid", nil},
	Int8:    {"int8", reflect.TypeOf(int8(0))},
	Int16:   {"int16", reflect.TypeOf(int16(0))},
	Int32:   {"int32", reflect.TypeOf(int32(0))},
	Int64:   {"int64", reflect.TypeOf(int64(0))},
	Uint8:   {"uint8", reflect.TypeOf(uint8(0))},
	Uint16:  {"uint16", reflect.TypeOf(uint16(0))},
	Uint32:  {"uint32", reflect.TypeOf(uint32(0))},
	Uint64:  {"uint64", reflect.TypeOf(uint64(0))},
	Float32: {"float32", reflect.TypeOf(float32(0))},
	Float64: {"float64", reflect.TypeOf(float64(0))},
}

func (t DType) String() string {
	if int(t) < len(dtypeInfo) {
		return dtypeInfo[t].name
	}
	return fmt.Sprintf("DType(%d)", uint8(t))
}

// Size returns the size of one element in bytes, 0 for Invalid.
func (t DType) Size() int {
	if t == Invalid || int(t) >= len(dtypeInfo) {
		return 0
	}
	return int(dtypeInfo[t].typ.Size())
}

func dtypeOf(elem reflect.Type) DType {
	for i, info := range dtypeInfo {
		if info.typ != nil && info.typ == elem {
			return DType(i)
		}
	}
	return Invalid
}

// Number is the set of element types a Dataset can hold.
type Number interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32 | float64
}

// Dataset is a multi-dimensional numeric array. Data is a flat slice in
// row-major order whose length is the product of Shape. An empty Shape is a
// scalar holding exactly one element.
type Dataset struct {
	Shape []int
	Data  any
}

// NewDataset wraps data with the given shape. Without a shape the dataset is
// one-dimensional. data is not copied.
func NewDataset[T Number](data []T, shape ...int) Dataset {
	if len(shape) == 0 {
		shape = []int{len(data)}
	}
	if data == nil {
		data = []T{}
	}
	return Dataset{Shape: shape, Data: data}
}

// Scalar returns a rank-0 dataset holding v.
func Scalar[T Number](v T) Dataset {
	return Dataset{Shape: []int{}, Data: []T{v}}
}

// Values returns the elements of d if they are of type T.
func Values[T Number](d Dataset) ([]T, bool) {
	v, ok := d.Data.([]T)
	return v, ok
}

// DType returns the element type, or Invalid if Data is not a supported slice.
func (d Dataset) DType() DType {
	t := reflect.TypeOf(d.Data)
	if t == nil || t.Kind() != reflect.Slice {
		return Invalid
	}
	return dtypeOf(t.Elem())
}

// Len returns the number of elements in Data.
func (d Dataset) Len() int {
	if d.DType() == Invalid {
		return 0
	}
	return reflect.ValueOf(d.Data).Len()
}

// Rank returns the number of dimensions.
func (d Dataset) Rank() int {
	return len(d.Shape)
}

// Validate checks that Data has a supported type and matches Shape.
func (d Dataset) Validate() error {
	if d.DType() == Invalid {
		return fmt.Errorf("%w: data of type %T", ErrType, d.Data)
	}
	n := 1
	for _, dim := range d.Shape {
		if dim < 0 {
			return fmt.Errorf("%w: negative dimension in shape %v", ErrFormat, d.Shape)
		}
		n *= dim
	}
	if n != d.Len() {
		return fmt.Errorf("%w: shape %v needs %d elements, data has %d", ErrFormat, d.Shape, n, d.Len())
	}
	return nil
}

// Equal reports whether both datasets have the same element type, shape and
// element bits. NaNs with equal payloads compare equal; 0 and -0 do not.
func (d Dataset) Equal(o Dataset) bool {
	if d.DType() != o.DType() || len(d.Shape) != len(o.Shape) || d.Len() != o.Len() {
		return false
	}
	for i := range d.Shape {
		if d.Shape[i] != o.Shape[i] {
			return false
		}
	}
	if d.Len() == 0 {
		return true
	}

	switch a := d.Data.(type) {
	case []float32:
		b := o.Data.([]float32)
		for i := range a {
			if math.Float32bits(a[i]) != math.Float32bits(b[i]) {
				return false
			}
		}
		return true
	case []float64:
		b := o.Data.([]float64)
		for i := range a {
			if math.Float64bits(a[i]) != math.Float64bits(b[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(d.Data, o.Data)
}

// Clone returns a deep copy of d.
func (d Dataset) Clone() Dataset {
	c := Dataset{Data: d.Data}
	if d.Shape != nil {
		c.Shape = append([]int{}, d.Shape...)
	}
	if d.DType() != Invalid {
		v := reflect.ValueOf(d.Data)
		c.Data = reflect.AppendSlice(reflect.MakeSlice(v.Type(), 0, v.Len()), v).Interface()
	}
	return c
}

func (d Dataset) String() string {
	return fmt.Sprintf("%s%v", d.DType(), d.Shape)
}
