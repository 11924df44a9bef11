package dtype

import (
	stdbinary "encoding/binary"
	"errors"
	"fmt"
	"reflect"

	"github.com/robert-malhotra/go-dotthz/internal/message"
)

var ErrUnsupported = errors.New("unsupported datatype")

// number is the set of Go element types a numeric datatype maps onto.
type number interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32 | float64
}

var (
	signedTypes   = [...]reflect.Type{1: reflect.TypeFor[int8](), 2: reflect.TypeFor[int16](), 4: reflect.TypeFor[int32](), 8: reflect.TypeFor[int64]()}
	unsignedTypes = [...]reflect.Type{1: reflect.TypeFor[uint8](), 2: reflect.TypeFor[uint16](), 4: reflect.TypeFor[uint32](), 8: reflect.TypeFor[uint64]()}
)

// GoType returns the Go type of one element of a numeric datatype.
func GoType(dt *message.Datatype) (reflect.Type, error) {
	switch dt.Class {
	case message.ClassEnum:
		if dt.Base != nil && dt.Base.Class == message.ClassFixedPoint {
			return GoType(dt.Base)
		}
	case message.ClassFixedPoint:
		if dt.BitOffset != 0 || uint32(dt.Precision) != 8*dt.Size || dt.Size >= uint32(len(signedTypes)) {
			break
		}
		types := unsignedTypes
		if dt.Signed {
			types = signedTypes
		}
		if t := types[dt.Size]; t != nil {
			return t, nil
		}
	case message.ClassFloatPoint:
		if !dt.IsIEEE() {
			break
		}
		if dt.Size == 4 {
			return reflect.TypeFor[float32](), nil
		}
		return reflect.TypeFor[float64](), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, dt)
}

// IsNumeric reports whether dt maps onto a Go numeric type.
func IsNumeric(dt *message.Datatype) bool {
	_, err := GoType(dt)
	return err == nil
}

// FromGoType returns the little-endian datatype for a Go numeric type.
func FromGoType(t reflect.Type) (*message.Datatype, error) {
	switch t.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return message.NewIntegerDatatype(uint32(t.Size()), true), nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return message.NewIntegerDatatype(uint32(t.Size()), false), nil
	case reflect.Float32, reflect.Float64:
		return message.NewFloatDatatype(uint32(t.Size())), nil
	}
	return nil, fmt.Errorf("%w: Go type %v", ErrUnsupported, t)
}

// ByteOrder returns the byte order of a numeric datatype's elements.
func ByteOrder(dt *message.Datatype) stdbinary.ByteOrder {
	if dt.Class == message.ClassEnum && dt.Base != nil {
		dt = dt.Base
	}
	if dt.BigEndian {
		return stdbinary.BigEndian
	}
	return stdbinary.LittleEndian
}
