package dtype

import (
	"fmt"
	"math"
	"reflect"

	"github.com/robert-malhotra/go-dotthz/internal/binary"
	"github.com/robert-malhotra/go-dotthz/internal/message"
)

// Encode returns values as elements of dt. values is a slice, or a single
// value, of the datatype's Go type.
func Encode(dt *message.Datatype, values any) ([]byte, error) {
	if v := reflect.ValueOf(values); v.IsValid() && v.Kind() != reflect.Slice {
		s := reflect.MakeSlice(reflect.SliceOf(v.Type()), 1, 1)
		s.Index(0).Set(v)
		values = s.Interface()
	}
	switch v := values.(type) {
	case []int8:
		return encodeSlice(dt, v)
	case []int16:
		return encodeSlice(dt, v)
	case []int32:
		return encodeSlice(dt, v)
	case []int64:
		return encodeSlice(dt, v)
	case []uint8:
		return encodeSlice(dt, v)
	case []uint16:
		return encodeSlice(dt, v)
	case []uint32:
		return encodeSlice(dt, v)
	case []uint64:
		return encodeSlice(dt, v)
	case []float32:
		return encodeSlice(dt, v)
	case []float64:
		return encodeSlice(dt, v)
	}
	return nil, fmt.Errorf("%w: cannot encode %T", ErrUnsupported, values)
}

func encodeSlice[T number](dt *message.Datatype, values []T) ([]byte, error) {
	want, err := GoType(dt)
	if err != nil {
		return nil, err
	}
	if got := reflect.TypeFor[T](); got != want {
		return nil, fmt.Errorf("%w: cannot encode %v as %s", ErrUnsupported, got, dt)
	}

	order := ByteOrder(dt)
	size := int(dt.Size)
	out := make([]byte, len(values)*size)
	for i, v := range values {
		var u uint64
		switch x := any(v).(type) {
		case float32:
			u = uint64(math.Float32bits(x))
		case float64:
			u = math.Float64bits(x)
		default:
			u = uint64(v)
		}
		binary.EncodeUint(order, out[i*size:(i+1)*size], u)
	}
	return out, nil
}
