package dtype

import (
	"bytes"
	"fmt"
	"math"
	"reflect"

	"github.com/robert-malhotra/go-dotthz/internal/binary"
	"github.com/robert-malhotra/go-dotthz/internal/heap"
	"github.com/robert-malhotra/go-dotthz/internal/message"
)

// Decode converts n elements of dt held in raw into dest, a pointer to a
// slice. The slice's element type is either the datatype's own Go type or
// one that holds every value of it: int64 for any integer narrower than
// 64 bits or signed, uint64 for unsigned integers, float64 for floats.
func Decode(dt *message.Datatype, raw []byte, n uint64, dest any) error {
	if need := n * uint64(dt.Size); uint64(len(raw)) < need {
		return fmt.Errorf("%d bytes of data for %d elements of %s", len(raw), n, dt)
	}
	var err error
	switch d := dest.(type) {
	case *[]int8:
		*d, err = decodeSlice[int8](dt, raw, n)
	case *[]int16:
		*d, err = decodeSlice[int16](dt, raw, n)
	case *[]int32:
		*d, err = decodeSlice[int32](dt, raw, n)
	case *[]int64:
		*d, err = decodeSlice[int64](dt, raw, n)
	case *[]uint8:
		*d, err = decodeSlice[uint8](dt, raw, n)
	case *[]uint16:
		*d, err = decodeSlice[uint16](dt, raw, n)
	case *[]uint32:
		*d, err = decodeSlice[uint32](dt, raw, n)
	case *[]uint64:
		*d, err = decodeSlice[uint64](dt, raw, n)
	case *[]float32:
		*d, err = decodeSlice[float32](dt, raw, n)
	case *[]float64:
		*d, err = decodeSlice[float64](dt, raw, n)
	default:
		return fmt.Errorf("%w: cannot decode into %T", ErrUnsupported, dest)
	}
	return err
}

func decodeSlice[T number](dt *message.Datatype, raw []byte, n uint64) ([]T, error) {
	src, err := GoType(dt)
	if err != nil {
		return nil, err
	}
	dst := reflect.TypeFor[T]()
	if !widens(src, dst) {
		return nil, fmt.Errorf("%w: cannot decode %s into %v", ErrUnsupported, dt, dst)
	}

	order := ByteOrder(dt)
	size := int(dt.Size)
	out := make([]T, n)
	for i := range out {
		u := binary.DecodeUint(order, raw[i*size:(i+1)*size])
		switch src.Kind() {
		case reflect.Float32:
			out[i] = T(math.Float32frombits(uint32(u)))
		case reflect.Float64:
			out[i] = T(math.Float64frombits(u))
		case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			shift := 64 - 8*size
			out[i] = T(int64(u<<shift) >> shift)
		default:
			out[i] = T(u)
		}
	}
	return out, nil
}

// widens reports whether every value of type src is exactly representable
// in dst.
func widens(src, dst reflect.Type) bool {
	if src == dst {
		return true
	}
	switch dst.Kind() {
	case reflect.Int64:
		switch src.Kind() {
		case reflect.Int8, reflect.Int16, reflect.Int32,
			reflect.Uint8, reflect.Uint16, reflect.Uint32:
			return true
		}
	case reflect.Uint64:
		switch src.Kind() {
		case reflect.Uint8, reflect.Uint16, reflect.Uint32:
			return true
		}
	case reflect.Float64:
		return src.Kind() == reflect.Float32
	}
	return false
}

// Strings decodes n fixed- or variable-length string elements. Fixed-length
// values lose their padding; variable-length values are fetched from the
// global heap through r.
func Strings(r *binary.Reader, dt *message.Datatype, raw []byte, n uint64) ([]string, error) {
	if !dt.IsString() {
		return nil, fmt.Errorf("%w: %s is not a string type", ErrUnsupported, dt)
	}
	size := uint64(dt.Size)
	if uint64(len(raw)) < n*size {
		return nil, fmt.Errorf("%d bytes of data for %d elements of %s", len(raw), n, dt)
	}
	out := make([]string, n)
	if dt.Class == message.ClassString {
		for i := range out {
			out[i] = trimPadding(raw[uint64(i)*size:uint64(i+1)*size], dt.Padding)
		}
		return out, nil
	}

	heaps := heap.NewCollections(r)
	order := r.ByteOrder()
	for i := range out {
		elem := raw[uint64(i)*size : uint64(i+1)*size]
		if len(elem) < 4 {
			return nil, fmt.Errorf("variable-length element of %d bytes", len(elem))
		}
		length := binary.DecodeUint(order, elem[:4])
		if length == 0 {
			continue
		}
		id, err := heap.ParseID(r, elem[4:])
		if err != nil {
			return nil, err
		}
		obj, err := heaps.Object(id)
		if err != nil {
			return nil, fmt.Errorf("string %d: %w", i, err)
		}
		if uint64(len(obj)) < length {
			return nil, fmt.Errorf("string %d: heap object of %d bytes, want %d", i, len(obj), length)
		}
		out[i] = trimPadding(obj[:length], dt.Padding)
	}
	return out, nil
}

func trimPadding(b []byte, pad message.StringPadding) string {
	switch pad {
	case message.PadNullTerm:
		if i := bytes.IndexByte(b, 0); i >= 0 {
			b = b[:i]
		}
	case message.PadNullPad:
		b = bytes.TrimRight(b, "\x00")
	case message.PadSpace:
		b = bytes.TrimRight(b, " ")
	}
	return string(b)
}
