package dtype

import (
	"bytes"
	stdbinary "encoding/binary"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/robert-malhotra/go-dotthz/internal/binary"
	"github.com/robert-malhotra/go-dotthz/internal/message"
)

func TestGoType(t *testing.T) {
	bigInt := message.NewIntegerDatatype(4, true)
	bigInt.BigEndian = true
	odd := message.NewIntegerDatatype(2, false)
	odd.Precision = 12
	vax := message.NewFloatDatatype(8)
	vax.ExpBias = 1024

	tests := []struct {
		name string
		dt   *message.Datatype
		want reflect.Type
	}{
		{"int8", message.NewIntegerDatatype(1, true), reflect.TypeFor[int8]()},
		{"uint16", message.NewIntegerDatatype(2, false), reflect.TypeFor[uint16]()},
		{"big-endian int32", bigInt, reflect.TypeFor[int32]()},
		{"uint64", message.NewIntegerDatatype(8, false), reflect.TypeFor[uint64]()},
		{"float32", message.NewFloatDatatype(4), reflect.TypeFor[float32]()},
		{"float64", message.NewFloatDatatype(8), reflect.TypeFor[float64]()},
		{"enum", &message.Datatype{Class: message.ClassEnum, Size: 1, Base: message.NewIntegerDatatype(1, true)}, reflect.TypeFor[int8]()},
		{"3-byte integer", message.NewIntegerDatatype(3, true), nil},
		{"12-bit integer", odd, nil},
		{"non-IEEE float", vax, nil},
		{"string", message.NewStringDatatype(4, message.PadNullTerm, message.CharsetASCII), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GoType(tt.dt)
			if tt.want == nil {
				if !errors.Is(err, ErrUnsupported) {
					t.Errorf("err = %v, want ErrUnsupported", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if !IsNumeric(tt.dt) {
				t.Error("IsNumeric = false")
			}
		})
	}
}

func TestFromGoType(t *testing.T) {
	for _, typ := range []reflect.Type{
		reflect.TypeFor[int8](), reflect.TypeFor[int16](), reflect.TypeFor[int32](), reflect.TypeFor[int64](),
		reflect.TypeFor[uint8](), reflect.TypeFor[uint16](), reflect.TypeFor[uint32](), reflect.TypeFor[uint64](),
		reflect.TypeFor[float32](), reflect.TypeFor[float64](),
	} {
		dt, err := FromGoType(typ)
		if err != nil {
			t.Fatalf("%v: %v", typ, err)
		}
		back, err := GoType(dt)
		if err != nil || back != typ {
			t.Errorf("%v: GoType(FromGoType) = %v, %v", typ, back, err)
		}
	}
	if _, err := FromGoType(reflect.TypeFor[complex64]()); !errors.Is(err, ErrUnsupported) {
		t.Errorf("complex64: err = %v, want ErrUnsupported", err)
	}
}

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name   string
		values any
		dest   func() any
	}{
		{"int8", []int8{-128, 0, 127}, func() any { return new([]int8) }},
		{"int16", []int16{-32768, 1, 32767}, func() any { return new([]int16) }},
		{"int32", []int32{math.MinInt32, 7, math.MaxInt32}, func() any { return new([]int32) }},
		{"int64", []int64{math.MinInt64, 0, math.MaxInt64}, func() any { return new([]int64) }},
		{"uint8", []uint8{0, 200, 255}, func() any { return new([]uint8) }},
		{"uint16", []uint16{0, 65535}, func() any { return new([]uint16) }},
		{"uint32", []uint32{0, math.MaxUint32}, func() any { return new([]uint32) }},
		{"uint64", []uint64{0, math.MaxUint64}, func() any { return new([]uint64) }},
		{"float32", []float32{-1.5, 0, float32(math.Inf(1)), math.SmallestNonzeroFloat32}, func() any { return new([]float32) }},
		{"float64", []float64{math.Pi, -0.0, math.MaxFloat64}, func() any { return new([]float64) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt, err := FromGoType(reflect.TypeOf(tt.values).Elem())
			if err != nil {
				t.Fatal(err)
			}
			raw, err := Encode(dt, tt.values)
			if err != nil {
				t.Fatal(err)
			}
			n := reflect.ValueOf(tt.values).Len()
			if len(raw) != n*int(dt.Size) {
				t.Fatalf("encoded %d bytes, want %d", len(raw), n*int(dt.Size))
			}
			dest := tt.dest()
			if err := Decode(dt, raw, uint64(n), dest); err != nil {
				t.Fatal(err)
			}
			if got := reflect.ValueOf(dest).Elem().Interface(); !reflect.DeepEqual(got, tt.values) {
				t.Errorf("got %v, want %v", got, tt.values)
			}
		})
	}
}

func TestFloat32NaNPayload(t *testing.T) {
	nan := math.Float32frombits(0x7fa00001)
	dt := message.NewFloatDatatype(4)
	raw, err := Encode(dt, []float32{nan})
	if err != nil {
		t.Fatal(err)
	}
	if got := stdbinary.LittleEndian.Uint32(raw); got != 0x7fa00001 {
		t.Errorf("encoded bits 0x%08x", got)
	}
	var back []float32
	if err := Decode(dt, raw, 1, &back); err != nil {
		t.Fatal(err)
	}
	if got := math.Float32bits(back[0]); got != 0x7fa00001 {
		t.Errorf("decoded bits 0x%08x", got)
	}
}

func TestEncodeScalar(t *testing.T) {
	raw, err := Encode(message.NewIntegerDatatype(2, true), int16(-2))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(raw, []byte{0xfe, 0xff}) {
		t.Errorf("got % x", raw)
	}
}

func TestEncodeMismatch(t *testing.T) {
	if _, err := Encode(message.NewFloatDatatype(8), []float32{1}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("float32 as float64: err = %v", err)
	}
	if _, err := Encode(message.NewFloatDatatype(8), []string{"x"}); !errors.Is(err, ErrUnsupported) {
		t.Errorf("strings: err = %v", err)
	}
}

func TestDecodeBigEndian(t *testing.T) {
	dt := message.NewIntegerDatatype(4, true)
	dt.BigEndian = true
	var got []int32
	if err := Decode(dt, []byte{0xff, 0xff, 0xff, 0xfe, 0, 0, 1, 0}, 2, &got); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []int32{-2, 256}) {
		t.Errorf("got %v", got)
	}

	f := message.NewFloatDatatype(8)
	f.BigEndian = true
	var fs []float64
	if err := Decode(f, stdbinary.BigEndian.AppendUint64(nil, math.Float64bits(2.5)), 1, &fs); err != nil {
		t.Fatal(err)
	}
	if fs[0] != 2.5 {
		t.Errorf("got %v", fs)
	}
}

func TestDecodeWidening(t *testing.T) {
	var ints []int64
	if err := Decode(message.NewIntegerDatatype(1, true), []byte{0xff, 0x7f}, 2, &ints); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ints, []int64{-1, 127}) {
		t.Errorf("int8 as int64: %v", ints)
	}

	if err := Decode(message.NewIntegerDatatype(2, false), []byte{0xff, 0xff}, 1, &ints); err != nil || ints[0] != 65535 {
		t.Errorf("uint16 as int64: %v, %v", ints, err)
	}

	var uints []uint64
	if err := Decode(message.NewIntegerDatatype(4, false), []byte{1, 0, 0, 0}, 1, &uints); err != nil || uints[0] != 1 {
		t.Errorf("uint32 as uint64: %v, %v", uints, err)
	}

	var floats []float64
	raw, _ := Encode(message.NewFloatDatatype(4), []float32{0.25})
	if err := Decode(message.NewFloatDatatype(4), raw, 1, &floats); err != nil || floats[0] != 0.25 {
		t.Errorf("float32 as float64: %v, %v", floats, err)
	}

	enum := &message.Datatype{Class: message.ClassEnum, Size: 1, Base: message.NewIntegerDatatype(1, true)}
	if err := Decode(enum, []byte{1}, 1, &ints); err != nil || ints[0] != 1 {
		t.Errorf("enum as int64: %v, %v", ints, err)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		dt   *message.Datatype
		raw  []byte
		dest any
	}{
		{"narrowing", message.NewIntegerDatatype(8, true), make([]byte, 8), new([]int32)},
		{"uint64 as int64", message.NewIntegerDatatype(8, false), make([]byte, 8), new([]int64)},
		{"int as float", message.NewIntegerDatatype(4, true), make([]byte, 4), new([]float64)},
		{"signed as unsigned", message.NewIntegerDatatype(4, true), make([]byte, 4), new([]uint64)},
		{"destination type", message.NewIntegerDatatype(4, true), make([]byte, 4), new([]string)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Decode(tt.dt, tt.raw, 1, tt.dest); !errors.Is(err, ErrUnsupported) {
				t.Errorf("err = %v, want ErrUnsupported", err)
			}
		})
	}

	var v []int32
	if err := Decode(message.NewIntegerDatatype(4, true), make([]byte, 6), 2, &v); err == nil {
		t.Error("short data: expected an error")
	}
}

func TestStringsFixed(t *testing.T) {
	tests := []struct {
		pad  message.StringPadding
		raw  string
		want []string
	}{
		{message.PadNullTerm, "ab\x00zcd\x00\x00", []string{"ab", "cd"}},
		{message.PadNullPad, "ab\x00\x00abcd", []string{"ab", "abcd"}},
		{message.PadSpace, "ab  x   ", []string{"ab", "x"}},
	}
	for _, tt := range tests {
		dt := message.NewStringDatatype(4, tt.pad, message.CharsetUTF8)
		got, err := Strings(nil, dt, []byte(tt.raw), 2)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("padding %d: got %q, want %q", tt.pad, got, tt.want)
		}
	}
}

// globalHeap returns a file image with a global heap collection at 0x100.
func globalHeap(objs ...string) []byte {
	le := stdbinary.LittleEndian
	var body []byte
	for i, obj := range objs {
		body = le.AppendUint16(body, uint16(i+1))
		body = le.AppendUint16(body, 1)
		body = append(body, 0, 0, 0, 0)
		body = le.AppendUint64(body, uint64(len(obj)))
		body = append(body, obj...)
		body = append(body, make([]byte, (8-len(obj)%8)%8)...)
	}
	body = append(body, make([]byte, 16)...)

	img := make([]byte, 0x100)
	img = append(img, "GCOL"...)
	img = append(img, 1, 0, 0, 0)
	img = le.AppendUint64(img, uint64(16+len(body)))
	return append(img, body...)
}

func TestStringsVarLen(t *testing.T) {
	img := globalHeap("THz", "ångström")
	r := binary.NewReader(bytes.NewReader(img), binary.DefaultConfig())

	elem := func(length int, index uint32) []byte {
		b := stdbinary.LittleEndian.AppendUint32(nil, uint32(length))
		b = stdbinary.LittleEndian.AppendUint64(b, 0x100)
		return stdbinary.LittleEndian.AppendUint32(b, index)
	}
	var raw []byte
	raw = append(raw, elem(3, 1)...)
	raw = append(raw, elem(len("ångström"), 2)...)
	raw = append(raw, make([]byte, 16)...) // empty string, no heap object

	dt := &message.Datatype{
		Class: message.ClassVarLen, Version: 1, Size: 16, VarLenString: true,
		Charset: message.CharsetUTF8, Base: message.NewIntegerDatatype(1, false),
	}
	got, err := Strings(r, dt, raw, 3)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"THz", "ångström", ""}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}

	if _, err := Strings(r, dt, elem(3, 9), 1); err == nil {
		t.Error("missing heap object: expected an error")
	}
	if _, err := Strings(r, message.NewIntegerDatatype(4, true), make([]byte, 4), 1); !errors.Is(err, ErrUnsupported) {
		t.Errorf("integer: err = %v, want ErrUnsupported", err)
	}
}
