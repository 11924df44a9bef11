package binary

import (
	"encoding/binary"
	"io"
	"testing"
)

// bytesReaderAt wraps a byte slice to implement io.ReaderAt.
type bytesReaderAt []byte

func (b bytesReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func TestReaderFixedWidth(t *testing.T) {
	data := bytesReaderAt{
		0x42,
		0x02, 0x01,
		0x78, 0x56, 0x34, 0x12,
		0xef, 0xbe, 0xad, 0xde, 0x00, 0x00, 0x00, 0x80,
	}
	r := NewReader(data, DefaultConfig())

	u8, err := r.ReadUint8()
	if err != nil || u8 != 0x42 {
		t.Fatalf("ReadUint8 = 0x%x, %v", u8, err)
	}
	u16, err := r.ReadUint16()
	if err != nil || u16 != 0x0102 {
		t.Fatalf("ReadUint16 = 0x%x, %v", u16, err)
	}
	u32, err := r.ReadUint32()
	if err != nil || u32 != 0x12345678 {
		t.Fatalf("ReadUint32 = 0x%x, %v", u32, err)
	}
	u64, err := r.ReadUint64()
	if err != nil || u64 != 0x80000000deadbeef {
		t.Fatalf("ReadUint64 = 0x%x, %v", u64, err)
	}
	if r.Pos() != 15 {
		t.Errorf("Pos = %d, want 15", r.Pos())
	}
}

func TestReaderOffsetsAndLengths(t *testing.T) {
	tests := []struct {
		name       string
		offsetSize int
		lengthSize int
		data       bytesReaderAt
		wantOffset uint64
		wantLength uint64
	}{
		{"2/2", 2, 2, bytesReaderAt{0x34, 0x12, 0x02, 0x00}, 0x1234, 2},
		{"4/8", 4, 8, bytesReaderAt{0x78, 0x56, 0x34, 0x12, 0x10, 0, 0, 0, 0, 0, 0, 0}, 0x12345678, 16},
		{"8/4", 8, 4, bytesReaderAt{1, 0, 0, 0, 0, 0, 0, 1, 0xff, 0, 0, 0}, 0x0100000000000001, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.data, Config{
				ByteOrder:  binary.LittleEndian,
				OffsetSize: tt.offsetSize,
				LengthSize: tt.lengthSize,
			})
			off, err := r.ReadOffset()
			if err != nil {
				t.Fatal(err)
			}
			if off != tt.wantOffset {
				t.Errorf("ReadOffset = 0x%x, want 0x%x", off, tt.wantOffset)
			}
			n, err := r.ReadLength()
			if err != nil {
				t.Fatal(err)
			}
			if n != tt.wantLength {
				t.Errorf("ReadLength = %d, want %d", n, tt.wantLength)
			}
		})
	}
}

func TestReaderAtIsIndependent(t *testing.T) {
	data := bytesReaderAt{0, 1, 2, 3, 4, 5, 6, 7}
	r := NewReader(data, DefaultConfig())
	r.Skip(2)

	sub := r.At(6)
	v, err := sub.ReadUint8()
	if err != nil || v != 6 {
		t.Fatalf("sub.ReadUint8 = %d, %v", v, err)
	}
	v, err = r.ReadUint8()
	if err != nil || v != 2 {
		t.Fatalf("ReadUint8 after At = %d, %v; original reader moved", v, err)
	}
}

func TestReaderShortRead(t *testing.T) {
	r := NewReader(bytesReaderAt{1, 2, 3}, DefaultConfig())
	if _, err := r.ReadUint32(); err == nil {
		t.Error("expected error reading past the end")
	}
	if r.Pos() != 0 {
		t.Errorf("failed read advanced position to %d", r.Pos())
	}
	if b, err := r.ReadBytes(0); b != nil || err != nil {
		t.Errorf("ReadBytes(0) = %v, %v", b, err)
	}
}

func TestIsUndefinedOffset(t *testing.T) {
	tests := []struct {
		size int
		v    uint64
		want bool
	}{
		{2, 0xffff, true},
		{2, 0xfffe, false},
		{4, 0xffffffff, true},
		{8, ^uint64(0), true},
		{8, 0xffffffff, false},
	}
	for _, tt := range tests {
		r := NewReader(bytesReaderAt{}, Config{ByteOrder: binary.LittleEndian, OffsetSize: tt.size, LengthSize: 8})
		if got := r.IsUndefinedOffset(tt.v); got != tt.want {
			t.Errorf("size %d: IsUndefinedOffset(0x%x) = %v, want %v", tt.size, tt.v, got, tt.want)
		}
	}
}

func TestDecodeUintOddWidth(t *testing.T) {
	// Widths outside 1/2/4/8 are little-endian regardless of order.
	if got := DecodeUint(binary.BigEndian, []byte{0x01, 0x02, 0x03}); got != 0x030201 {
		t.Errorf("DecodeUint(3 bytes) = 0x%x, want 0x030201", got)
	}
	buf := make([]byte, 3)
	EncodeUint(binary.BigEndian, buf, 0x030201)
	if buf[0] != 1 || buf[1] != 2 || buf[2] != 3 {
		t.Errorf("EncodeUint(3 bytes) = %v", buf)
	}
}
