package superblock

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	binpkg "github.com/robert-malhotra/go-dotthz/internal/binary"
)

func writeV2(t *testing.T, sb *Superblock, at int64) []byte {
	t.Helper()
	var buf binpkg.Buffer
	if _, err := sb.Write(binpkg.NewWriter(&buf, sb.ReaderConfig()).At(at)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return buf.Bytes()
}

func TestReadNotHDF5(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"zeros", make([]byte, 4096)},
		{"short", []byte("hello")},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(tt.data))
			if !errors.Is(err, ErrNotHDF5) {
				t.Errorf("expected ErrNotHDF5, got %v", err)
			}
		})
	}
}

func TestReadUnsupportedVersion(t *testing.T) {
	data := make([]byte, 256)
	copy(data, Signature)
	data[8] = 99

	_, err := Read(bytes.NewReader(data))
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestWriteReadV2(t *testing.T) {
	sb := New()
	sb.RootGroupAddress = 48
	sb.EOFAddress = 4096

	data := writeV2(t, sb, 0)
	if len(data) != sb.Size() {
		t.Fatalf("wrote %d bytes, Size() = %d", len(data), sb.Size())
	}

	got, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Version != 2 || got.OffsetSize != 8 || got.LengthSize != 8 {
		t.Errorf("version/sizes = %d/%d/%d", got.Version, got.OffsetSize, got.LengthSize)
	}
	if got.RootGroupAddress != 48 || got.EOFAddress != 4096 {
		t.Errorf("root = %d, eof = %d", got.RootGroupAddress, got.EOFAddress)
	}
	if got.ExtensionAddress != ^uint64(0) {
		t.Errorf("extension address = 0x%x, want undefined", got.ExtensionAddress)
	}
	if got.FileOffset != 0 {
		t.Errorf("FileOffset = %d", got.FileOffset)
	}
}

func TestReadV2AfterUserBlock(t *testing.T) {
	sb := New()
	sb.RootGroupAddress = 100
	data := writeV2(t, sb, 512)

	got, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.FileOffset != 512 || got.RootGroupAddress != 100 {
		t.Errorf("FileOffset = %d, root = %d", got.FileOffset, got.RootGroupAddress)
	}
}

func TestReadV2ChecksumFailure(t *testing.T) {
	data := writeV2(t, New(), 0)
	data[20] ^= 0xff

	_, err := Read(bytes.NewReader(data))
	if !errors.Is(err, ErrInvalidSuperblock) {
		t.Errorf("expected ErrInvalidSuperblock, got %v", err)
	}
}

func TestReadBadFieldSize(t *testing.T) {
	sb := New()
	sb.OffsetSize = 3
	data := make([]byte, 64)
	copy(data, Signature)
	data[8] = 2
	data[9] = sb.OffsetSize
	data[10] = 8

	_, err := Read(bytes.NewReader(data))
	if !errors.Is(err, ErrInvalidSuperblock) {
		t.Errorf("expected ErrInvalidSuperblock, got %v", err)
	}
}

// v0Superblock builds a version 0 (or 1) superblock with 8-byte fields, as
// written by the HDF5 library with default settings.
func v0Superblock(version uint8, cacheType uint32) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	buf.Write(Signature)
	buf.Write([]byte{version, 0, 0, 0, 0, 8, 8, 0})
	binary.Write(&buf, le, uint16(4))  // leaf K
	binary.Write(&buf, le, uint16(16)) // internal K
	binary.Write(&buf, le, uint32(0))  // flags
	if version == 1 {
		binary.Write(&buf, le, uint16(32))
		binary.Write(&buf, le, uint16(0))
	}
	binary.Write(&buf, le, uint64(0))    // base
	binary.Write(&buf, le, ^uint64(0))   // free-space
	binary.Write(&buf, le, uint64(2048)) // EOF
	binary.Write(&buf, le, ^uint64(0))   // driver info
	binary.Write(&buf, le, uint64(0))    // link name offset
	binary.Write(&buf, le, uint64(96))   // root object header
	binary.Write(&buf, le, cacheType)    // cache type
	binary.Write(&buf, le, uint32(0))    // reserved
	binary.Write(&buf, le, uint64(136))  // B-tree
	binary.Write(&buf, le, uint64(680))  // local heap
	return buf.Bytes()
}

func TestReadV0(t *testing.T) {
	for _, version := range []uint8{0, 1} {
		sb, err := Read(bytes.NewReader(v0Superblock(version, 1)))
		if err != nil {
			t.Fatalf("v%d: Read: %v", version, err)
		}
		if sb.Version != version || sb.OffsetSize != 8 || sb.LengthSize != 8 {
			t.Errorf("v%d: version/sizes = %d/%d/%d", version, sb.Version, sb.OffsetSize, sb.LengthSize)
		}
		if sb.EOFAddress != 2048 || sb.RootGroupAddress != 96 {
			t.Errorf("v%d: eof = %d, root = %d", version, sb.EOFAddress, sb.RootGroupAddress)
		}
		if sb.RootGroupBTreeAddress != 136 || sb.RootGroupLocalHeapAddress != 680 {
			t.Errorf("v%d: btree = %d, heap = %d", version, sb.RootGroupBTreeAddress, sb.RootGroupLocalHeapAddress)
		}
	}
}

func TestReadV0WithoutCache(t *testing.T) {
	sb, err := Read(bytes.NewReader(v0Superblock(0, 0)))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if sb.RootGroupBTreeAddress != 0 || sb.RootGroupLocalHeapAddress != 0 {
		t.Errorf("uncached entry produced btree = %d, heap = %d", sb.RootGroupBTreeAddress, sb.RootGroupLocalHeapAddress)
	}
}

func TestReaderConfig(t *testing.T) {
	sb := &Superblock{OffsetSize: 4, LengthSize: 8}
	cfg := sb.ReaderConfig()
	if cfg.OffsetSize != 4 || cfg.LengthSize != 8 || cfg.ByteOrder != binary.LittleEndian {
		t.Errorf("ReaderConfig = %+v", cfg)
	}
}
