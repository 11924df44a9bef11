package superblock

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	binpkg "github.com/robert-malhotra/go-dotthz/internal/binary"
)

// Signature is the eight bytes every HDF5 superblock starts with.
var Signature = []byte{0x89, 'H', 'D', 'F', '\r', '\n', 0x1a, '\n'}

// The superblock may follow a user block; these are the offsets searched.
var searchOffsets = []int64{0, 512, 1024, 2048}

var (
	ErrNotHDF5            = errors.New("not an HDF5 file: signature not found")
	ErrUnsupportedVersion = errors.New("unsupported superblock version")
	ErrInvalidSuperblock  = errors.New("invalid superblock")
)

// Superblock holds the file-level metadata needed to locate the root group.
type Superblock struct {
	Version    uint8
	OffsetSize uint8
	LengthSize uint8

	// Flags are the file consistency flags.
	Flags uint8

	BaseAddress      uint64
	EOFAddress       uint64
	RootGroupAddress uint64

	// ExtensionAddress is the superblock extension object header (v2+),
	// undefined when there is none.
	ExtensionAddress uint64

	// Root group symbol table cached in the v0/v1 root entry scratch pad.
	// Both are zero when the entry carries no cache.
	RootGroupBTreeAddress     uint64
	RootGroupLocalHeapAddress uint64

	// FileOffset is where the signature was found.
	FileOffset int64
}

// Read locates and parses the superblock of an HDF5 file.
func Read(r io.ReaderAt) (*Superblock, error) {
	sig := make([]byte, len(Signature)+1)
	for _, offset := range searchOffsets {
		if _, err := r.ReadAt(sig, offset); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if !bytes.Equal(sig[:len(Signature)], Signature) {
			continue
		}

		var sb *Superblock
		var err error
		switch version := sig[len(Signature)]; version {
		case 0, 1:
			sb, err = readV0(r, offset, version)
		case 2, 3:
			sb, err = readV2(r, offset, version)
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
		}
		if err != nil {
			return nil, err
		}
		sb.FileOffset = offset
		return sb, nil
	}
	return nil, ErrNotHDF5
}

// ReaderConfig returns the encoding of the file's metadata.
func (sb *Superblock) ReaderConfig() binpkg.Config {
	return binpkg.Config{
		ByteOrder:  binary.LittleEndian,
		OffsetSize: int(sb.OffsetSize),
		LengthSize: int(sb.LengthSize),
	}
}

func checkSizes(sb *Superblock) error {
	for _, size := range []uint8{sb.OffsetSize, sb.LengthSize} {
		switch size {
		case 2, 4, 8:
		default:
			return fmt.Errorf("%w: field size %d", ErrInvalidSuperblock, size)
		}
	}
	return nil
}

/*
Version 0/1 layout, O = size of offsets:

	0      8   signature
	8      1   version
	9      1   free-space version
	10     1   root symbol table entry version
	11     1   reserved
	12     1   shared header message version
	13     1   size of offsets
	14     1   size of lengths
	15     1   reserved
	16     2   group leaf node K
	18     2   group internal node K
	20     4   file consistency flags
	24     4   (v1 only) indexed storage K + reserved
	       O   base address
	       O   free-space info address
	       O   EOF address
	       O   driver info address
	       *   root group symbol table entry

Symbol table entry:

	O    link name offset
	O    object header address
	4    cache type (1 = B-tree and local heap cached)
	4    reserved
	16   scratch pad: B-tree address (O), local heap address (O)
*/
func readV0(r io.ReaderAt, offset int64, version uint8) (*Superblock, error) {
	fixed := make([]byte, 16)
	if _, err := r.ReadAt(fixed, offset+8); err != nil {
		return nil, err
	}
	sb := &Superblock{
		Version:    version,
		OffsetSize: fixed[5],
		LengthSize: fixed[6],
		Flags:      fixed[12],
	}
	if err := checkSizes(sb); err != nil {
		return nil, err
	}

	br := binpkg.NewReader(r, sb.ReaderConfig()).At(offset + 24)
	if version == 1 {
		br.Skip(4)
	}

	var err error
	if sb.BaseAddress, err = br.ReadOffset(); err != nil {
		return nil, err
	}
	br.Skip(int64(sb.OffsetSize)) // free-space info
	if sb.EOFAddress, err = br.ReadOffset(); err != nil {
		return nil, err
	}
	br.Skip(int64(sb.OffsetSize)) // driver info

	br.Skip(int64(sb.OffsetSize)) // link name offset
	if sb.RootGroupAddress, err = br.ReadOffset(); err != nil {
		return nil, err
	}
	cacheType, err := br.ReadUint32()
	if err != nil {
		return nil, err
	}
	br.Skip(4)
	if cacheType == 1 {
		if sb.RootGroupBTreeAddress, err = br.ReadOffset(); err != nil {
			return nil, err
		}
		if sb.RootGroupLocalHeapAddress, err = br.ReadOffset(); err != nil {
			return nil, err
		}
	}
	return sb, nil
}

/*
Version 2/3 layout, O = size of offsets:

	0      8   signature
	8      1   version
	9      1   size of offsets
	10     1   size of lengths
	11     1   file consistency flags
	12     O   base address
	12+O   O   superblock extension address
	12+2O  O   EOF address
	12+3O  O   root group object header address
	12+4O  4   lookup3 checksum of everything before it
*/
func readV2(r io.ReaderAt, offset int64, version uint8) (*Superblock, error) {
	fixed := make([]byte, 3)
	if _, err := r.ReadAt(fixed, offset+9); err != nil {
		return nil, err
	}
	sb := &Superblock{
		Version:    version,
		OffsetSize: fixed[0],
		LengthSize: fixed[1],
		Flags:      fixed[2],
	}
	if err := checkSizes(sb); err != nil {
		return nil, err
	}

	size := v2Size(int(sb.OffsetSize))
	buf := make([]byte, size)
	if _, err := r.ReadAt(buf, offset); err != nil {
		return nil, err
	}
	stored := binary.LittleEndian.Uint32(buf[size-4:])
	if binpkg.Lookup3Checksum(buf[:size-4]) != stored {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrInvalidSuperblock)
	}

	br := binpkg.NewReader(bytes.NewReader(buf), sb.ReaderConfig()).At(12)
	sb.BaseAddress, _ = br.ReadOffset()
	sb.ExtensionAddress, _ = br.ReadOffset()
	sb.EOFAddress, _ = br.ReadOffset()
	sb.RootGroupAddress, _ = br.ReadOffset()
	return sb, nil
}

func v2Size(offsetSize int) int {
	return 12 + 4*offsetSize + 4
}
