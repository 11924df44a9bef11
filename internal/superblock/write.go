package superblock

import (
	binpkg "github.com/robert-malhotra/go-dotthz/internal/binary"
)

// New returns a version 2 superblock with 8-byte offsets and lengths.
// Version 2 is the oldest layout that goes with version 2 object headers, so
// files stay readable by HDF5 1.8 and later.
func New() *Superblock {
	return &Superblock{
		Version:    2,
		OffsetSize: 8,
		LengthSize: 8,
	}
}

// Write writes the superblock at w's position. Only versions 2 and 3 can be
// written; older versions are written as version 2.
func (sb *Superblock) Write(w *binpkg.Writer) (int64, error) {
	var buf binpkg.Buffer
	bw := binpkg.NewWriter(&buf, sb.ReaderConfig())

	version := max(sb.Version, 2)
	ext := sb.ExtensionAddress
	if ext == 0 {
		ext = bw.UndefinedOffset()
	}

	bw.WriteBytes(Signature)
	bw.WriteUint8(version)
	bw.WriteUint8(sb.OffsetSize)
	bw.WriteUint8(sb.LengthSize)
	bw.WriteUint8(sb.Flags)
	bw.WriteOffset(sb.BaseAddress)
	bw.WriteOffset(ext)
	bw.WriteOffset(sb.EOFAddress)
	bw.WriteOffset(sb.RootGroupAddress)
	bw.WriteUint32(binpkg.Lookup3Checksum(buf.Bytes()))

	if err := w.WriteBytes(buf.Bytes()); err != nil {
		return 0, err
	}
	return int64(len(buf.Bytes())), nil
}

// Size returns the encoded size of a version 2/3 superblock.
func (sb *Superblock) Size() int {
	return v2Size(int(sb.OffsetSize))
}
