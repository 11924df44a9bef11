package hdf5

import (
	"fmt"
	"os"

	"github.com/robert-malhotra/go-dotthz/internal/alloc"
	binpkg "github.com/robert-malhotra/go-dotthz/internal/binary"
	"github.com/robert-malhotra/go-dotthz/internal/message"
	"github.com/robert-malhotra/go-dotthz/internal/object"
	"github.com/robert-malhotra/go-dotthz/internal/superblock"
)

// Create creates an HDF5 file at path, truncating an existing file unless
// WithExclusive is given. Files are written with a version 2 superblock and
// version 2 object headers, little-endian.
func Create(path string, opts ...FileOption) (*File, error) {
	options := createOptions{cfg: binpkg.DefaultConfig()}
	for _, opt := range opts {
		opt(&options)
	}

	flag := os.O_RDWR | os.O_CREATE | os.O_TRUNC
	if options.exclusive {
		flag = os.O_RDWR | os.O_CREATE | os.O_EXCL
	}
	osFile, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}

	sb := superblock.New()
	sb.OffsetSize = uint8(options.cfg.OffsetSize)
	sb.LengthSize = uint8(options.cfg.LengthSize)
	f := &File{
		path:       path,
		file:       osFile,
		superblock: sb,
		writable:   true,
		writer:     binpkg.NewWriter(osFile, options.cfg),
		allocator:  alloc.New(uint64(sb.Size())),
	}

	// The root group header sits right after the superblock.
	rootAddr, err := f.writeHeader(object.GroupMessages(nil, nil), "root group header")
	if err == nil {
		sb.RootGroupAddress = rootAddr
		sb.EOFAddress = f.allocator.EOFAddr()
		_, err = sb.Write(f.writer.At(0))
	}
	if err != nil {
		osFile.Close()
		os.Remove(path)
		return nil, err
	}

	f.root = &Group{file: f, path: "/", addr: rootAddr}
	return f, nil
}

// writeHeader encodes an object header, writes it at a freshly allocated
// address and returns that address. The tag names the block in layout
// errors.
func (f *File) writeHeader(msgs []message.Message, tag string) (uint64, error) {
	buf, err := object.Encode(msgs, f.writer.Config())
	if err != nil {
		return 0, fmt.Errorf("encoding %s: %w", tag, err)
	}
	addr := f.allocate(int64(len(buf)), tag)
	if err := f.writer.At(int64(addr)).WriteBytes(buf); err != nil {
		return 0, fmt.Errorf("writing %s: %w", tag, err)
	}
	return addr, nil
}

// allocate reserves space in the file and returns the address. The tag names
// the block in layout errors.
func (f *File) allocate(size int64, tag string) uint64 {
	return f.allocator.Alloc(uint64(size), tag)
}

// closeWritable handles closing a writable file.
func (f *File) closeWritable() error {
	if err := f.root.flush(); err != nil {
		return err
	}
	f.superblock.RootGroupAddress = f.root.addr
	if err := f.allocator.Validate(); err != nil {
		return fmt.Errorf("file layout: %w", err)
	}
	f.superblock.EOFAddress = f.allocator.EOFAddr()
	if _, err := f.superblock.Write(f.writer.At(0)); err != nil {
		return fmt.Errorf("writing superblock: %w", err)
	}
	return f.file.Sync()
}

// Writable reports whether the file was created for writing.
func (f *File) Writable() bool {
	return f.writable
}
