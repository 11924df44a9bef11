package hdf5

import (
	"fmt"
	"os"
	"strings"

	"github.com/robert-malhotra/go-dotthz/internal/alloc"
	"github.com/robert-malhotra/go-dotthz/internal/binary"
	"github.com/robert-malhotra/go-dotthz/internal/object"
	"github.com/robert-malhotra/go-dotthz/internal/superblock"
)

// File is an HDF5 file opened for reading with Open or being written after
// Create. The two modes do not mix: a file being written cannot open its
// objects, and an opened file cannot change.
type File struct {
	path       string
	file       *os.File
	reader     *binary.Reader
	superblock *superblock.Superblock
	root       *Group
	closed     bool

	writable  bool
	writer    *binary.Writer
	allocator *alloc.Allocator
}

// Open opens the file at path read-only.
func Open(path string) (*File, error) {
	osFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	f, err := openFile(path, osFile)
	if err != nil {
		osFile.Close()
		return nil, err
	}
	return f, nil
}

func openFile(path string, osFile *os.File) (*File, error) {
	sb, err := superblock.Read(osFile)
	if err != nil {
		return nil, fmt.Errorf("reading superblock: %w", err)
	}
	f := &File{
		path:       path,
		file:       osFile,
		reader:     binary.NewReader(osFile, sb.ReaderConfig()),
		superblock: sb,
	}
	if f.root, err = f.openGroupAt(sb.RootGroupAddress, "/"); err != nil {
		return nil, fmt.Errorf("opening root group: %w", err)
	}
	return f, nil
}

// Close closes the file, first writing the final superblock of a file being
// written. Closing again does nothing.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	var err error
	if f.writable {
		err = f.closeWritable()
	}
	if cerr := f.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Root returns the root group "/". Every other object is reached from it.
func (f *File) Root() *Group { return f.root }

// Path returns the path the file was opened or created with.
func (f *File) Path() string { return f.path }

// Version returns the superblock version: 0 to 3 for opened files, 2 for
// files being written.
func (f *File) Version() int { return int(f.superblock.Version) }

// OpenGroup opens the group at path, relative to the root.
func (f *File) OpenGroup(path string) (*Group, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.root.OpenGroup(path)
}

// OpenDataset opens the dataset at path, relative to the root.
func (f *File) OpenDataset(path string) (*Dataset, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.root.OpenDataset(path)
}

func (f *File) openGroupAt(address uint64, path string) (*Group, error) {
	header, err := f.readHeader(address)
	if err != nil {
		return nil, err
	}
	if info := header.LinkInfo(); info != nil && !f.reader.IsUndefinedOffset(info.FractalHeapAddress) {
		return nil, fmt.Errorf("group %s: %w", path, ErrDenseStorage)
	}
	return &Group{file: f, path: path, header: header, addr: address}, nil
}

func (f *File) openDatasetAt(address uint64, path string) (*Dataset, error) {
	header, err := f.readHeader(address)
	if err != nil {
		return nil, err
	}
	return newDataset(f, path, header)
}

// readHeader reads an object header and rejects attributes kept outside it.
func (f *File) readHeader(address uint64) (*object.Header, error) {
	header, err := object.Read(f.reader, address)
	if err != nil {
		return nil, fmt.Errorf("reading object header: %w", err)
	}
	if info := header.AttributeInfo(); info != nil && !f.reader.IsUndefinedOffset(info.FractalHeapAddress) {
		return nil, fmt.Errorf("object at 0x%x: %w", address, ErrDenseStorage)
	}
	return header, nil
}

// splitPath splits a slash-separated path into its non-empty components.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// resolve follows an absolute path from the root group. visited holds the
// soft link targets already followed.
func (f *File) resolve(absPath string, visited map[string]bool) (*target, error) {
	parts := splitPath(absPath)
	if len(parts) == 0 {
		return &target{address: f.superblock.RootGroupAddress}, nil
	}

	current := f.root
	for i, name := range parts {
		t, err := current.findChild(name, visited)
		if err != nil {
			return nil, fmt.Errorf("resolving %q in %s: %w", name, absPath, err)
		}
		if i == len(parts)-1 {
			return t, nil
		}
		if t.isDataset {
			return nil, fmt.Errorf("%q in %s: %w", name, absPath, ErrNotGroup)
		}
		if current, err = f.openGroupAt(t.address, ""); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("empty path")
}
