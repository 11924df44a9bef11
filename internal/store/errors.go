package store

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/robert-malhotra/go-dotthz/internal/hdf5"
)

// Error kinds. Every error returned by this package wraps exactly one of them.
var (
	ErrNotFound = errors.New("not found")
	ErrFormat   = errors.New("invalid format")
	ErrIO       = errors.New("i/o failure")
	ErrType     = errors.New("unsupported type")
)

// Error describes a failed container operation.
type Error struct {
	Op     string // operation, e.g. "open" or "read dataset"
	Path   string // file path
	Object string // group or group/dataset, empty for file-level operations
	Kind   error  // one of ErrNotFound, ErrFormat, ErrIO, ErrType
	Err    error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	if e.Object != "" {
		b.WriteString(" [")
		b.WriteString(e.Object)
		b.WriteString("]")
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op, path, object string, kind, err error) *Error {
	return &Error{Op: op, Path: path, Object: object, Kind: kind, Err: err}
}

// classify maps an engine or OS error onto an error kind, falling back to def.
func classify(err, def error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, hdf5.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission), errors.Is(err, fs.ErrExist), errors.Is(err, hdf5.ErrClosed):
		return ErrIO
	case errors.Is(err, hdf5.ErrNotHDF5), errors.Is(err, hdf5.ErrNotGroup), errors.Is(err, hdf5.ErrNotDataset):
		return ErrFormat
	case errors.Is(err, hdf5.ErrUnsupportedType):
		return ErrType
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return ErrIO
	}
	return def
}
