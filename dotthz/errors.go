package dotthz

import "github.com/robert-malhotra/go-dotthz/internal/store"

// Error kinds, matched with errors.Is.
var (
	// ErrNotFound reports a missing file, group or dataset.
	ErrNotFound = store.ErrNotFound
	// ErrFormat reports a structurally invalid file or value, such as md
	// key and value lists of different lengths.
	ErrFormat = store.ErrFormat
	// ErrIO reports a permission or disk-level failure.
	ErrIO = store.ErrIO
	// ErrType reports a dataset or attribute type that cannot be stored.
	ErrType = store.ErrType
)

// Error is the concrete error returned by Save and Load. It unwraps to its
// Kind and to the underlying cause.
type Error = store.Error

func newError(op, path, object string, kind, err error) *Error {
	return &Error{Op: op, Path: path, Object: object, Kind: kind, Err: err}
}
