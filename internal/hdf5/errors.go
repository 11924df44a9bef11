// Package hdf5 reads and writes HDF5 files in pure Go.
//
// It is the container store underneath the dotTHz codec: named groups,
// named typed multi-dimensional datasets and named attributes. Files are
// written with a version 2 superblock and version 2 object headers; reading
// also understands the version 0/1 structures produced by older writers.
package hdf5

import (
	"errors"

	"github.com/robert-malhotra/go-dotthz/internal/superblock"
)

var (
	ErrNotHDF5         = superblock.ErrNotHDF5
	ErrNotFound        = errors.New("object not found")
	ErrNotDataset      = errors.New("object is not a dataset")
	ErrNotGroup        = errors.New("object is not a group")
	ErrReadOnly        = errors.New("file is not writable")
	ErrWriteOnly       = errors.New("objects of a file being written cannot be opened")
	ErrUnsupportedType = errors.New("unsupported datatype")
	ErrClosed          = errors.New("file is closed")
	ErrLinkDepth       = errors.New("maximum link depth exceeded")
	ErrDenseStorage    = errors.New("dense link or attribute storage is not supported")
	ErrExternalLink    = errors.New("external links are not supported")
)

// MaxLinkDepth is the maximum number of soft links followed while resolving
// one path.
const MaxLinkDepth = 100
