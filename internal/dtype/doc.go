// Package dtype converts between HDF5 element bytes and Go values.
//
// Numeric datatypes map onto Go's fixed-width types:
//
//	integer, signed     int8, int16, int32, int64
//	integer, unsigned   uint8, uint16, uint32, uint64
//	IEEE float          float32, float64
//	enum                the Go type of its integer base
//
// Both byte orders are read; values are always written little-endian.
// Integers must use every bit of their size and floats must have the
// standard IEEE 754 layout. Anything else is [ErrUnsupported].
//
// Fixed- and variable-length strings are read with [Strings]. The bytes of
// a variable-length string live in the global heap.
package dtype
