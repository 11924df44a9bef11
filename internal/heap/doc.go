// Package heap reads the two HDF5 heaps that hold variable-sized metadata.
//
// A [LocalHeap] (signature "HEAP") belongs to a symbol table group and holds
// its member names as NUL-terminated strings; symbol table entries refer to
// names by offset.
//
// A [GlobalHeap] (signature "GCOL") is a collection of numbered objects
// shared by the whole file. Variable-length strings, which h5py uses for
// Python str attributes, are stored there and referenced by an [ID].
// [Collections] caches collections while the elements of one attribute are
// resolved.
package heap
