// Package superblock reads and writes the HDF5 superblock, the fixed-format
// block that identifies a file as HDF5 and points at its root group.
//
// [Read] looks for the signature at byte 0 and then after a user block of
// 512, 1024 or 2048 bytes. Versions 0 and 1 (written by default by the HDF5
// library and h5py) reach the root group through a symbol table entry whose
// scratch pad may cache the root B-tree and local heap. Versions 2 and 3 name
// the root object header directly and carry a lookup3 checksum.
//
// Files are always written with a version 2 superblock:
//
//	sb := superblock.New()
//	sb.RootGroupAddress = rootAddr
//	sb.EOFAddress = eof
//	_, err := sb.Write(w.At(0))
package superblock
