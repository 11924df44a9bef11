// Package btree reads version 1 B-trees ("TREE").
//
// Version 1 B-trees index two things:
//
//   - The members of an old-style group (node type 0). Leaves point to
//     symbol table nodes ("SNOD") whose entries name their member through an
//     offset into the group's local heap. See [ReadGroupEntries].
//   - The chunks of a chunked dataset written with layout versions 1 to 3
//     (node type 1). Each key carries the chunk's stored size, filter mask
//     and element offset. See [ReadChunks].
//
// h5py with default settings writes chunked datasets this way, and so does
// every HDF5 1.8 writer.
package btree
