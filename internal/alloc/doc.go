// Package alloc manages file space while an HDF5 file is being written.
//
// Object headers and raw dataset bytes are placed at file offsets handed out
// by an [Allocator]. Allocation is append-only: each block starts at the
// current end of file, which then advances by the block size. Every block is
// recorded with a tag so that [Allocator.Validate] can report which objects
// collide if the layout is ever inconsistent.
//
//	a := alloc.New(96)
//	addr := a.Alloc(1024, "dataset /sample/signal")
package alloc
