// Package filter reverses the HDF5 filter pipeline applied to stored
// chunks.
//
// Three filters are decoded:
//
//   - deflate (ID 1), through github.com/klauspost/compress/zlib
//   - shuffle (ID 2)
//   - fletcher32 (ID 3), which verifies and strips the trailing checksum
//
// Filters run last to first. A chunk's filter mask marks stages that were
// skipped when it was written; those stages are skipped again here. Any
// other filter that was applied yields [ErrUnsupported].
package filter
