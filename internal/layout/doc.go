// Package layout reads the raw elements of a dataset from wherever its
// layout message says they are stored.
//
// Compact data comes from the message itself and contiguous data from one
// block of the file. Chunked data is assembled from its chunks, each passed
// back through the filter pipeline; chunks are indexed by a version 1
// B-tree (layout versions 1 to 3) or, for version 4 layouts, by the single
// chunk or implicit index. Edge chunks are clipped to the dataset extent and
// chunks that were never written read as zeros.
//
// Fixed array, extensible array and version 2 B-tree indexes, and virtual
// datasets, are reported as [ErrUnsupported].
package layout
