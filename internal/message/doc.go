// Package message parses and encodes HDF5 object header messages.
//
// An object header is a list of typed messages. Reading understands the
// messages a group or dataset written by HDF5 1.6 through 1.14 can carry:
//
//   - Dataspace (0x01): rank and dimensions
//   - Link Info (0x02) and Attribute Info (0x15): where dense link or
//     attribute storage lives, if any
//   - Datatype (0x03): element class, size and byte order
//   - Link (0x06): one named member of a group
//   - Data Layout (0x08): compact, contiguous or chunked storage
//   - Filter Pipeline (0x0B): filters applied to chunks
//   - Attribute (0x0C): a named value attached to the object
//   - Object Header Continuation (0x10): more messages elsewhere
//   - Symbol Table (0x11): B-tree and local heap of an old-style group
//
// Other message types are kept as [Unknown]. Messages that a writer needs
// to produce implement encoding and are turned into bytes with [Encode].
package message
