// Package object reads and writes HDF5 object headers.
//
// Every group and dataset is an object header: a list of header messages
// (see package message) spread over one or more blocks chained by
// continuation messages.
//
// # Versions
//
// Version 1 headers start with the version byte and keep their messages
// 8-byte aligned. Version 2 headers start with "OHDR", use compact message
// headers and end every block with a Jenkins lookup3 checksum; continuation
// blocks carry the signature "OCHK".
//
// [Read] accepts both versions. [Encode] writes version 2 headers in a single
// block, which is what this module produces for every group and dataset.
package object
