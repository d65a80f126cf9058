package stream

import "io"

// Stream is a seekable byte sink/source backing a block storage instance.
//
// The contract matches *os.File: Read returns the number of bytes actually
// read with 0 meaning end-of-data, Write transfers the whole buffer or fails,
// Sync forces buffered writes to durable storage, and Truncate to a larger
// size zero-fills the new region.
//
// A Stream has a single cursor shared by every consumer. The block layer
// always issues a Seek immediately before the Read or Write that depends on
// it and never interleaves two positioned operations, but it performs no
// locking of its own; concurrent use must be serialized by the caller.
type Stream interface {
	io.Reader
	io.Writer
	io.Seeker

	// Sync forces buffered writes to durable storage.
	Sync() error

	// Size returns the current total length of the stream in bytes.
	Size() (int64, error)

	// Truncate changes the length of the stream. Growing the stream
	// zero-fills the new region.
	Truncate(size int64) error
}
