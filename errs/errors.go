// Package errs defines the sentinel errors shared by all blockstore packages.
//
// Callers match on these with errors.Is; call sites wrap them with
// fmt.Errorf("...: %w", err) to add context without losing identity.
package errs

import "errors"

var (
	// ErrNilStream is returned when a storage is constructed without a backing stream.
	ErrNilStream = errors.New("stream is nil")

	// ErrInvalidBlockSize is returned when the configured block size is below MinBlockSize.
	ErrInvalidBlockSize = errors.New("invalid block size")

	// ErrInvalidHeaderSize is returned when the configured header size is not
	// smaller than the block size.
	ErrInvalidHeaderSize = errors.New("invalid header size")

	// ErrInvalidBlockID is returned when a block id is negative.
	ErrInvalidBlockID = errors.New("invalid block id")

	// ErrBlockNotFound is returned by Find when the requested block's byte
	// range lies beyond the current stream length.
	ErrBlockNotFound = errors.New("block not found")

	// ErrMisalignedStream is returned by CreateNew when the stream length is
	// not an exact multiple of the block size.
	ErrMisalignedStream = errors.New("stream length not aligned to block size")

	// ErrBlockReleased is returned when an operation is invoked on a block
	// after it has been released.
	ErrBlockReleased = errors.New("block already released")

	// ErrFieldOutOfRange is returned when a header field index is outside
	// [0, headerSize/8).
	ErrFieldOutOfRange = errors.New("header field index out of range")

	// ErrOutOfRange is returned when a read or write range exceeds the data
	// region or the supplied buffer bounds.
	ErrOutOfRange = errors.New("byte range out of bounds")

	// ErrTruncatedStream is returned when the stream reports end-of-data while
	// more bytes are still expected. It indicates the backing medium is
	// shorter than the block addressing implies and is never retried.
	ErrTruncatedStream = errors.New("stream truncated")

	// ErrStreamClosed is returned by stream operations after Close.
	ErrStreamClosed = errors.New("stream closed")
)
