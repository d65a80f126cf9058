package stream

import (
	"fmt"
	"io"
)

// MemoryStream is a Stream backed by an in-memory byte slice.
//
// Cursor semantics match FileStream: the cursor may be positioned past the
// current end, writes there extend the stream with the written bytes, and
// Truncate to a larger size zero-fills. Sync is a no-op since there is no
// durable medium behind it.
type MemoryStream struct {
	buf []byte
	pos int64
}

var _ Stream = (*MemoryStream)(nil)

// NewMemoryStream creates an empty in-memory stream.
func NewMemoryStream() *MemoryStream {
	return &MemoryStream{}
}

// Read reads up to len(p) bytes from the cursor, returning io.EOF with a
// zero count at end-of-data.
func (s *MemoryStream) Read(p []byte) (int, error) {
	if s.pos >= int64(len(s.buf)) {
		return 0, io.EOF
	}

	n := copy(p, s.buf[s.pos:])
	s.pos += int64(n)

	return n, nil
}

// Write writes len(p) bytes at the cursor, growing the stream if the write
// reaches past the current end. A cursor beyond the end implies a zero-filled
// gap, as with sparse files.
func (s *MemoryStream) Write(p []byte) (int, error) {
	end := s.pos + int64(len(p))
	if end > int64(len(s.buf)) {
		s.grow(end)
	}

	n := copy(s.buf[s.pos:], p)
	s.pos += int64(n)

	return n, nil
}

// Seek repositions the cursor.
func (s *MemoryStream) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = s.pos + offset
	case io.SeekEnd:
		abs = int64(len(s.buf)) + offset
	default:
		return 0, fmt.Errorf("invalid seek whence: %d", whence)
	}

	if abs < 0 {
		return 0, fmt.Errorf("negative seek position: %d", abs)
	}

	s.pos = abs

	return abs, nil
}

// Sync is a no-op: memory has no durable backing.
func (s *MemoryStream) Sync() error {
	return nil
}

// Size returns the current stream length.
func (s *MemoryStream) Size() (int64, error) {
	return int64(len(s.buf)), nil
}

// Truncate changes the stream length, zero-filling when growing. The cursor
// is left unchanged.
func (s *MemoryStream) Truncate(size int64) error {
	if size < 0 {
		return fmt.Errorf("negative truncate size: %d", size)
	}

	if size <= int64(len(s.buf)) {
		s.buf = s.buf[:size]
		return nil
	}

	s.grow(size)

	return nil
}

// Bytes returns the underlying buffer. The slice aliases the stream's
// storage; it is intended for tests and diagnostics, not for mutation.
func (s *MemoryStream) Bytes() []byte {
	return s.buf
}

func (s *MemoryStream) grow(size int64) {
	if size <= int64(cap(s.buf)) {
		old := len(s.buf)
		s.buf = s.buf[:size]
		clear(s.buf[old:])

		return
	}

	newBuf := make([]byte, size)
	copy(newBuf, s.buf)
	s.buf = newBuf
}
