package stream

import (
	"fmt"
	"os"

	"github.com/arloliu/blockstore/errs"
)

// FileStream is a Stream backed by an operating system file.
//
// Sync maps to fsync, so durability guarantees are those of the underlying
// filesystem. Truncate relies on the OS zero-filling extended regions.
type FileStream struct {
	file *os.File
}

var _ Stream = (*FileStream)(nil)

// OpenFile opens or creates the file at path for read-write access and wraps
// it in a FileStream.
func OpenFile(path string) (*FileStream, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream file: %w", err)
	}

	return &FileStream{file: file}, nil
}

// NewFileStream wraps an already-open file. The stream takes ownership of the
// handle; Close closes it.
func NewFileStream(file *os.File) (*FileStream, error) {
	if file == nil {
		return nil, errs.ErrNilStream
	}

	return &FileStream{file: file}, nil
}

// Read reads up to len(p) bytes from the current cursor position.
func (s *FileStream) Read(p []byte) (int, error) {
	if s.file == nil {
		return 0, errs.ErrStreamClosed
	}

	return s.file.Read(p)
}

// Write writes len(p) bytes at the current cursor position, extending the
// file if the write reaches past its end.
func (s *FileStream) Write(p []byte) (int, error) {
	if s.file == nil {
		return 0, errs.ErrStreamClosed
	}

	return s.file.Write(p)
}

// Seek repositions the cursor.
func (s *FileStream) Seek(offset int64, whence int) (int64, error) {
	if s.file == nil {
		return 0, errs.ErrStreamClosed
	}

	return s.file.Seek(offset, whence)
}

// Sync flushes file contents to stable storage.
func (s *FileStream) Sync() error {
	if s.file == nil {
		return errs.ErrStreamClosed
	}

	return s.file.Sync()
}

// Size returns the current file length.
func (s *FileStream) Size() (int64, error) {
	if s.file == nil {
		return 0, errs.ErrStreamClosed
	}

	info, err := s.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat stream file: %w", err)
	}

	return info.Size(), nil
}

// Truncate changes the file length. The OS zero-fills any extended region.
// The cursor position is left unchanged.
func (s *FileStream) Truncate(size int64) error {
	if s.file == nil {
		return errs.ErrStreamClosed
	}

	return s.file.Truncate(size)
}

// Close closes the underlying file. The stream is unusable afterwards.
func (s *FileStream) Close() error {
	if s.file == nil {
		return nil
	}

	err := s.file.Close()
	s.file = nil

	return err
}
