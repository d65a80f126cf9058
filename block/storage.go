package block

import (
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/blockstore/endian"
	"github.com/arloliu/blockstore/errs"
	"github.com/arloliu/blockstore/internal/options"
	"github.com/arloliu/blockstore/internal/pool"
	"github.com/arloliu/blockstore/stream"
)

// storageConfig carries the constructor-time settings for a Storage.
type storageConfig struct {
	blockSize  int
	headerSize int
}

// StorageOption configures a Storage during construction.
type StorageOption = options.Option[*storageConfig]

// WithBlockSize sets the total size of each block in bytes.
// The size must be at least MinBlockSize.
func WithBlockSize(size int) StorageOption {
	return options.NoError(func(c *storageConfig) {
		c.blockSize = size
	})
}

// WithHeaderSize sets the number of bytes reserved for header fields at the
// start of each block. It must be smaller than the block size and no larger
// than the derived sector size.
func WithHeaderSize(size int) StorageOption {
	return options.NoError(func(c *storageConfig) {
		c.headerSize = size
	})
}

// Storage manages fixed-size blocks over a seekable stream.
//
// It owns the backing stream and the block geometry, allocates new blocks by
// extending the stream, looks up existing blocks by id, and tracks every
// currently-open block in a registry so that at most one live Block exists
// per id. Storage never reads or writes block contents itself; all content
// access goes through the Block handles it returns.
//
// Storage performs no locking. The stream cursor is shared state, so all use
// of a Storage and its Blocks must be serialized by the caller.
type Storage struct {
	stream  stream.Stream
	geo     Geometry
	engine  endian.EndianEngine
	blocks  map[int64]*Block
	sectors *pool.SectorPool
}

// NewStorage creates a block storage over the given stream.
//
// The stream may be empty or may contain blocks written by a previous
// instance with the same geometry; no stream-level metadata is read or
// written.
func NewStorage(s stream.Stream, opts ...StorageOption) (*Storage, error) {
	if s == nil {
		return nil, errs.ErrNilStream
	}

	cfg := &storageConfig{
		blockSize:  DefaultBlockSize,
		headerSize: DefaultHeaderSize,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	geo, err := newGeometry(cfg.blockSize, cfg.headerSize)
	if err != nil {
		return nil, err
	}

	return &Storage{
		stream:  s,
		geo:     geo,
		engine:  endian.GetLittleEndianEngine(),
		blocks:  make(map[int64]*Block),
		sectors: pool.NewSectorPool(geo.sectorSize),
	}, nil
}

// Geometry returns the storage geometry.
func (s *Storage) Geometry() Geometry { return s.geo }

// BlockSize returns the total size of each block in bytes.
func (s *Storage) BlockSize() int { return s.geo.blockSize }

// HeaderSize returns the header region size of each block in bytes.
func (s *Storage) HeaderSize() int { return s.geo.headerSize }

// DataSize returns the data region size of each block in bytes.
func (s *Storage) DataSize() int { return s.geo.dataSize }

// SectorSize returns the size of the cached leading sector of each block.
func (s *Storage) SectorSize() int { return s.geo.sectorSize }

// OpenBlocks returns the number of blocks currently open.
func (s *Storage) OpenBlocks() int { return len(s.blocks) }

// CreateNew allocates a new block at the end of the stream and returns it.
//
// The stream length must be an exact multiple of the block size; the new
// block's id is the previous length divided by the block size. The stream is
// extended by exactly one block, and the extended region is zero-filled by
// the stream, so the new block starts with an all-zero header and data
// region. The caller is responsible for releasing the returned block.
func (s *Storage) CreateNew() (*Block, error) {
	length, err := s.stream.Size()
	if err != nil {
		return nil, fmt.Errorf("failed to query stream length: %w", err)
	}

	blockSize := int64(s.geo.blockSize)
	if length%blockSize != 0 {
		return nil, fmt.Errorf("stream length %d with block size %d: %w",
			length, blockSize, errs.ErrMisalignedStream)
	}

	if err := s.stream.Truncate(length + blockSize); err != nil {
		return nil, fmt.Errorf("failed to extend stream: %w", err)
	}

	id := length / blockSize
	blk := &Block{
		id:      id,
		storage: s,
		sector:  s.sectors.Get(),
	}
	s.blocks[id] = blk

	return blk, nil
}

// Find returns the block with the given id.
//
// If the block is already open, the same live instance is returned with no
// stream access. Otherwise the block's leading sector is read from the stream
// and a new instance is constructed and registered. Find reports
// errs.ErrBlockNotFound when the block's byte range lies beyond the current
// stream length. The caller is responsible for releasing the returned block.
func (s *Storage) Find(id int64) (*Block, error) {
	if id < 0 {
		return nil, fmt.Errorf("block id %d: %w", id, errs.ErrInvalidBlockID)
	}

	if blk, ok := s.blocks[id]; ok {
		return blk, nil
	}

	length, err := s.stream.Size()
	if err != nil {
		return nil, fmt.Errorf("failed to query stream length: %w", err)
	}

	offset := id * int64(s.geo.blockSize)
	if offset+int64(s.geo.blockSize) > length {
		return nil, fmt.Errorf("block %d: %w", id, errs.ErrBlockNotFound)
	}

	sector := s.sectors.Get()
	if err := s.readFull(offset, sector); err != nil {
		s.sectors.Put(sector)
		return nil, err
	}

	blk := &Block{
		id:      id,
		storage: s,
		sector:  sector,
	}
	s.blocks[id] = blk

	return blk, nil
}

// Close releases every open block, flushing pending sector data, and closes
// the stream if it supports closing.
//
// Blocks released through Close behave exactly as if the caller had released
// them; the first flush failure aborts the close and leaves the remaining
// blocks open.
func (s *Storage) Close() error {
	for len(s.blocks) > 0 {
		var blk *Block
		for _, b := range s.blocks {
			blk = b
			break
		}
		if err := blk.Release(); err != nil {
			return err
		}
	}

	if closer, ok := s.stream.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("failed to close stream: %w", err)
		}
	}

	return nil
}

// forget drops a released block from the registry. It is the only path by
// which the registry shrinks and is invoked exactly once per block, from
// Block.Release.
func (s *Storage) forget(id int64) {
	delete(s.blocks, id)
}

// readFull reads exactly len(buf) bytes from the stream starting at offset.
//
// Short reads are retried until the buffer is full. A zero-byte read before
// completion means the stream ended while more data was expected and fails
// with errs.ErrTruncatedStream.
func (s *Storage) readFull(offset int64, buf []byte) error {
	if _, err := s.stream.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to offset %d: %w", offset, err)
	}

	total := 0
	for total < len(buf) {
		n, err := s.stream.Read(buf[total:])
		total += n

		if n == 0 {
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("stream read at offset %d failed: %w", offset, err)
			}

			return fmt.Errorf("expected %d bytes at offset %d, got %d: %w",
				len(buf), offset, total, errs.ErrTruncatedStream)
		}

		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("stream read at offset %d failed: %w", offset, err)
		}
	}

	return nil
}

// writeAt writes all of p to the stream starting at offset.
func (s *Storage) writeAt(offset int64, p []byte) error {
	if _, err := s.stream.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to offset %d: %w", offset, err)
	}

	n, err := s.stream.Write(p)
	if err != nil {
		return fmt.Errorf("stream write at offset %d failed: %w", offset, err)
	}
	if n != len(p) {
		return fmt.Errorf("wrote incomplete data at offset %d: %d of %d bytes", offset, n, len(p))
	}

	return nil
}
