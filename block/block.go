package block

import (
	"fmt"

	"github.com/arloliu/blockstore/errs"
)

// headerField is one slot of the decoded header field cache. The valid flag
// distinguishes "never decoded" from a cached zero value.
type headerField struct {
	value int64
	valid bool
}

// Block is a handle to one open block of a Storage.
//
// A Block owns an in-memory copy of the block's leading sector (the full
// header plus as many leading data bytes as fit), a fixed-capacity cache of
// decoded header fields, and a dirty flag. Header writes and data writes that
// land inside the cached sector are write-back: they mutate only the sector
// cache and reach the stream when the block is released. Data that falls past
// the cached sector has no in-memory staging and is transferred directly.
//
// A Block moves through exactly two states: open, then released. Release is
// terminal; every other operation on a released block fails with
// errs.ErrBlockReleased.
type Block struct {
	id       int64
	storage  *Storage
	sector   []byte
	fields   [headerFieldCacheSlots]headerField
	dirty    bool
	released bool
}

// ID returns the block's id. The id is immutable and unique within the
// owning storage instance.
func (b *Block) ID() int64 {
	return b.id
}

// Header returns the value of the given header field.
//
// Fields are consecutive 8-byte integers at the start of the block; the
// field index must be in [0, HeaderSize()/8). Fields within the cache
// capacity are decoded once and served from the cache afterwards; fields
// beyond it are decoded from the sector cache on every call.
func (b *Block) Header(field int) (int64, error) {
	if b.released {
		return 0, errs.ErrBlockReleased
	}

	if field < 0 || field >= b.storage.geo.fieldCount() {
		return 0, fmt.Errorf("field %d, header holds %d fields: %w",
			field, b.storage.geo.fieldCount(), errs.ErrFieldOutOfRange)
	}

	if field < headerFieldCacheSlots {
		if !b.fields[field].valid {
			b.fields[field] = headerField{value: b.decodeField(field), valid: true}
		}

		return b.fields[field].value, nil
	}

	return b.decodeField(field), nil
}

// SetHeader sets the value of the given header field.
//
// The new value is encoded into the sector cache and marks the block dirty;
// it reaches the stream when the block is released, not before. Headers are
// read and written far more often than blocks are released, so batching the
// flush avoids redundant stream I/O.
func (b *Block) SetHeader(field int, value int64) error {
	if b.released {
		return errs.ErrBlockReleased
	}

	if field < 0 || field >= b.storage.geo.fieldCount() {
		return fmt.Errorf("field %d, header holds %d fields: %w",
			field, b.storage.geo.fieldCount(), errs.ErrFieldOutOfRange)
	}

	if field < headerFieldCacheSlots {
		b.fields[field] = headerField{value: value, valid: true}
	}

	off := field * headerFieldWidth
	b.storage.engine.PutUint64(b.sector[off:off+headerFieldWidth], uint64(value))
	b.dirty = true

	return nil
}

// Read copies count data bytes starting at data offset srcOff into
// dst[dstOff:].
//
// Offsets address the data region, 0-based, excluding the header. The leading
// portion that falls inside the cached sector is served from memory; the
// remainder is read from the stream, retrying short reads. Either all count
// bytes are transferred or an error is returned; a stream that ends early
// fails with errs.ErrTruncatedStream.
func (b *Block) Read(dst []byte, dstOff, srcOff, count int) error {
	if b.released {
		return errs.ErrBlockReleased
	}

	geo := b.storage.geo
	if count < 0 || srcOff < 0 || srcOff+count > geo.dataSize {
		return fmt.Errorf("read of %d bytes at data offset %d, data size %d: %w",
			count, srcOff, geo.dataSize, errs.ErrOutOfRange)
	}
	if dstOff < 0 || dstOff+count > len(dst) {
		return fmt.Errorf("read of %d bytes at buffer offset %d, buffer size %d: %w",
			count, dstOff, len(dst), errs.ErrOutOfRange)
	}

	// Offset of the requested range within the block.
	rel := geo.headerSize + srcOff

	cached := 0
	if rel < geo.sectorSize {
		cached = min(geo.sectorSize-rel, count)
		copy(dst[dstOff:dstOff+cached], b.sector[rel:rel+cached])
	}

	if cached == count {
		return nil
	}

	offset := b.id*int64(geo.blockSize) + int64(max(geo.sectorSize, rel))

	return b.storage.readFull(offset, dst[dstOff+cached:dstOff+count])
}

// Write copies count bytes from src[srcOff:] into the block's data region at
// data offset dstOff.
//
// The portion that lands inside the cached sector is absorbed into the cache
// and flushed on release. Any remainder past the cached sector is written to
// the stream immediately, in chunks of at most writeChunkSize bytes, each
// chunk forced durable before the next: bytes beyond the sector have no
// in-memory staging, so deferring them would risk silent loss if the block
// is never released.
func (b *Block) Write(src []byte, srcOff, dstOff, count int) error {
	if b.released {
		return errs.ErrBlockReleased
	}

	geo := b.storage.geo
	if count < 0 || dstOff < 0 || dstOff+count > geo.dataSize {
		return fmt.Errorf("write of %d bytes at data offset %d, data size %d: %w",
			count, dstOff, geo.dataSize, errs.ErrOutOfRange)
	}
	if srcOff < 0 || srcOff+count > len(src) {
		return fmt.Errorf("write of %d bytes at buffer offset %d, buffer size %d: %w",
			count, srcOff, len(src), errs.ErrOutOfRange)
	}

	// Offset of the target range within the block.
	rel := geo.headerSize + dstOff

	absorbed := 0
	if rel < geo.sectorSize {
		absorbed = min(count, geo.sectorSize-rel)
		copy(b.sector[rel:rel+absorbed], src[srcOff:srcOff+absorbed])
		if absorbed > 0 {
			b.dirty = true
		}
	}

	if absorbed == count {
		return nil
	}

	offset := b.id*int64(geo.blockSize) + int64(max(geo.sectorSize, rel))
	remaining := src[srcOff+absorbed : srcOff+count]

	for len(remaining) > 0 {
		chunk := min(len(remaining), writeChunkSize)
		if err := b.storage.writeAt(offset, remaining[:chunk]); err != nil {
			return err
		}
		if err := b.storage.stream.Sync(); err != nil {
			return fmt.Errorf("failed to sync stream: %w", err)
		}

		offset += int64(chunk)
		remaining = remaining[chunk:]
	}

	return nil
}

// Release flushes the block's cached sector if it is dirty, forces it
// durable, and retires the block, dropping it from the storage registry.
//
// Release is idempotent: the first call does the flush and the notification,
// later calls are no-ops. If the flush fails, the block stays open and dirty
// so the caller may retry. After a successful release the handle is dead; a
// subsequent Find for the same id constructs a fresh instance from the
// flushed bytes.
func (b *Block) Release() error {
	if b.released {
		return nil
	}

	if b.dirty {
		offset := b.id * int64(b.storage.geo.blockSize)
		if err := b.storage.writeAt(offset, b.sector); err != nil {
			return err
		}
		if err := b.storage.stream.Sync(); err != nil {
			return fmt.Errorf("failed to sync stream: %w", err)
		}
		b.dirty = false
	}

	b.released = true
	b.storage.forget(b.id)
	b.storage.sectors.Put(b.sector)
	b.sector = nil

	return nil
}

// decodeField decodes header field f from the sector cache.
func (b *Block) decodeField(f int) int64 {
	off := f * headerFieldWidth
	return int64(b.storage.engine.Uint64(b.sector[off : off+headerFieldWidth]))
}
