package block

import (
	"fmt"

	"github.com/arloliu/blockstore/errs"
)

// Geometry describes the fixed framing of a storage instance: how large each
// block is, how the block splits into header and data regions, and how much
// of each block's leading bytes are cached in memory.
//
// Geometry is immutable after construction. The three framings are
// independent: the sector size need not equal the header size or the block
// size, and the read/write paths reconcile them at every boundary.
type Geometry struct {
	blockSize  int
	headerSize int
	dataSize   int
	sectorSize int
}

// newGeometry validates the configured block and header sizes and derives the
// data region and sector sizes.
func newGeometry(blockSize, headerSize int) (Geometry, error) {
	if blockSize < MinBlockSize {
		return Geometry{}, fmt.Errorf("block size %d below minimum %d: %w",
			blockSize, MinBlockSize, errs.ErrInvalidBlockSize)
	}

	if headerSize < 0 || headerSize >= blockSize {
		return Geometry{}, fmt.Errorf("header size %d must be in [0, %d): %w",
			headerSize, blockSize, errs.ErrInvalidHeaderSize)
	}

	sectorSize := smallSectorSize
	if blockSize >= largeSectorSize {
		sectorSize = largeSectorSize
	}

	// The sector cache must cover the whole header: header fields are
	// decoded from it without touching the stream.
	if headerSize > sectorSize {
		return Geometry{}, fmt.Errorf("header size %d exceeds sector size %d: %w",
			headerSize, sectorSize, errs.ErrInvalidHeaderSize)
	}

	return Geometry{
		blockSize:  blockSize,
		headerSize: headerSize,
		dataSize:   blockSize - headerSize,
		sectorSize: sectorSize,
	}, nil
}

// BlockSize returns the total size of one block in bytes.
func (g Geometry) BlockSize() int { return g.blockSize }

// HeaderSize returns the number of bytes reserved for header fields at the
// start of each block.
func (g Geometry) HeaderSize() int { return g.headerSize }

// DataSize returns the number of data bytes per block.
func (g Geometry) DataSize() int { return g.dataSize }

// SectorSize returns the size of the leading sector cached in memory for each
// open block.
func (g Geometry) SectorSize() int { return g.sectorSize }

// fieldCount returns the number of addressable header fields.
func (g Geometry) fieldCount() int { return g.headerSize / headerFieldWidth }
