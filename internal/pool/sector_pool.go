// Package pool provides reusable sector buffers to minimize allocations.
//
// Every open block holds one sector-sized buffer for the lifetime of the
// block. Workloads that open and release many blocks would otherwise allocate
// one buffer per open; the pool recycles released buffers instead.
package pool

import "sync"

// SectorPool is a pool of fixed-size sector buffers.
//
// All buffers handed out by one SectorPool have the same size, matching the
// sector size of the storage instance that owns the pool. Buffers returned by
// Get are always zeroed.
type SectorPool struct {
	pool       sync.Pool
	sectorSize int
}

// NewSectorPool creates a pool of buffers of exactly sectorSize bytes.
func NewSectorPool(sectorSize int) *SectorPool {
	return &SectorPool{
		pool: sync.Pool{
			New: func() any {
				buf := make([]byte, sectorSize)
				return &buf
			},
		},
		sectorSize: sectorSize,
	}
}

// SectorSize returns the size of the buffers managed by the pool.
func (p *SectorPool) SectorSize() int {
	return p.sectorSize
}

// Get retrieves a zeroed sector buffer of exactly SectorSize bytes.
func (p *SectorPool) Get() []byte {
	ptr, _ := p.pool.Get().(*[]byte)
	buf := *ptr

	clear(buf)

	return buf
}

// Put returns a buffer to the pool for reuse.
//
// Buffers of the wrong size are discarded rather than retained, so a caller
// that sliced or regrew the buffer cannot poison the pool.
func (p *SectorPool) Put(buf []byte) {
	if len(buf) != p.sectorSize {
		return
	}

	p.pool.Put(&buf)
}
