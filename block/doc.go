// Package block implements a fixed-size block storage layer over a seekable
// byte stream.
//
// The stream is partitioned into consecutive equal-size blocks starting at
// offset 0. Block id occupies stream bytes [id*BlockSize, (id+1)*BlockSize).
// Within a block, the first HeaderSize bytes hold header fields as
// consecutive 8-byte little-endian integers (field f at byte offset f*8), and
// the remaining bytes hold opaque data addressed 0-based by callers. No magic
// number, version field, or stream-level metadata is written; the layer is
// purely a block addressing and caching scheme.
//
// # Usage
//
//	st, err := block.NewStorage(stream.NewMemoryStream(),
//	    block.WithBlockSize(4096),
//	    block.WithHeaderSize(32),
//	)
//
//	blk, err := st.CreateNew()
//	blk.SetHeader(0, 42)
//	blk.Write(payload, 0, 0, len(payload))
//	blk.Release()
//
//	blk, err = st.Find(0)
//
// # Caching and durability
//
// Each open block keeps its leading sector (header plus leading data bytes)
// in memory. Header writes and data writes inside that sector are write-back:
// they become durable only when the block is released. Data writes past the
// cached sector are written through to the stream immediately and forced
// durable chunk by chunk.
//
// A block that is never released loses every pending sector-cache mutation:
// there is no finalizer or background flush path. Release deterministically,
// or use Storage.Close to release everything that is still open.
//
// # Concurrency
//
// The package is single-threaded by design. The stream cursor is shared
// state across all blocks of one storage instance, and no internal locking
// is performed; callers needing concurrent access must serialize all Storage
// and Block operations under one external lock.
package block
