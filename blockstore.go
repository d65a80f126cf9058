// Package blockstore provides a fixed-size block storage layer over a
// seekable byte stream.
//
// It turns a flat byte range into an addressable array of equal-size blocks,
// each split into a header region of 8-byte integer fields and an opaque data
// region. Higher-level structures (free lists, B-trees, record stores)
// allocate, read, and write blocks through this layer instead of raw byte
// offsets. The layer does not provide transactions, checksums, encryption, or
// concurrent access safety; those belong to the layers above it.
//
// # Basic Usage
//
// Opening a file-backed store:
//
//	import "github.com/arloliu/blockstore"
//
//	st, err := blockstore.Open("data.blocks",
//	    blockstore.WithBlockSize(8192),
//	    blockstore.WithHeaderSize(48),
//	)
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	blk, err := st.CreateNew()
//	if err != nil {
//	    return err
//	}
//	blk.SetHeader(0, 42)
//	blk.Write([]byte("payload"), 0, 0, 7)
//	blk.Release()
//
// Reading it back, in the same or a later process:
//
//	blk, err := st.Find(0)
//	next, _ := blk.Header(0)
//	buf := make([]byte, 7)
//	blk.Read(buf, 0, 0, 7)
//	blk.Release()
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the block and
// stream packages, simplifying the most common use cases. For custom stream
// implementations or fine-grained control, use those packages directly.
package blockstore

import (
	"github.com/arloliu/blockstore/block"
	"github.com/arloliu/blockstore/stream"
)

// StorageOption configures a Storage during construction.
type StorageOption = block.StorageOption

// WithBlockSize sets the total size of each block in bytes.
func WithBlockSize(size int) StorageOption {
	return block.WithBlockSize(size)
}

// WithHeaderSize sets the header region size of each block in bytes.
func WithHeaderSize(size int) StorageOption {
	return block.WithHeaderSize(size)
}

// Open creates a block storage backed by the file at path, creating the file
// if it does not exist. Closing the storage closes the file.
func Open(path string, opts ...StorageOption) (*block.Storage, error) {
	fs, err := stream.OpenFile(path)
	if err != nil {
		return nil, err
	}

	st, err := block.NewStorage(fs, opts...)
	if err != nil {
		fs.Close()
		return nil, err
	}

	return st, nil
}

// NewMemory creates a block storage backed by an in-memory stream. It is
// useful for tests and for ephemeral block-structured data.
func NewMemory(opts ...StorageOption) (*block.Storage, error) {
	return block.NewStorage(stream.NewMemoryStream(), opts...)
}
