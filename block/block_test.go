package block

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/blockstore/errs"
	"github.com/arloliu/blockstore/stream"
)

func newTestStorage(t *testing.T, blockSize, headerSize int) (*Storage, *stream.MemoryStream) {
	t.Helper()

	ms := stream.NewMemoryStream()
	st, err := NewStorage(ms, WithBlockSize(blockSize), WithHeaderSize(headerSize))
	require.NoError(t, err)

	return st, ms
}

func pattern(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i%251 + 1)
	}

	return buf
}

func TestBlock_HeaderRoundTrip(t *testing.T) {
	// 80-byte header holds 10 fields; fields 8 and 9 lie beyond the decoded
	// field cache and are decoded from the sector cache on every access.
	st, _ := newTestStorage(t, 4096, 80)

	blk, err := st.CreateNew()
	require.NoError(t, err)

	values := map[int]int64{
		0: 42,
		1: -1,
		7: 1 << 60,
		8: -987654321,
		9: 5,
	}

	for field, v := range values {
		require.NoError(t, blk.SetHeader(field, v))
	}
	for field, v := range values {
		got, err := blk.Header(field)
		require.NoError(t, err)
		require.Equalf(t, v, got, "field %d before release", field)
	}

	require.NoError(t, blk.Release())

	found, err := st.Find(blk.ID())
	require.NoError(t, err)
	for field, v := range values {
		got, err := found.Header(field)
		require.NoError(t, err)
		require.Equalf(t, v, got, "field %d after release and re-find", field)
	}
}

func TestBlock_Header_OutOfRange(t *testing.T) {
	st, _ := newTestStorage(t, 128, 16)

	blk, err := st.CreateNew()
	require.NoError(t, err)

	// 16-byte header holds exactly 2 fields.
	_, err = blk.Header(2)
	require.ErrorIs(t, err, errs.ErrFieldOutOfRange)

	_, err = blk.Header(-1)
	require.ErrorIs(t, err, errs.ErrFieldOutOfRange)

	require.ErrorIs(t, blk.SetHeader(2, 1), errs.ErrFieldOutOfRange)
	require.ErrorIs(t, blk.SetHeader(-1, 1), errs.ErrFieldOutOfRange)
}

func TestBlock_ReadWrite_WithinSector(t *testing.T) {
	st, _ := newTestStorage(t, 4096, 32)

	blk, err := st.CreateNew()
	require.NoError(t, err)

	src := pattern(100)
	require.NoError(t, blk.Write(src, 0, 10, 100))

	dst := make([]byte, 100)
	require.NoError(t, blk.Read(dst, 0, 10, 100))
	require.Equal(t, src, dst)
}

func TestBlock_ReadWrite_StraddlingSector(t *testing.T) {
	// 8192-byte blocks cache a 4096-byte sector; with a 48-byte header, data
	// offset 4000 sits at block offset 4048, so a 100-byte range crosses the
	// sector boundary: 48 bytes cached, 52 bytes direct.
	st, ms := newTestStorage(t, 8192, 48)

	blk, err := st.CreateNew()
	require.NoError(t, err)

	src := pattern(100)
	require.NoError(t, blk.Write(src, 0, 4000, 100))

	t.Run("reads back before release", func(t *testing.T) {
		dst := make([]byte, 100)
		require.NoError(t, blk.Read(dst, 0, 4000, 100))
		require.Equal(t, src, dst)
	})

	t.Run("only the overflow reaches the stream before release", func(t *testing.T) {
		raw := ms.Bytes()
		require.Equal(t, make([]byte, 48), raw[4048:4096])
		require.Equal(t, src[48:], raw[4096:4148])
	})

	t.Run("reads back after release", func(t *testing.T) {
		require.NoError(t, blk.Release())

		raw := ms.Bytes()
		require.Equal(t, src[:48], raw[4048:4096])

		found, err := st.Find(0)
		require.NoError(t, err)

		dst := make([]byte, 100)
		require.NoError(t, found.Read(dst, 0, 4000, 100))
		require.Equal(t, src, dst)
		require.NoError(t, found.Release())
	})
}

func TestBlock_ReadWrite_EntirelyPastSector(t *testing.T) {
	// Data offset 4060 with a 48-byte header starts at block offset 4108,
	// past the 4096-byte cached sector; the whole range goes directly to the
	// stream.
	st, ms := newTestStorage(t, 8192, 48)

	blk, err := st.CreateNew()
	require.NoError(t, err)

	src := pattern(100)
	require.NoError(t, blk.Write(src, 0, 4060, 100))

	raw := ms.Bytes()
	require.Equal(t, src, raw[4108:4208])

	dst := make([]byte, 100)
	require.NoError(t, blk.Read(dst, 0, 4060, 100))
	require.Equal(t, src, dst)

	require.NoError(t, blk.Release())

	found, err := st.Find(0)
	require.NoError(t, err)
	dst = make([]byte, 100)
	require.NoError(t, found.Read(dst, 0, 4060, 100))
	require.Equal(t, src, dst)
}

func TestBlock_Write_ChunkedPastSector(t *testing.T) {
	// Large enough to force multiple write chunks past the cached sector.
	st, _ := newTestStorage(t, 32768, 32)

	blk, err := st.CreateNew()
	require.NoError(t, err)

	src := pattern(20000)
	require.NoError(t, blk.Write(src, 0, 0, 20000))

	dst := make([]byte, 20000)
	require.NoError(t, blk.Read(dst, 0, 0, 20000))
	require.Equal(t, src, dst)

	require.NoError(t, blk.Release())

	found, err := st.Find(0)
	require.NoError(t, err)
	dst = make([]byte, 20000)
	require.NoError(t, found.Read(dst, 0, 0, 20000))
	require.Equal(t, src, dst)
}

func TestBlock_DeferredFlush(t *testing.T) {
	st, ms := newTestStorage(t, 4096, 32)

	blk, err := st.CreateNew()
	require.NoError(t, err)

	require.NoError(t, blk.SetHeader(0, 42))
	require.NoError(t, blk.Write(pattern(64), 0, 0, 64))

	// Header and in-sector data stay in the cache until release.
	raw := ms.Bytes()
	require.Equal(t, make([]byte, 4096), raw)

	require.NoError(t, blk.Release())

	raw = ms.Bytes()
	require.Equal(t, byte(42), raw[0])
	require.Equal(t, pattern(64), raw[32:96])
}

func TestBlock_Release(t *testing.T) {
	st, _ := newTestStorage(t, 128, 16)

	blk, err := st.CreateNew()
	require.NoError(t, err)
	require.NoError(t, blk.SetHeader(0, 9))

	require.NoError(t, blk.Release())
	require.Equal(t, 0, st.OpenBlocks())

	t.Run("idempotent", func(t *testing.T) {
		require.NoError(t, blk.Release())
		require.NoError(t, blk.Release())
	})

	t.Run("all other operations fail", func(t *testing.T) {
		_, err := blk.Header(0)
		require.ErrorIs(t, err, errs.ErrBlockReleased)

		require.ErrorIs(t, blk.SetHeader(0, 1), errs.ErrBlockReleased)

		buf := make([]byte, 4)
		require.ErrorIs(t, blk.Read(buf, 0, 0, 4), errs.ErrBlockReleased)
		require.ErrorIs(t, blk.Write(buf, 0, 0, 4), errs.ErrBlockReleased)
	})

	t.Run("clean block skips the flush", func(t *testing.T) {
		clean, err := st.Find(0)
		require.NoError(t, err)
		require.NoError(t, clean.Release())
	})
}

func TestBlock_ReadWrite_OutOfRange(t *testing.T) {
	st, _ := newTestStorage(t, 128, 16)

	blk, err := st.CreateNew()
	require.NoError(t, err)

	buf := make([]byte, 16)

	// Data region is 112 bytes.
	require.ErrorIs(t, blk.Read(buf, 0, 100, 16), errs.ErrOutOfRange)
	require.ErrorIs(t, blk.Read(buf, 0, -1, 4), errs.ErrOutOfRange)
	require.ErrorIs(t, blk.Read(buf, 0, 0, -1), errs.ErrOutOfRange)
	require.ErrorIs(t, blk.Read(buf, 10, 0, 10), errs.ErrOutOfRange)
	require.ErrorIs(t, blk.Read(buf, -1, 0, 4), errs.ErrOutOfRange)

	require.ErrorIs(t, blk.Write(buf, 0, 100, 16), errs.ErrOutOfRange)
	require.ErrorIs(t, blk.Write(buf, 0, -1, 4), errs.ErrOutOfRange)
	require.ErrorIs(t, blk.Write(buf, 0, 0, -1), errs.ErrOutOfRange)
	require.ErrorIs(t, blk.Write(buf, 10, 0, 10), errs.ErrOutOfRange)
	require.ErrorIs(t, blk.Write(buf, -1, 0, 4), errs.ErrOutOfRange)

	// Zero-length transfers at the data region boundary are valid.
	require.NoError(t, blk.Read(buf, 0, 112, 0))
	require.NoError(t, blk.Write(buf, 0, 112, 0))
}

func TestBlock_Read_TruncatedStream(t *testing.T) {
	st, ms := newTestStorage(t, 8192, 48)

	blk, err := st.CreateNew()
	require.NoError(t, err)

	// Shrink the stream behind the storage's back: reads past the cached
	// sector now hit end-of-data.
	require.NoError(t, ms.Truncate(2048))

	dst := make([]byte, 64)
	err = blk.Read(dst, 0, 6000, 64)
	require.ErrorIs(t, err, errs.ErrTruncatedStream)
}

func TestBlock_Scenario_SmallGeometry(t *testing.T) {
	// blockSize=128 and headerSize=16 give a 128-byte sector covering the
	// whole block, so everything is write-back until release.
	st, ms := newTestStorage(t, 128, 16)

	blk, err := st.CreateNew()
	require.NoError(t, err)
	require.Equal(t, int64(0), blk.ID())

	require.NoError(t, blk.SetHeader(0, 42))
	require.NoError(t, blk.Write([]byte{1, 2, 3, 4}, 0, 0, 4))

	// Nothing reaches the stream before release.
	require.Equal(t, make([]byte, 128), ms.Bytes())

	require.NoError(t, blk.Release())

	found, err := st.Find(0)
	require.NoError(t, err)

	v, err := found.Header(0)
	require.NoError(t, err)
	require.Equal(t, int64(42), v)

	buf := make([]byte, 4)
	require.NoError(t, found.Read(buf, 0, 0, 4))
	require.Equal(t, []byte{1, 2, 3, 4}, buf)
}
