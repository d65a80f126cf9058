package block

const (
	// MinBlockSize is the smallest supported block size in bytes.
	MinBlockSize = 128

	// DefaultBlockSize is the block size used when no option overrides it.
	DefaultBlockSize = 4096

	// DefaultHeaderSize is the header size used when no option overrides it.
	DefaultHeaderSize = 32

	// largeSectorSize is the cached sector size for blocks of at least
	// largeSectorSize bytes; smaller blocks use smallSectorSize.
	largeSectorSize = 4096
	smallSectorSize = 128

	// headerFieldWidth is the encoded width of one header field.
	headerFieldWidth = 8

	// headerFieldCacheSlots bounds the per-block decoded header field cache.
	// Fields at or beyond this index are decoded from the sector cache on
	// every access.
	headerFieldCacheSlots = 8

	// writeChunkSize bounds the size of direct stream writes past the cached
	// sector. Each chunk is forced durable before the next is issued.
	writeChunkSize = 4096
)
