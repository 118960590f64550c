package api

// API limits and constants.
const (
	// DefaultMaxUploadSize bounds an import upload when config leaves it unset (10 MB).
	DefaultMaxUploadSize = 10 << 20

	// apiPrefix is the mount point of every catalog operation.
	apiPrefix = "/api/v1"
)

// Cache-Control header values.
const (
	CacheNoStore = "no-store"
)
