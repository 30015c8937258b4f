package history

import (
	"strings"
	"time"
)

const (
	// DefaultPageSize is the list page size when the caller supplies none.
	DefaultPageSize = 12
	// MaxPageSize bounds a single list call.
	MaxPageSize = 100
	// MaxFilenameLen bounds stored display names.
	MaxFilenameLen = 255
	// MaxResolutionLen bounds stored resolution labels.
	MaxResolutionLen = 32
	// DefaultQuality is applied when the caller supplies no usable quality.
	DefaultQuality = 65
	// ResolutionOriginal is the sentinel for "no resize applied".
	ResolutionOriginal = "original"
)

// CompressionRecord represents one completed compression owned by a user.
type CompressionRecord struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Filename       string    `json:"filename"`
	OriginalSize   int64     `json:"original_size"`
	CompressedSize int64     `json:"compressed_size"`
	CloudinaryURL  string    `json:"cloudinary_url"`
	Resolution     string    `json:"resolution"`
	Quality        int       `json:"quality"`
	PublicID       *string   `json:"public_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// SortKey selects the list ordering.
type SortKey string

const (
	SortNewest        SortKey = "newest"
	SortOldest        SortKey = "oldest"
	SortBiggestFile   SortKey = "biggest-file"
	SortBiggestSaving SortKey = "biggest-saving"
)

// ParseSortKey maps a raw sort parameter onto a SortKey, defaulting to
// newest for unknown values.
func ParseSortKey(raw string) SortKey {
	switch SortKey(strings.TrimSpace(raw)) {
	case SortOldest:
		return SortOldest
	case SortBiggestFile:
		return SortBiggestFile
	case SortBiggestSaving:
		return SortBiggestSaving
	default:
		return SortNewest
	}
}

// ListParams narrows a list call.
type ListParams struct {
	Limit  int
	Offset int
	Search string
	Sort   SortKey
}

// CreateParams carries the caller-supplied fields of a new record. Owner and
// creation time are always stamped server-side.
type CreateParams struct {
	Filename       string
	OriginalSize   int64
	CompressedSize int64
	CloudinaryURL  string
	Resolution     string
	Quality        int
	PublicID       *string
}

// SavingsRatio returns 1 - compressed/original. The ratio is negative when
// compression grew the file; records with an unknown original size count as
// no saving.
func SavingsRatio(original, compressed int64) float64 {
	if original <= 0 {
		return 0
	}
	return 1 - float64(compressed)/float64(original)
}
