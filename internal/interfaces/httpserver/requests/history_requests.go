package requests

import (
	domain "github.com/vidcrunch/vidcrunch/internal/domain/history"
	"github.com/vidcrunch/vidcrunch/internal/utils/coerce"
)

// CreateHistoryRequest represents a new compression record. Numeric fields
// are declared as any because browser clients send them as either numbers or
// strings; the explicit coercion in ToParams resolves both.
type CreateHistoryRequest struct {
	Filename       string  `json:"filename"`
	OriginalSize   any     `json:"original_size"`
	CompressedSize any     `json:"compressed_size"`
	CloudinaryURL  string  `json:"cloudinary_url"`
	Resolution     string  `json:"resolution"`
	Quality        any     `json:"quality"`
	PublicID       *string `json:"public_id"`
}

// ToParams converts the request to domain create parameters. Missing or
// malformed sizes resolve to 0, quality to the default; required-field
// validation stays in the domain service.
func (r *CreateHistoryRequest) ToParams() domain.CreateParams {
	return domain.CreateParams{
		Filename:       r.Filename,
		OriginalSize:   coerce.Int64NonNeg(r.OriginalSize),
		CompressedSize: coerce.Int64NonNeg(r.CompressedSize),
		CloudinaryURL:  r.CloudinaryURL,
		Resolution:     r.Resolution,
		Quality:        coerce.IntInRange(r.Quality, 1, 100, domain.DefaultQuality),
		PublicID:       r.PublicID,
	}
}

// SignUploadRequest carries the transformation parameters to sign.
type SignUploadRequest struct {
	Quality    any    `json:"quality"`
	Resolution string `json:"resolution"`
}
