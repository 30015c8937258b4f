package entities

import "time"

// CompressionRecord is one persisted compression per successful upload.
// Rows are immutable after insert; only deletes mutate the table.
type CompressionRecord struct {
	ID             string  `gorm:"type:varchar(40);primaryKey"`
	UserID         string  `gorm:"type:varchar(64);not null;index"`
	Filename       string  `gorm:"type:varchar(255);not null"`
	OriginalSize   int64   `gorm:"not null;default:0"`
	CompressedSize int64   `gorm:"not null;default:0"`
	CloudinaryURL  string  `gorm:"type:varchar(512);not null"`
	Resolution     string  `gorm:"type:varchar(32);not null;default:'original'"`
	Quality        int     `gorm:"not null;default:65"`
	PublicID       *string `gorm:"type:varchar(255)"`
	CreatedAt      time.Time
}

func (CompressionRecord) TableName() string {
	return "compress_history"
}
