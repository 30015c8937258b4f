package responses

import (
	domain "github.com/vidcrunch/vidcrunch/internal/domain/history"
)

// ListHistoryResponse is one page of records plus the owner's total count.
type ListHistoryResponse struct {
	Data  []domain.CompressionRecord `json:"data"`
	Total int64                      `json:"total"`
}

// CreateHistoryResponse wraps the persisted record.
type CreateHistoryResponse struct {
	Data *domain.CompressionRecord `json:"data"`
}

// DeleteHistoryResponse confirms a delete for idempotent cache removal.
type DeleteHistoryResponse struct {
	Success   bool   `json:"success"`
	DeletedID string `json:"deletedId"`
}
