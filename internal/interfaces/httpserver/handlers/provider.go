package handlers

import (
	"github.com/rs/zerolog"
)

// Provider wires HTTP handlers.
type Provider struct {
	History *HistoryHandler
	Sign    *SignHandler
}

func NewProvider(historyService HistoryService, signService SignService, log zerolog.Logger) *Provider {
	return &Provider{
		History: NewHistoryHandler(historyService, log),
		Sign:    NewSignHandler(signService, log),
	}
}
