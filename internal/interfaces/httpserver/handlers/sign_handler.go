package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vidcrunch/vidcrunch/internal/domain/signer"
	"github.com/vidcrunch/vidcrunch/internal/infrastructure/metrics"
	"github.com/vidcrunch/vidcrunch/internal/interfaces/httpserver/requests"
	"github.com/vidcrunch/vidcrunch/internal/utils/coerce"
)

// SignService produces signed upload authorizations.
type SignService interface {
	SignUpload(quality int, resolution string) signer.SignedUpload
}

// SignHandler exposes the upload-signature endpoint.
type SignHandler struct {
	service SignService
	log     zerolog.Logger
}

func NewSignHandler(service SignService, log zerolog.Logger) *SignHandler {
	return &SignHandler{
		service: service,
		log:     log.With().Str("component", "sign-handler").Logger(),
	}
}

// SignUpload godoc
// @Summary      Authorize a direct upload
// @Description  Signs the eager transformation and timestamp so the client can upload straight to Cloudinary.
// @Tags         sign
// @Accept       json
// @Produce      json
// @Param        request  body      requests.SignUploadRequest  false  "Desired quality and resolution"
// @Success      200  {object}  signer.SignedUpload
// @Failure      401  {object}  map[string]string
// @Security     BearerAuth
// @Router       /sign-upload [post]
func (h *SignHandler) SignUpload(c *gin.Context) {
	var req requests.SignUploadRequest
	// A missing or undecodable body means default quality at the original
	// resolution; the coerce layer already absorbs per-field junk, so a
	// junk body gets the same treatment.
	if err := c.ShouldBindJSON(&req); err != nil {
		req = requests.SignUploadRequest{}
	}

	quality := coerce.IntInRange(req.Quality, 1, 100, signer.DefaultQuality)
	signed := h.service.SignUpload(quality, req.Resolution)

	metrics.RecordSign("success")
	c.JSON(http.StatusOK, signed)
}
