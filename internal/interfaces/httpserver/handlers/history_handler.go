package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	domain "github.com/vidcrunch/vidcrunch/internal/domain/history"
	"github.com/vidcrunch/vidcrunch/internal/infrastructure/auth"
	"github.com/vidcrunch/vidcrunch/internal/infrastructure/metrics"
	"github.com/vidcrunch/vidcrunch/internal/interfaces/httpserver/requests"
	"github.com/vidcrunch/vidcrunch/internal/interfaces/httpserver/responses"
	"github.com/vidcrunch/vidcrunch/internal/utils/coerce"
)

// HistoryService is the domain surface consumed by the handler.
type HistoryService interface {
	List(ctx context.Context, ownerID string, params domain.ListParams) ([]domain.CompressionRecord, int64, error)
	Create(ctx context.Context, ownerID string, params domain.CreateParams) (*domain.CompressionRecord, error)
	Delete(ctx context.Context, ownerID, id string) (string, error)
}

// HistoryHandler exposes the owner-scoped history endpoints.
type HistoryHandler struct {
	service HistoryService
	log     zerolog.Logger
}

func NewHistoryHandler(service HistoryService, log zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{
		service: service,
		log:     log.With().Str("component", "history-handler").Logger(),
	}
}

// List godoc
// @Summary      List compression history
// @Description  Returns the authenticated user's records with search, sort and pagination.
// @Tags         history
// @Produce      json
// @Param        limit   query  int     false  "Page size, clamped to [1,100]"  default(12)
// @Param        offset  query  int     false  "Page offset"                    default(0)
// @Param        search  query  string  false  "Case-insensitive filename filter"
// @Param        sort    query  string  false  "newest | oldest | biggest-file | biggest-saving"
// @Success      200  {object}  responses.ListHistoryResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Security     BearerAuth
// @Router       /history [get]
func (h *HistoryHandler) List(c *gin.Context) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	params := domain.ListParams{
		Limit:  coerce.QueryInt(c.Query("limit"), domain.DefaultPageSize),
		Offset: coerce.QueryInt(c.Query("offset"), 0),
		Search: c.Query("search"),
		Sort:   domain.ParseSortKey(c.Query("sort")),
	}

	records, total, err := h.service.List(c.Request.Context(), principal, params)
	if err != nil {
		metrics.RecordHistoryOperation("list", "error")
		responses.HandleError(c, h.log, err, "failed to list history")
		return
	}

	if records == nil {
		// data must serialize as an array even when the page is empty.
		records = []domain.CompressionRecord{}
	}

	metrics.RecordHistoryOperation("list", "success")
	c.JSON(http.StatusOK, responses.ListHistoryResponse{Data: records, Total: total})
}

// Create godoc
// @Summary      Persist a compression record
// @Description  Stores the result of a completed direct upload. Owner and creation time are stamped server-side.
// @Tags         history
// @Accept       json
// @Produce      json
// @Param        request  body      requests.CreateHistoryRequest  true  "Record to persist"
// @Success      201  {object}  responses.CreateHistoryResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Security     BearerAuth
// @Router       /history [post]
func (h *HistoryHandler) Create(c *gin.Context) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req requests.CreateHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, err := h.service.Create(c.Request.Context(), principal, req.ToParams())
	if err != nil {
		metrics.RecordHistoryOperation("create", "error")
		responses.HandleError(c, h.log, err, "failed to save record")
		return
	}

	metrics.RecordHistoryOperation("create", "success")
	metrics.CompressedBytesTotal.Add(float64(record.CompressedSize))
	c.JSON(http.StatusCreated, responses.CreateHistoryResponse{Data: record})
}

// Delete godoc
// @Summary      Delete a compression record
// @Description  Deletes one record after verifying the authenticated user owns it.
// @Tags         history
// @Produce      json
// @Param        id  query  string  true  "Record id"
// @Success      200  {object}  responses.DeleteHistoryResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Security     BearerAuth
// @Router       /history [delete]
func (h *HistoryHandler) Delete(c *gin.Context) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	deletedID, err := h.service.Delete(c.Request.Context(), principal, c.Query("id"))
	if err != nil {
		metrics.RecordHistoryOperation("delete", "error")
		responses.HandleError(c, h.log, err, "failed to delete record")
		return
	}

	metrics.RecordHistoryOperation("delete", "success")
	c.JSON(http.StatusOK, responses.DeleteHistoryResponse{Success: true, DeletedID: deletedID})
}
