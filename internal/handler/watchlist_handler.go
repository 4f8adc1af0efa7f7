package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/watchlist-service/internal/model"
	"github.com/yourorg/watchlist-service/internal/service"
	"github.com/yourorg/watchlist-service/internal/storage"
	"github.com/yourorg/watchlist-service/internal/utils"
)

// WatchlistHandler handles watchlist-related HTTP requests
type WatchlistHandler struct {
	watchlistService *service.WatchlistService
	logger           *zap.Logger
}

// NewWatchlistHandler creates a new watchlist handler
func NewWatchlistHandler(watchlistService *service.WatchlistService, logger *zap.Logger) *WatchlistHandler {
	return &WatchlistHandler{
		watchlistService: watchlistService,
		logger:           logger,
	}
}

// RegisterRoutes registers all watchlist routes on the given group
func (h *WatchlistHandler) RegisterRoutes(rg *gin.RouterGroup) {
	watchlists := rg.Group("/watchlists")
	{
		watchlists.POST("", h.Create)
		watchlists.GET("", h.List)
		watchlists.POST("/merge", h.Merge)
		watchlists.GET("/:name", h.Get)
		watchlists.DELETE("/:name", h.Delete)
		watchlists.POST("/:name/archive", h.Archive)
		watchlists.POST("/:name/tickers", h.AddTicker)
		watchlists.PUT("/:name/tickers", h.SetTickers)
		watchlists.DELETE("/:name/tickers/:symbol", h.DeleteTicker)
		watchlists.PUT("/:name/date", h.UpdateDate)
		watchlists.PUT("/:name/version", h.UpdateVersion)
		watchlists.POST("/:name/metadata", h.AddMetadata)
		watchlists.PUT("/:name/metadata/:key", h.UpdateMetadata)
		watchlists.DELETE("/:name/metadata/:key", h.DeleteMetadata)
	}
}

// CreateWatchlistRequest represents data for creating a new watchlist
type CreateWatchlistRequest struct {
	Name      string            `json:"name" binding:"required"`
	Tickers   []string          `json:"tickers" binding:"required,min=1"`
	Version   string            `json:"version"`
	Date      string            `json:"date"`
	Metadata  map[string]string `json:"metadata"`
	Overwrite bool              `json:"overwrite"`
}

// MergeRequest represents data for merging two watchlists
type MergeRequest struct {
	First      string `json:"first" binding:"required"`
	Second     string `json:"second" binding:"required"`
	Name       string `json:"name"`
	Version    string `json:"version"`
	Date       string `json:"date"`
	MetaSource int    `json:"meta_source"`
}

// TickerRequest carries a single ticker symbol
type TickerRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

// TickersRequest carries a full replacement ticker list
type TickersRequest struct {
	Tickers []string `json:"tickers" binding:"required,min=1"`
}

// DateRequest carries a new watchlist date
type DateRequest struct {
	Date string `json:"date" binding:"required"`
}

// VersionRequest carries a new version label; empty means increment
type VersionRequest struct {
	Version string `json:"version"`
}

// MetadataRequest carries a metadata key-value pair
type MetadataRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value"`
}

// MetadataValueRequest carries a metadata value for an existing key
type MetadataValueRequest struct {
	Value string `json:"value"`
}

// Create handles creating a new watchlist
// POST /api/v1/watchlists
func (h *WatchlistHandler) Create(c *gin.Context) {
	var req CreateWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	w, err := h.watchlistService.Create(c.Request.Context(), req.Name, req.Tickers, req.Version, req.Date, req.Metadata, req.Overwrite)
	if err != nil {
		h.respondError(c, err, "Failed to create watchlist")
		return
	}

	utils.SendSuccessResponse(c, http.StatusCreated, watchlistResponse(w))
}

// List handles listing stored watchlists
// GET /api/v1/watchlists
func (h *WatchlistHandler) List(c *gin.Context) {
	params := utils.ParsePaginationParams(c, 50, 200)

	names, err := h.watchlistService.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to list watchlists")
		return
	}

	total := len(names)
	start := (params.Page - 1) * params.Limit
	if start > total {
		start = total
	}
	end := start + params.Limit
	if end > total {
		end = total
	}

	utils.SendPaginatedResponse(c, http.StatusOK, names[start:end], total, params.Page, params.Limit)
}

// Get handles retrieving a single watchlist
// GET /api/v1/watchlists/{name}
func (h *WatchlistHandler) Get(c *gin.Context) {
	w, err := h.watchlistService.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.respondError(c, err, "Failed to get watchlist")
		return
	}

	utils.SendSuccessResponse(c, http.StatusOK, watchlistResponse(w))
}

// Delete handles deleting a watchlist
// DELETE /api/v1/watchlists/{name}
func (h *WatchlistHandler) Delete(c *gin.Context) {
	if err := h.watchlistService.Delete(c.Request.Context(), c.Param("name")); err != nil {
		h.respondError(c, err, "Failed to delete watchlist")
		return
	}

	c.Status(http.StatusNoContent)
}

// Archive handles moving a watchlist to the archive
// POST /api/v1/watchlists/{name}/archive
func (h *WatchlistHandler) Archive(c *gin.Context) {
	if err := h.watchlistService.Archive(c.Request.Context(), c.Param("name")); err != nil {
		h.respondError(c, err, "Failed to archive watchlist")
		return
	}

	c.Status(http.StatusNoContent)
}

// AddTicker handles adding a ticker to a watchlist
// POST /api/v1/watchlists/{name}/tickers
func (h *WatchlistHandler) AddTicker(c *gin.Context) {
	var req TickerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	w, err := h.watchlistService.AddTicker(c.Request.Context(), c.Param("name"), req.Symbol)
	if err != nil {
		h.respondError(c, err, "Failed to add ticker")
		return
	}

	utils.SendSuccessResponse(c, http.StatusOK, watchlistResponse(w))
}

// SetTickers handles replacing the whole ticker list of a watchlist
// PUT /api/v1/watchlists/{name}/tickers
func (h *WatchlistHandler) SetTickers(c *gin.Context) {
	var req TickersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	w, err := h.watchlistService.SetTickers(c.Request.Context(), c.Param("name"), req.Tickers)
	if err != nil {
		h.respondError(c, err, "Failed to replace tickers")
		return
	}

	utils.SendSuccessResponse(c, http.StatusOK, watchlistResponse(w))
}

// DeleteTicker handles removing a ticker from a watchlist
// DELETE /api/v1/watchlists/{name}/tickers/{symbol}
func (h *WatchlistHandler) DeleteTicker(c *gin.Context) {
	w, err := h.watchlistService.DeleteTicker(c.Request.Context(), c.Param("name"), c.Param("symbol"))
	if err != nil {
		h.respondError(c, err, "Failed to delete ticker")
		return
	}

	utils.SendSuccessResponse(c, http.StatusOK, watchlistResponse(w))
}

// UpdateDate handles updating the date of a watchlist
// PUT /api/v1/watchlists/{name}/date
func (h *WatchlistHandler) UpdateDate(c *gin.Context) {
	var req DateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	w, err := h.watchlistService.UpdateDate(c.Request.Context(), c.Param("name"), req.Date)
	if err != nil {
		h.respondError(c, err, "Failed to update date")
		return
	}

	utils.SendSuccessResponse(c, http.StatusOK, watchlistResponse(w))
}

// UpdateVersion handles updating the version of a watchlist. An empty
// version in the body increments the current whole-number version.
// PUT /api/v1/watchlists/{name}/version
func (h *WatchlistHandler) UpdateVersion(c *gin.Context) {
	var req VersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	w, err := h.watchlistService.UpdateVersion(c.Request.Context(), c.Param("name"), req.Version)
	if err != nil {
		h.respondError(c, err, "Failed to update version")
		return
	}

	utils.SendSuccessResponse(c, http.StatusOK, watchlistResponse(w))
}

// AddMetadata handles inserting a metadata key
// POST /api/v1/watchlists/{name}/metadata
func (h *WatchlistHandler) AddMetadata(c *gin.Context) {
	var req MetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	w, err := h.watchlistService.AddMetadata(c.Request.Context(), c.Param("name"), req.Key, req.Value)
	if err != nil {
		h.respondError(c, err, "Failed to add metadata")
		return
	}

	utils.SendSuccessResponse(c, http.StatusOK, watchlistResponse(w))
}

// UpdateMetadata handles overwriting an existing metadata key
// PUT /api/v1/watchlists/{name}/metadata/{key}
func (h *WatchlistHandler) UpdateMetadata(c *gin.Context) {
	var req MetadataValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	w, err := h.watchlistService.UpdateMetadata(c.Request.Context(), c.Param("name"), c.Param("key"), req.Value)
	if err != nil {
		h.respondError(c, err, "Failed to update metadata")
		return
	}

	utils.SendSuccessResponse(c, http.StatusOK, watchlistResponse(w))
}

// DeleteMetadata handles removing a metadata key
// DELETE /api/v1/watchlists/{name}/metadata/{key}
func (h *WatchlistHandler) DeleteMetadata(c *gin.Context) {
	w, err := h.watchlistService.DeleteMetadata(c.Request.Context(), c.Param("name"), c.Param("key"))
	if err != nil {
		h.respondError(c, err, "Failed to delete metadata")
		return
	}

	utils.SendSuccessResponse(c, http.StatusOK, watchlistResponse(w))
}

// Merge handles merging two watchlists into a new one
// POST /api/v1/watchlists/merge
func (h *WatchlistHandler) Merge(c *gin.Context) {
	var req MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	w, err := h.watchlistService.Merge(c.Request.Context(), req.First, req.Second, model.MergeOptions{
		Name:       req.Name,
		Version:    req.Version,
		Date:       req.Date,
		MetaSource: model.MetaSource(req.MetaSource),
	})
	if err != nil {
		h.respondError(c, err, "Failed to merge watchlists")
		return
	}

	utils.SendSuccessResponse(c, http.StatusCreated, watchlistResponse(w))
}

// watchlistResponse builds the response body for a watchlist: its record
// plus the filename identifying it.
func watchlistResponse(w *model.Watchlist) gin.H {
	return gin.H{
		"filename": w.Filename(),
		"record":   w.Record(),
	}
}

// respondError maps domain errors to HTTP status codes. Unrecognized
// errors are treated as internal and logged.
func (h *WatchlistHandler) respondError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, storage.ErrWatchlistNotFound),
		errors.Is(err, model.ErrTickerNotFound),
		errors.Is(err, model.ErrMetaKeyNotFound):
		utils.SendErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrWatchlistExists),
		errors.Is(err, model.ErrDuplicateMetaKey):
		utils.SendErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrInvalidDateFormat),
		errors.Is(err, model.ErrFutureDate),
		errors.Is(err, model.ErrInvalidMergeOption),
		errors.Is(err, model.ErrValidation):
		utils.SendErrorResponse(c, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(logMsg, zap.Error(err))
		utils.SendErrorResponse(c, http.StatusInternalServerError, logMsg)
	}
}
