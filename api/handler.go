package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nsewatch/logger"
	"nsewatch/models"
)

// SnapshotService is the core surface the HTTP layer depends on.
type SnapshotService interface {
	Today() string
	SnapshotForDate(ctx context.Context, date string) (models.Snapshot, error)
	Details(ctx context.Context, symbol string) (map[string]any, error)
	History(ctx context.Context, symbol, period string) ([]models.HistoryPoint, error)
}

// Handler exposes the snapshot service over HTTP.
type Handler struct {
	svc SnapshotService
	log *logger.Log
}

func NewHandler(svc SnapshotService, log *logger.Log) *Handler {
	return &Handler{svc: svc, log: log}
}

type stocksParams struct {
	Date string `form:"date"`
}

// GetStocks serves the ranked snapshot for one date, defaulting to
// today.
func (h *Handler) GetStocks(c *gin.Context) {
	var params stocksParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date := params.Date
	if date == "" {
		date = h.svc.Today()
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}

	snap, err := h.svc.SnapshotForDate(c.Request.Context(), date)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrSourceNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "CSV file missing"})
		case isFetchFailure(err):
			// A failed batch download degrades to "no data" for the
			// browser; the distinct error stays available on the
			// service for callers that prefer a 5xx.
			h.log.WithComponent("api").WithError(err).Error("snapshot build failed")
			c.JSON(http.StatusOK, gin.H{"data": models.Snapshot{}, "message": "No data found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if len(snap) == 0 {
		c.JSON(http.StatusOK, gin.H{"data": models.Snapshot{}, "message": "No data found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": snap})
}

func isFetchFailure(err error) bool {
	var fetchErr *models.FetchError
	return errors.As(err, &fetchErr)
}

// GetStockDetails serves the provider's raw info object for one symbol.
func (h *Handler) GetStockDetails(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Symbol required"})
		return
	}

	info, err := h.svc.Details(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

// GetStockHistory serves daily closes for one symbol over a period.
func (h *Handler) GetStockHistory(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Symbol required"})
		return
	}
	period := c.Query("period")

	points, err := h.svc.History(c.Request.Context(), symbol, period)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, points)
}

// SetupRoutes builds the gin engine with all endpoints registered.
func SetupRoutes(svc SnapshotService, log *logger.Log) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	h := NewHandler(svc, log)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/api/stocks", h.GetStocks)
	r.GET("/api/stock_details", h.GetStockDetails)
	r.GET("/api/stock_history", h.GetStockHistory)

	return r
}
