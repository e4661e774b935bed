package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"shmboard/models"
)

const maxHistoryHours = 24 * 90

type HistoryReader interface {
	History(ctx context.Context, since time.Time) ([]models.NetworkSnapshot, error)
	DailyAverages(ctx context.Context, days int) ([]models.DailyNetworkAverage, error)
}

// HistoryHandlers manages historical data endpoints
type HistoryHandlers struct {
	historyService HistoryReader
}

func NewHistoryHandlers(historyService HistoryReader) *HistoryHandlers {
	return &HistoryHandlers{
		historyService: historyService,
	}
}

// GetNetworkHistory godoc
// @Summary Network snapshots over time
// @Tags history
// @Produce json
// @Param hours query int false "Window in hours (default: 24)"
// @Param granularity query string false "raw (default) or daily"
// @Router /api/history/network [get]
func (hh *HistoryHandlers) GetNetworkHistory(c echo.Context) error {
	hoursStr := c.QueryParam("hours")
	hours := 24 // Default 24 hours

	if hoursStr != "" {
		if h, err := strconv.Atoi(hoursStr); err == nil && h > 0 {
			hours = h
		}
	}
	if hours > maxHistoryHours {
		hours = maxHistoryHours
	}

	ctx := c.Request().Context()

	switch c.QueryParam("granularity") {
	case "", "raw":
		snapshots, err := hh.historyService.History(ctx, time.Now().Add(-time.Duration(hours)*time.Hour))
		if err != nil {
			return writeError(c, err)
		}
		if snapshots == nil {
			snapshots = []models.NetworkSnapshot{}
		}
		return c.JSON(http.StatusOK, snapshots)
	case "daily":
		days := (hours + 23) / 24
		averages, err := hh.historyService.DailyAverages(ctx, days)
		if err != nil {
			return writeError(c, err)
		}
		if averages == nil {
			averages = []models.DailyNetworkAverage{}
		}
		return c.JSON(http.StatusOK, averages)
	default:
		return badRequest(c, "granularity must be raw or daily")
	}
}
