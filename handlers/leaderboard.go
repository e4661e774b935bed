package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"shmboard/models"
)

type Boards interface {
	Leaderboard(ctx context.Context, period string, page, limit int) (*models.LeaderboardPage, error)
	Loserboard(ctx context.Context, period string, page, limit int) (*models.LeaderboardPage, error)
}

type LeaderboardHandlers struct {
	boards Boards
}

func NewLeaderboardHandlers(boards Boards) *LeaderboardHandlers {
	return &LeaderboardHandlers{boards: boards}
}

// GetLeaderboard godoc
// @Summary Validators ranked by activations, most first
// @Tags leaderboard
// @Produce json
// @Param period query string false "daily, weekly, monthly or all (default: weekly)"
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 20, max: 100)"
// @Success 200 {object} models.LeaderboardPage
// @Router /api/leaderboard [get]
func (lh *LeaderboardHandlers) GetLeaderboard(c echo.Context) error {
	return lh.serve(c, lh.boards.Leaderboard)
}

// GetLoserboard is GetLeaderboard with the fewest activations first
func (lh *LeaderboardHandlers) GetLoserboard(c echo.Context) error {
	return lh.serve(c, lh.boards.Loserboard)
}

func (lh *LeaderboardHandlers) serve(c echo.Context, fetch func(context.Context, string, int, int) (*models.LeaderboardPage, error)) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := fetch(c.Request().Context(), c.QueryParam("period"), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
