package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"shmboard/config"
	"shmboard/models"
	"shmboard/services"
)

// NetworkView is the part of the network data provider the API reads
type NetworkView interface {
	Snapshot(ctx context.Context) models.NetworkSnapshot
	SpotPrice(ctx context.Context) (models.SpotPrice, string)
	LastFetch() map[string]time.Time
}

type Handler struct {
	Cfg     *config.Config
	Cache   *services.CacheService
	Network NetworkView
	Logger  *zap.Logger

	started time.Time
}

func NewHandler(cfg *config.Config, cache *services.CacheService, network NetworkView, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Cfg:     cfg,
		Cache:   cache,
		Network: network,
		Logger:  logger,
		started: time.Now(),
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// errorStatus maps service errors to HTTP status codes. Anything not
// recognised is treated as an upstream failure.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidPeriod),
		errors.Is(err, services.ErrInvalidAlias),
		errors.Is(err, services.ErrInvalidAvatar),
		errors.Is(err, services.ErrInvalidPublicKey):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrMongoDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func writeError(c echo.Context, err error) error {
	return c.JSON(errorStatus(err), ErrorResponse{Error: err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}
