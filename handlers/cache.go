package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"shmboard/services"
)

type CacheHandlers struct {
	cache   *services.CacheService
	network interface{ Invalidate() }
}

func NewCacheHandlers(cache *services.CacheService, network interface{ Invalidate() }) *CacheHandlers {
	return &CacheHandlers{
		cache:   cache,
		network: network,
	}
}

// GetCacheStatus returns cache health and statistics
func (h *CacheHandlers) GetCacheStatus(c echo.Context) error {
	stats := h.cache.GetCacheStats()
	mode := h.cache.GetCacheMode()

	response := map[string]interface{}{
		"mode":    string(mode),
		"healthy": mode == services.CacheModeRedis,
		"stats":   stats,
	}

	return c.JSON(http.StatusOK, response)
}

// ClearCache clears all cached data (admin endpoint)
func (h *CacheHandlers) ClearCache(c echo.Context) error {
	if h.network != nil {
		h.network.Invalidate()
	}
	if err := h.cache.ClearCache(); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Cache cleared successfully",
	})
}
