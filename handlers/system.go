package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// GetHealth returns OK
func (h *Handler) GetHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// GetStatus returns backend status
func (h *Handler) GetStatus(c echo.Context) error {
	status := map[string]interface{}{
		"status":     "running",
		"uptime":     time.Since(h.started).Round(time.Second).String(),
		"cache_mode": string(h.Cache.GetCacheMode()),
		"last_fetch": h.Network.LastFetch(),
		"rpc_url":    h.Cfg.Shardeum.RPCURL,
		"timestamp":  time.Now(),
	}
	return c.JSON(http.StatusOK, status)
}
