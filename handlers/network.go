package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"shmboard/models"
	"shmboard/utils"
)

type PriceResponse struct {
	SpotPrice models.SpotPrice `json:"spot_price"`
	Formatted string           `json:"formatted"`
	Source    string           `json:"source"`
}

// GetPrice returns the SHM spot price. 502 when neither the price API nor the cache has one.
func (h *Handler) GetPrice(c echo.Context) error {
	price, source := h.Network.SpotPrice(c.Request().Context())
	if source == models.SourceFallback {
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "SHM price temporarily unavailable"})
	}
	return c.JSON(http.StatusOK, PriceResponse{
		SpotPrice: price,
		Formatted: utils.FormatSpotPrices(price),
		Source:    source,
	})
}

// GetNetwork returns node counts, reward and activation probability
func (h *Handler) GetNetwork(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Network.Snapshot(c.Request().Context()))
}
