package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"shmboard/config"
	"shmboard/models"
)

// PriceClient fetches the SHM spot price from a CoinGecko compatible simple/price endpoint
type PriceClient struct {
	baseURL string
	coinID  string
	client  *jsonClient
}

func NewPriceClient(cfg *config.Config) *PriceClient {
	return &PriceClient{
		baseURL: cfg.Price.URL,
		coinID:  cfg.Price.CoinID,
		client:  newJSONClient(cfg.PriceTimeoutDuration(), 2),
	}
}

// GetSpotPrice returns USD, EUR and INR prices. A currency missing from the
// answer is 0; a missing coin is an error.
func (p *PriceClient) GetSpotPrice(ctx context.Context) (models.SpotPrice, error) {
	q := url.Values{}
	q.Set("ids", p.coinID)
	q.Set("vs_currencies", "usd,eur,inr")

	sep := "?"
	if strings.Contains(p.baseURL, "?") {
		sep = "&"
	}

	var body map[string]models.CoinPrice
	if err := p.client.do(ctx, http.MethodGet, p.baseURL+sep+q.Encode(), nil, nil, &body); err != nil {
		return models.SpotPrice{}, fmt.Errorf("price request: %w", err)
	}

	coin, ok := body[p.coinID]
	if !ok {
		return models.SpotPrice{}, fmt.Errorf("price response has no %q entry", p.coinID)
	}

	return models.SpotPrice{
		USD: valueOrZero(coin.USD),
		EUR: valueOrZero(coin.EUR),
		INR: valueOrZero(coin.INR),
	}, nil
}

func valueOrZero(v *float64) float64 {
	if v == nil || *v < 0 {
		return 0
	}
	return *v
}
