package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shmboard/models"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$7.20", FormatAmount(models.CurrencyUSD, 7.2))
	assert.Equal(t, "€0.50", FormatAmount(models.CurrencyEUR, 0.5))
	assert.Equal(t, "₹1000.00", FormatAmount(models.CurrencyINR, 1000))
	assert.Equal(t, "12.35 SHM", FormatAmount(models.CurrencySHM, 12.345))
}

func TestFormatWithNative(t *testing.T) {
	assert.Equal(t, "$7.20 (120.00 SHM)", FormatWithNative(models.CurrencyUSD, 7.2, 120))
	assert.Equal(t, "120.00 SHM", FormatWithNative(models.CurrencySHM, 999, 120))
}

func TestFormatPercent(t *testing.T) {
	v := 608.333
	assert.Equal(t, "608.33%", FormatPercent(&v))
	assert.Equal(t, "N/A", FormatPercent(nil))
	assert.Equal(t, "55.0%", FormatProbability(0.55))
}

func TestFormatSpotPrices(t *testing.T) {
	assert.Equal(t, "$0.0612 / €0.0550 / ₹5.1000", FormatSpotPrices(models.SpotPrice{USD: 0.0612, EUR: 0.055, INR: 5.1}))
	assert.Equal(t, "$0.0000 / €0.0000 / ₹0.0000", FormatSpotPrices(models.SpotPrice{}))
}

func TestTruncateAddress(t *testing.T) {
	cases := map[string]string{
		"":                   "N/A",
		"0x1234":             "0x1234",
		"0123456789":         "0123456789",
		"0xabcdef0123456789": "0xabc…56789",
	}
	for in, want := range cases {
		assert.Equal(t, want, TruncateAddress(in), in)
	}
}

func TestDisplayAlias(t *testing.T) {
	assert.Equal(t, "Unknown", DisplayAlias(""))
	assert.Equal(t, "Unknown", DisplayAlias("   "))
	assert.Equal(t, "node-7", DisplayAlias("node-7"))
}

func TestGeoResolverDisabled(t *testing.T) {
	var nilResolver *GeoResolver
	assert.Equal(t, "", nilResolver.Country("1.2.3.4"))

	g := NewGeoResolver("", nil)
	assert.False(t, g.Enabled())
	assert.Equal(t, "", g.Country("1.2.3.4:9001"))
	assert.Equal(t, "", g.Country("not-an-ip"))
	assert.Equal(t, "", g.Country(""))

	g = NewGeoResolver("/nonexistent/GeoLite2-Country.mmdb", nil)
	assert.False(t, g.Enabled())
	g.Close()
}

func TestHostOnly(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"1.2.3.4:9001", "1.2.3.4"},
		{"1.2.3.4", "1.2.3.4"},
		{" 1.2.3.4 ", "1.2.3.4"},
		{"[::1]:80", "::1"},
		{"::1", "::1"},
		{"node.example.com:443", "node.example.com"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, hostOnly(tc.in), tc.in)
	}
}

func TestNewLogger(t *testing.T) {
	for _, enc := range []string{"console", "json", ""} {
		logger, err := NewLogger("debug", enc)
		assert.NoError(t, err)
		assert.NotNil(t, logger)
	}
}
