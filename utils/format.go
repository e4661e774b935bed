package utils

import (
	"fmt"
	"strings"

	"shmboard/models"
)

const NotAvailable = "N/A"

// FormatAmount renders v with two decimals. SHM is written as a suffix.
func FormatAmount(c models.Currency, v float64) string {
	if c.IsNative() {
		return fmt.Sprintf("%.2f SHM", v)
	}
	return fmt.Sprintf("%s%.2f", c.Symbol(), v)
}

// FormatWithNative renders a display amount followed by its SHM value, e.g. "$7.20 (120.00 SHM)"
func FormatWithNative(c models.Currency, display, native float64) string {
	if c.IsNative() {
		return FormatAmount(c, native)
	}
	return fmt.Sprintf("%s (%.2f SHM)", FormatAmount(c, display), native)
}

// FormatPercent renders a nullable percentage
func FormatPercent(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f%%", *v)
}

// FormatProbability renders a [0,1] probability as a percentage with one decimal
func FormatProbability(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

// FormatSpotPrices keeps four decimals since one SHM trades at a few cents
func FormatSpotPrices(p models.SpotPrice) string {
	return fmt.Sprintf("$%.4f / €%.4f / ₹%.4f", p.USD, p.EUR, p.INR)
}

// TruncateAddress shortens long addresses to their first and last five characters
func TruncateAddress(address string) string {
	if address == "" {
		return NotAvailable
	}
	r := []rune(address)
	if len(r) <= 10 {
		return address
	}
	return string(r[:5]) + "…" + string(r[len(r)-5:])
}

// DisplayAlias falls back to "Unknown" for unnamed validators
func DisplayAlias(alias string) string {
	if strings.TrimSpace(alias) == "" {
		return "Unknown"
	}
	return alias
}
