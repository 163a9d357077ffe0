package domain

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// StaleAfter is the age after which a price is flagged as outdated.
const StaleAfter = 7 * 24 * time.Hour

var displayPrinter = message.NewPrinter(language.MustParse("es-AR"))

// PriceDisplay is a price prepared for rendering.
type PriceDisplay struct {
	StoreID        string
	PriceInCents   int64
	Timestamp      int64
	FormattedPrice string
	UpdatedLabel   string
	Stale          bool
}

// NewPriceDisplay formats cents recorded at timestamp, relative to now.
func NewPriceDisplay(storeID string, cents, timestamp int64, now time.Time) PriceDisplay {
	if cents < 0 {
		cents = 0
	}
	return PriceDisplay{
		StoreID:        storeID,
		PriceInCents:   cents,
		Timestamp:      timestamp,
		FormattedPrice: FormatPrice(cents),
		UpdatedLabel:   RelativeLabel(now, timestamp),
		Stale:          IsStale(now, timestamp),
	}
}

// FormatPrice renders cents as whole pesos with es-AR grouping, e.g. "$15.000".
func FormatPrice(cents int64) string {
	if cents < 0 {
		cents = 0
	}
	return "$" + displayPrinter.Sprintf("%d", (cents+50)/100)
}

// RelativeLabel describes how long ago timestamp was, in Spanish.
func RelativeLabel(now time.Time, timestamp int64) string {
	elapsed := now.Sub(time.Unix(timestamp, 0))
	if elapsed < 0 {
		elapsed = 0
	}

	minutes := int64(elapsed / time.Minute)
	hours := int64(elapsed / time.Hour)
	days := hours / 24
	weeks := days / 7

	switch {
	case minutes < 60:
		return fmt.Sprintf("Hace %d %s", minutes, plural(minutes, "min", "mins"))
	case hours < 24:
		return fmt.Sprintf("Hace %d %s", hours, plural(hours, "hora", "horas"))
	case days < 7:
		return fmt.Sprintf("Hace %d %s", days, plural(days, "día", "días"))
	default:
		return fmt.Sprintf("Hace %d %s", weeks, plural(weeks, "semana", "semanas"))
	}
}

// IsStale reports whether timestamp is older than StaleAfter.
func IsStale(now time.Time, timestamp int64) bool {
	return time.Unix(timestamp, 0).Before(now.Add(-StaleAfter))
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
