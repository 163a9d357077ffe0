package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxFieldBytes is the longest store field accepted by the contract.
const MaxFieldBytes = 31

// MaxPrice is the exclusive upper bound of a price in currency units.
const MaxPrice = 100000

var (
	// ErrInvalidPrice is returned for prices outside (0, MaxPrice).
	ErrInvalidPrice = errors.New("Invalid price")

	// ErrFieldRequired is returned when a mandatory store field is blank.
	ErrFieldRequired = errors.New("field is required")

	// ErrFieldTooLong is returned when a store field does not fit one word.
	ErrFieldTooLong = errors.New("field is too long")
)

// PriceCents is a validated price in minor currency units.
type PriceCents int64

// NewPriceCents converts a price in currency units, e.g. "15500.50", into cents.
func NewPriceCents(raw string) (PriceCents, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	return PriceFromUnits(value)
}

// PriceFromUnits validates a price in currency units and rounds it to cents.
func PriceFromUnits(value float64) (PriceCents, error) {
	if !(value > 0 && value < MaxPrice) {
		return 0, fmt.Errorf("%w: must be between 0 and %d", ErrInvalidPrice, MaxPrice)
	}
	return PriceCents(math.Round(value * 100)), nil
}

func (p PriceCents) Int64() int64 {
	return int64(p)
}

// ShortText is a trimmed string that fits one contract word.
type ShortText string

// NewShortText trims value and checks it against the word size.
func NewShortText(field, value string, required bool) (ShortText, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" && required {
		return "", fmt.Errorf("%s: %w", field, ErrFieldRequired)
	}
	if len(trimmed) > MaxFieldBytes {
		return "", fmt.Errorf("%s: %w (max %d bytes)", field, ErrFieldTooLong, MaxFieldBytes)
	}
	return ShortText(trimmed), nil
}

func (t ShortText) String() string {
	return string(t)
}
