package domain

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// MapsBaseURL prefixes a store's location token to build its map link.
const MapsBaseURL = "https://maps.app.goo.gl/"

// ErrInvalidStoreID is returned for ids that are not unsigned decimal integers.
var ErrInvalidStoreID = errors.New("invalid store id")

// ParseStoreID normalises a store id taken from a request.
func ParseStoreID(raw string) (string, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidStoreID, raw)
	}
	return strconv.FormatUint(n, 10), nil
}

// Store is a store registered on the price contract.
type Store struct {
	ID           string
	Name         string
	Address      string
	Hours        string
	URI          string
	CurrentPrice Price
}

// MapsURL returns the map link for the store's location token.
func (s Store) MapsURL() string {
	token := strings.TrimSpace(s.URI)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(token, "http://") || strings.HasPrefix(token, "https://") {
		return token
	}
	return MapsBaseURL + token
}

// Price is a recorded price in minor currency units.
type Price struct {
	// Amount is a non-negative decimal integer kept as text to avoid precision loss.
	Amount    string
	Timestamp int64
}

// Cents returns the amount as int64.
func (p Price) Cents() (int64, error) {
	amount := strings.TrimSpace(p.Amount)
	if amount == "" {
		return 0, nil
	}
	n, ok := new(big.Int).SetString(amount, 10)
	if !ok || n.Sign() < 0 || !n.IsInt64() {
		return 0, fmt.Errorf("price amount %q is not a non-negative int64", p.Amount)
	}
	return n.Int64(), nil
}

// IsSet reports whether the price carries a non-zero amount.
func (p Price) IsSet() bool {
	amount := strings.TrimSpace(p.Amount)
	return amount != "" && strings.TrimLeft(amount, "0") != ""
}

// StorePrice pairs a store id with its current price.
type StorePrice struct {
	StoreID string
	Price   Price
}

// Report is a community report attached to a store.
type Report struct {
	StoreID     string
	Description string
	SubmittedAt int64
	SubmittedBy string
}

// StoreDetails is a store joined with its community feedback.
type StoreDetails struct {
	Store
	ThanksCount uint64
	Reports     []Report
}

// RankedStore is a store prepared for the ranked list view.
type RankedStore struct {
	StoreDetails
	Price             PriceDisplay
	DeltaFromCheapest int64
	DeltaPercentage   float64
	DistanceKm        *float64
	Coordinates       *Coordinates
}

// PreviewStore is a store with the price shown on the landing page.
type PreviewStore struct {
	Store Store
	Price PriceDisplay
}
