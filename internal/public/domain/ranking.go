package domain

import (
	"fmt"
	"sort"
	"strings"
)

// SortMode selects the ranking order.
type SortMode string

const (
	SortByPrice    SortMode = "price"
	SortByDistance SortMode = "distance"
)

// ParseSortMode accepts "price" (default) or "distance".
func ParseSortMode(raw string) (SortMode, error) {
	switch SortMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SortByPrice:
		return SortByPrice, nil
	case SortByDistance:
		return SortByDistance, nil
	default:
		return "", fmt.Errorf("sort must be %q or %q", SortByPrice, SortByDistance)
	}
}

// PriceDelta is a store's distance from the cheapest price in its set.
type PriceDelta struct {
	StoreID    string
	Cents      int64
	Percentage float64
}

// CheapestCents returns the minimum price in prices, or 0 when prices is empty.
func CheapestCents(prices []PriceDisplay) int64 {
	if len(prices) == 0 {
		return 0
	}
	cheapest := prices[0].PriceInCents
	for _, p := range prices[1:] {
		if p.PriceInCents < cheapest {
			cheapest = p.PriceInCents
		}
	}
	return cheapest
}

// DerivePriceDeltas computes each price's delta from the cheapest one, in input order.
func DerivePriceDeltas(prices []PriceDisplay) []PriceDelta {
	cheapest := CheapestCents(prices)
	deltas := make([]PriceDelta, 0, len(prices))
	for _, p := range prices {
		delta := p.PriceInCents - cheapest
		pct := 0.0
		if cheapest != 0 {
			pct = float64(delta) / float64(cheapest) * 100
		}
		deltas = append(deltas, PriceDelta{StoreID: p.StoreID, Cents: delta, Percentage: pct})
	}
	return deltas
}

// ApplyPriceDeltas fills the delta fields of stores from their current prices.
func ApplyPriceDeltas(stores []RankedStore) {
	prices := make([]PriceDisplay, len(stores))
	for i := range stores {
		prices[i] = stores[i].Price
	}
	for i, delta := range DerivePriceDeltas(prices) {
		stores[i].DeltaFromCheapest = delta.Cents
		stores[i].DeltaPercentage = delta.Percentage
	}
}

// SortStores orders stores in place. The sort is stable; in distance mode
// stores without a resolved distance go last.
func SortStores(stores []RankedStore, mode SortMode) {
	switch mode {
	case SortByDistance:
		sort.SliceStable(stores, func(i, j int) bool {
			a, b := stores[i].DistanceKm, stores[j].DistanceKm
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			default:
				return *a < *b
			}
		})
	default:
		sort.SliceStable(stores, func(i, j int) bool {
			return stores[i].Price.PriceInCents < stores[j].Price.PriceInCents
		})
	}
}
