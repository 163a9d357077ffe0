package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func display(id string, cents int64) PriceDisplay {
	return PriceDisplay{StoreID: id, PriceInCents: cents}
}

func ranked(id string, cents int64, distance *float64) RankedStore {
	return RankedStore{
		StoreDetails: StoreDetails{Store: Store{ID: id}},
		Price:        display(id, cents),
		DistanceKm:   distance,
	}
}

func km(v float64) *float64 { return &v }

func ids(stores []RankedStore) []string {
	out := make([]string, 0, len(stores))
	for _, s := range stores {
		out = append(out, s.ID)
	}
	return out
}

func TestDerivePriceDeltasCheapestIsZero(t *testing.T) {
	sets := [][]PriceDisplay{
		{display("1", 150000)},
		{display("1", 150000), display("2", 158000)},
		{display("1", 990), display("2", 10), display("3", 10), display("4", 5000)},
		{display("1", 0), display("2", 300)},
	}

	for _, prices := range sets {
		cheapest := CheapestCents(prices)
		deltas := DerivePriceDeltas(prices)
		require.Len(t, deltas, len(prices))

		for i, p := range prices {
			assert.GreaterOrEqual(t, deltas[i].Cents, int64(0))
			if p.PriceInCents == cheapest {
				assert.Equal(t, int64(0), deltas[i].Cents)
				assert.Equal(t, 0.0, deltas[i].Percentage)
			}
		}
	}
}

func TestDerivePriceDeltasEmpty(t *testing.T) {
	assert.Equal(t, int64(0), CheapestCents(nil))
	assert.Empty(t, DerivePriceDeltas(nil))
}

func TestDerivePriceDeltasZeroCheapestHasNoPercentage(t *testing.T) {
	deltas := DerivePriceDeltas([]PriceDisplay{display("1", 0), display("2", 5000)})
	assert.Equal(t, int64(5000), deltas[1].Cents)
	assert.Equal(t, 0.0, deltas[1].Percentage)
}

func TestPriceRankingScenario(t *testing.T) {
	stores := []RankedStore{ranked("2", 158000, nil), ranked("1", 150000, nil)}

	ApplyPriceDeltas(stores)
	SortStores(stores, SortByPrice)

	assert.Equal(t, []string{"1", "2"}, ids(stores))
	assert.Equal(t, int64(0), stores[0].DeltaFromCheapest)
	assert.Equal(t, int64(8000), stores[1].DeltaFromCheapest)
	assert.InDelta(t, 5.33, stores[1].DeltaPercentage, 0.01)
}

func TestSortByPriceIsStable(t *testing.T) {
	stores := []RankedStore{ranked("a", 200, nil), ranked("b", 100, nil), ranked("c", 200, nil), ranked("d", 100, nil)}
	SortStores(stores, SortByPrice)
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(stores))
}

func TestSortByDistancePutsUnresolvedLast(t *testing.T) {
	orders := [][]RankedStore{
		{ranked("x", 1, nil), ranked("near", 1, km(0.4)), ranked("y", 1, nil), ranked("far", 1, km(12.5))},
		{ranked("far", 1, km(12.5)), ranked("x", 1, nil), ranked("near", 1, km(0.4)), ranked("y", 1, nil)},
		{ranked("x", 1, nil), ranked("y", 1, nil), ranked("far", 1, km(12.5)), ranked("near", 1, km(0.4))},
	}

	for _, stores := range orders {
		SortStores(stores, SortByDistance)
		assert.Equal(t, []string{"near", "far"}, ids(stores[:2]))
		for _, s := range stores[2:] {
			assert.Nil(t, s.DistanceKm)
		}
	}
}

func TestSortByDistanceKeepsUnresolvedInInputOrder(t *testing.T) {
	stores := []RankedStore{ranked("x", 1, nil), ranked("a", 1, km(2)), ranked("y", 1, nil)}
	SortStores(stores, SortByDistance)
	assert.Equal(t, []string{"a", "x", "y"}, ids(stores))
}

func TestParseSortMode(t *testing.T) {
	mode, err := ParseSortMode("")
	require.NoError(t, err)
	assert.Equal(t, SortByPrice, mode)

	mode, err = ParseSortMode("Distance")
	require.NoError(t, err)
	assert.Equal(t, SortByDistance, mode)

	_, err = ParseSortMode("rating")
	assert.Error(t, err)
}
