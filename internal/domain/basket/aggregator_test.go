package basket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-checkout/internal/domain/catalog"
)

func TestAggregateConcreteScenario(t *testing.T) {
	// price 100000, discount 10%, quantity 2, flat shipping 20000
	products := map[uint]*catalog.Product{
		1: testProduct(1, 100000, 10, 10, 500),
	}
	entries := []Entry{{ProductID: 1, Count: 2}}

	agg := Aggregate(entries, products, 20000, now)

	require.Len(t, agg.LineItems, 1)
	assert.Equal(t, int64(200000), agg.Totals.SubtotalMinor)
	assert.Equal(t, int64(20000), agg.Totals.TotalDiscountMinor)
	assert.Equal(t, int64(180000), agg.Totals.TotalMinor)
	assert.Equal(t, int64(200000), agg.Totals.GrandTotalMinor)
	assert.Equal(t, 1000.0, agg.Totals.TotalWeight)
}

func TestAggregateInvariants(t *testing.T) {
	products := map[uint]*catalog.Product{
		1: testProduct(1, 100000, 10, 10, 500),
		2: testProduct(2, 33333, 7, 4, 120),
	}
	entries := []Entry{
		{ProductID: 1, Count: 2},
		{ProductID: 2, Count: 3},
	}

	agg := Aggregate(entries, products, 20000, now)

	assert.Equal(t, agg.Totals.SubtotalMinor-agg.Totals.TotalDiscountMinor, agg.Totals.TotalMinor)
	assert.Equal(t, agg.Totals.TotalMinor+agg.Totals.ShippingCostMinor, agg.Totals.GrandTotalMinor)
}

func TestAggregateSplitEntriesNoRoundingDrift(t *testing.T) {
	// The same quantity split across two entries of the same product must sum
	// to the same totals as one entry, to the integer minor unit.
	products := map[uint]*catalog.Product{
		1: testProduct(1, 99999, 13, 10, 0),
	}

	single := Aggregate([]Entry{{ProductID: 1, Count: 2}}, products, 0, now)
	split := Aggregate([]Entry{
		{ProductID: 1, Count: 1},
		{ProductID: 1, Count: 1},
	}, products, 0, now)

	assert.Equal(t, single.Totals, split.Totals)
}

func TestAggregateDropsUnresolvableEntries(t *testing.T) {
	products := map[uint]*catalog.Product{
		1: testProduct(1, 100000, 0, 10, 0),
	}
	entries := []Entry{
		{ProductID: 1, Count: 1},
		{ProductID: 99, Count: 2}, // deleted product
	}

	agg := Aggregate(entries, products, 0, now)

	require.Len(t, agg.LineItems, 1)
	require.Len(t, agg.Dropped, 1)
	assert.Equal(t, uint(99), agg.Dropped[0].ProductID)
	assert.Equal(t, int64(100000), agg.Totals.SubtotalMinor)
}

func TestAggregatePreservesEntryOrder(t *testing.T) {
	products := map[uint]*catalog.Product{
		1: testProduct(1, 100, 0, 10, 0),
		2: testProduct(2, 200, 0, 10, 0),
		3: testProduct(3, 300, 0, 10, 0),
	}
	entries := []Entry{
		{ProductID: 3, Count: 1},
		{ProductID: 1, Count: 1},
		{ProductID: 2, Count: 1},
	}

	agg := Aggregate(entries, products, 0, now)

	require.Len(t, agg.LineItems, 3)
	assert.Equal(t, uint(3), agg.LineItems[0].Product.ID)
	assert.Equal(t, uint(1), agg.LineItems[1].Product.ID)
	assert.Equal(t, uint(2), agg.LineItems[2].Product.ID)
}

func TestPaginationIndependence(t *testing.T) {
	products := map[uint]*catalog.Product{}
	var entries []Entry
	for id := uint(1); id <= 7; id++ {
		products[id] = testProduct(id, int64(id)*1000, 5, 10, 10)
		entries = append(entries, Entry{ProductID: id, Count: int(id)})
	}

	full := Aggregate(entries, products, 20000, now)

	for _, pageSize := range []int{0, 1, 2, 3, 100} {
		paged := Aggregate(entries, products, 20000, now)
		_ = paged.Page(2, pageSize)
		assert.Equal(t, full.Totals, paged.Totals, "totals must not depend on the visible page (pageSize=%d)", pageSize)
	}

	// Page slicing itself
	assert.Len(t, full.Page(1, 3), 3)
	assert.Len(t, full.Page(3, 3), 1)
	assert.Empty(t, full.Page(4, 3))
	assert.Len(t, full.Page(1, 0), 7)
}

func TestPayableBaseBranches(t *testing.T) {
	totals := OrderTotals{
		SubtotalMinor:      200000,
		TotalDiscountMinor: 20000,
		TotalMinor:         180000,
		ShippingCostMinor:  20000,
		GrandTotalMinor:    200000,
	}

	assert.Equal(t, int64(200000), totals.PayableBase(ShipmentPostal))
	assert.Equal(t, int64(180000), totals.PayableBase(ShipmentCourier))
	assert.Equal(t, int64(180000), totals.PayableBase(ShipmentPickup))

	// promo code 10%, postal: floor(200000 * 0.9) = 180000
	assert.Equal(t, int64(180000), totals.FinalPayable(ShipmentPostal, 10))
	assert.Equal(t, int64(162000), totals.FinalPayable(ShipmentCourier, 10))
	assert.Equal(t, int64(200000), totals.FinalPayable(ShipmentPostal, 0))
}

func TestEntryJSONRoundTrip(t *testing.T) {
	entries := []Entry{
		{ProductID: 42, Count: 2},
		{ProductID: 7, Count: 1},
	}

	data, err := json.Marshal(entries)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"productId":"42","count":2},{"productId":"7","count":1}]`, string(data))

	var decoded []Entry
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, entries, decoded)
}

func TestSequencerDiscardsStaleResults(t *testing.T) {
	var seq Sequencer

	first := seq.Begin()
	second := seq.Begin()

	// The later request returns first and commits
	assert.True(t, seq.Accept(second))
	// The superseded request must not overwrite it
	assert.False(t, seq.Accept(first))

	// A fresh request still commits
	third := seq.Begin()
	assert.True(t, seq.Accept(third))
}

func TestSequencerInOrderCommits(t *testing.T) {
	var seq Sequencer

	first := seq.Begin()
	second := seq.Begin()

	assert.True(t, seq.Accept(first))
	assert.True(t, seq.Accept(second))
}
