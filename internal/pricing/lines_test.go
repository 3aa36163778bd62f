package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-niaga/internal/pricing"
)

func int64p(v int64) *int64 { return &v }

func TestAssembleLines(t *testing.T) {
	t.Parallel()

	items := []pricing.Item{
		{ProductID: "p1", Qty: 2, PriceCents: 1000, Currency: "EUR"},
		{ProductID: "p2", Qty: 1, PriceCents: 500, OfferPriceCents: int64p(400), Currency: "eur"},
	}
	lines, subtotal, err := pricing.AssembleLines(items, "EUR")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.EqualValues(t, 2000, lines[0].LineTotalCents)
	// offer price overrides list price
	require.EqualValues(t, 400, lines[1].UnitCents)
	require.EqualValues(t, 2400, subtotal)
}

func TestAssembleLinesEmptyCart(t *testing.T) {
	t.Parallel()

	_, _, err := pricing.AssembleLines(nil, "EUR")
	require.ErrorIs(t, err, pricing.ErrItemsRequired)
}

func TestAssembleLinesCurrencyMismatch(t *testing.T) {
	t.Parallel()

	items := []pricing.Item{
		{ProductID: "p1", Qty: 1, PriceCents: 1000, Currency: "USD"},
	}
	lines, subtotal, err := pricing.AssembleLines(items, "EUR")
	require.ErrorIs(t, err, pricing.ErrCurrencyMismatch)
	require.Nil(t, lines)
	require.Zero(t, subtotal)
}

func TestAssembleLinesFloorsQtyAndPrice(t *testing.T) {
	t.Parallel()

	items := []pricing.Item{
		{ProductID: "p1", Qty: 0, PriceCents: 1000, Currency: "EUR"},
		{ProductID: "p2", Qty: 3, PriceCents: -50, Currency: "EUR"},
	}
	lines, subtotal, err := pricing.AssembleLines(items, "EUR")
	require.NoError(t, err)
	require.EqualValues(t, 1, lines[0].Qty)
	require.EqualValues(t, 1000, lines[0].LineTotalCents)
	require.Zero(t, lines[1].LineTotalCents)
	require.EqualValues(t, 1000, subtotal)
}

func TestTotalWeight(t *testing.T) {
	t.Parallel()

	items := []pricing.Item{
		{Qty: 2, WeightGrams: 250},
		{Qty: 0, WeightGrams: 100},
	}
	require.EqualValues(t, 600, pricing.TotalWeight(items, nil))
	// explicit override wins over the per-item sum
	require.EqualValues(t, 1500, pricing.TotalWeight(items, int64p(1500)))
	require.Zero(t, pricing.TotalWeight(items, int64p(-10)))
}
