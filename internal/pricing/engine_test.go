package pricing_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-niaga/internal/coupon"
	"github.com/noah-isme/backend-niaga/internal/fee"
	"github.com/noah-isme/backend-niaga/internal/pricing"
	"github.com/noah-isme/backend-niaga/internal/shipping"
	"github.com/noah-isme/backend-niaga/internal/tax"
)

type stubSources struct {
	coupon  *coupon.Coupon
	method  *shipping.Method
	rules   []fee.Rule
	taxRule *tax.Rule
}

func (s *stubSources) FindActive(context.Context, string, string) (*coupon.Coupon, error) {
	return s.coupon, nil
}

func (s *stubSources) FindByCode(context.Context, string, string) (*shipping.Method, error) {
	return s.method, nil
}

func (s *stubSources) ListActive(context.Context, string) ([]fee.Rule, error) {
	return s.rules, nil
}

func (s *stubSources) Resolve(context.Context, string, tax.Jurisdiction, string, time.Time) (*tax.Rule, error) {
	return s.taxRule, nil
}

func newEngine(s *stubSources) *pricing.Engine {
	return &pricing.Engine{
		Coupons:  s,
		Methods:  s,
		FeeRules: s,
		Taxes:    s,
		Now:      func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func flatMethod(code string, priceCents int64) *shipping.Method {
	return &shipping.Method{ID: uuid.New(), Code: code, Currency: "EUR", Calc: shipping.CalcFlat, FlatPriceCents: priceCents, IsActive: true}
}

func TestQuoteCouponFlatShipping(t *testing.T) {
	t.Parallel()

	src := &stubSources{
		coupon: &coupon.Coupon{ID: uuid.New(), Code: "SAVE10", DiscountBps: 1000, IsActive: true},
		method: flatMethod("standard", 500),
	}
	out, err := newEngine(src).Quote(context.Background(), "acme", pricing.Input{
		Currency:           "EUR",
		Items:              []pricing.Item{{ProductID: "p1", Qty: 2, PriceCents: 1000, Currency: "EUR"}},
		ShippingMethodCode: "standard",
		CouponCode:         "save10",
	})
	require.NoError(t, err)
	require.EqualValues(t, 2000, out.SubtotalCents)
	require.EqualValues(t, 200, out.DiscountCents)
	require.EqualValues(t, 500, out.Shipping.PriceCents)
	require.Empty(t, out.Fees)
	require.Zero(t, out.TaxCents)
	require.EqualValues(t, 2300, out.TotalCents)
	require.NotNil(t, out.Snapshots.Coupon)
	require.Equal(t, "SAVE10", out.Snapshots.Coupon.Code)
	require.Equal(t, "standard", out.Snapshots.ShippingMethod.Code)
}

func TestQuoteFreeOverThresholdMet(t *testing.T) {
	t.Parallel()

	threshold := int64(5000)
	src := &stubSources{
		method: &shipping.Method{
			ID: uuid.New(), Code: "standard", Currency: "EUR",
			Calc: shipping.CalcFreeOver, FlatPriceCents: 700, FreeOverCents: &threshold, IsActive: true,
		},
	}
	out, err := newEngine(src).Quote(context.Background(), "acme", pricing.Input{
		Currency:           "EUR",
		Items:              []pricing.Item{{ProductID: "p1", Qty: 1, PriceCents: 5000, Currency: "EUR"}},
		ShippingMethodCode: "standard",
	})
	require.NoError(t, err)
	require.Zero(t, out.Shipping.PriceCents)
	require.EqualValues(t, 5000, out.TotalCents)
}

func TestQuoteFeesAndExclusiveTax(t *testing.T) {
	t.Parallel()

	src := &stubSources{
		method: flatMethod("standard", 500),
		rules: []fee.Rule{{
			Code: "cod", Name: "Cash on delivery", Currency: "EUR",
			Mode: fee.ModeFixed, AmountCents: 300,
			AppliesWhen: []fee.Condition{fee.CondCOD}, IsActive: true,
		}},
		taxRule: &tax.Rule{ID: uuid.New(), RateBps: 2000},
	}
	out, err := newEngine(src).Quote(context.Background(), "acme", pricing.Input{
		Currency:           "EUR",
		Items:              []pricing.Item{{ProductID: "p1", Qty: 1, PriceCents: 1000, Currency: "EUR"}},
		ShippingMethodCode: "standard",
		FeeFlags:           []string{"cod"},
	})
	require.NoError(t, err)
	require.Len(t, out.Fees, 1)
	require.EqualValues(t, 300, out.FeesTotalCents)
	// base 1000 + 500 + 300 = 1800, 20% exclusive tax on top
	require.EqualValues(t, 360, out.TaxCents)
	require.EqualValues(t, 2160, out.TotalCents)
	require.Equal(t, []string{"cod"}, out.Snapshots.FeeCodes)
	require.NotNil(t, out.Snapshots.Tax)
	require.EqualValues(t, 2000, out.Snapshots.Tax.RateBps)
}

func TestQuoteInclusiveTaxKeepsTotal(t *testing.T) {
	t.Parallel()

	src := &stubSources{
		method: flatMethod("standard", 200),
		taxRule: &tax.Rule{ID: uuid.New(), RateBps: 2000, Inclusive: true},
	}
	out, err := newEngine(src).Quote(context.Background(), "acme", pricing.Input{
		Currency:           "EUR",
		Items:              []pricing.Item{{ProductID: "p1", Qty: 1, PriceCents: 1000, Currency: "EUR"}},
		ShippingMethodCode: "standard",
	})
	require.NoError(t, err)
	require.EqualValues(t, 200, out.TaxCents)
	require.EqualValues(t, 1200, out.TotalCents)
}

func TestQuoteSoftInvalidCouponStillPrices(t *testing.T) {
	t.Parallel()

	expired := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &stubSources{
		coupon: &coupon.Coupon{ID: uuid.New(), Code: "OLD", DiscountBps: 1000, IsActive: true, ExpiresAt: &expired},
		method: flatMethod("standard", 500),
	}
	out, err := newEngine(src).Quote(context.Background(), "acme", pricing.Input{
		Currency:           "EUR",
		Items:              []pricing.Item{{ProductID: "p1", Qty: 1, PriceCents: 1000, Currency: "EUR"}},
		ShippingMethodCode: "standard",
		CouponCode:         "OLD",
	})
	require.NoError(t, err)
	require.Zero(t, out.DiscountCents)
	require.Nil(t, out.Snapshots.Coupon)
	require.EqualValues(t, 1500, out.TotalCents)
}

func TestQuoteShippingMethodNotFound(t *testing.T) {
	t.Parallel()

	out, err := newEngine(&stubSources{}).Quote(context.Background(), "acme", pricing.Input{
		Currency:           "EUR",
		Items:              []pricing.Item{{ProductID: "p1", Qty: 1, PriceCents: 1000, Currency: "EUR"}},
		ShippingMethodCode: "missing",
	})
	require.ErrorIs(t, err, pricing.ErrShippingMethodNotFound)
	require.Nil(t, out)
}

func TestQuoteShippingCurrencyMismatch(t *testing.T) {
	t.Parallel()

	src := &stubSources{method: &shipping.Method{ID: uuid.New(), Code: "standard", Currency: "USD", Calc: shipping.CalcFlat, FlatPriceCents: 500, IsActive: true}}
	_, err := newEngine(src).Quote(context.Background(), "acme", pricing.Input{
		Currency:           "EUR",
		Items:              []pricing.Item{{ProductID: "p1", Qty: 1, PriceCents: 1000, Currency: "EUR"}},
		ShippingMethodCode: "standard",
	})
	require.ErrorIs(t, err, pricing.ErrShippingCurrencyMismatch)
}

func TestQuoteItemCurrencyMismatchNoPartialOutput(t *testing.T) {
	t.Parallel()

	src := &stubSources{method: flatMethod("standard", 500)}
	out, err := newEngine(src).Quote(context.Background(), "acme", pricing.Input{
		Currency:           "EUR",
		Items:              []pricing.Item{{ProductID: "p1", Qty: 1, PriceCents: 1000, Currency: "USD"}},
		ShippingMethodCode: "standard",
	})
	require.ErrorIs(t, err, pricing.ErrCurrencyMismatch)
	require.Nil(t, out)
}

func TestQuoteFreeShippingOverride(t *testing.T) {
	t.Parallel()

	src := &stubSources{method: flatMethod("standard", 500)}
	out, err := newEngine(src).Quote(context.Background(), "acme", pricing.Input{
		Currency:           "EUR",
		Items:              []pricing.Item{{ProductID: "p1", Qty: 1, PriceCents: 1000, Currency: "EUR"}},
		ShippingMethodCode: "standard",
		FreeShipping:       true,
	})
	require.NoError(t, err)
	require.Zero(t, out.Shipping.PriceCents)
	require.EqualValues(t, 1000, out.TotalCents)
}

func TestQuoteIdempotent(t *testing.T) {
	t.Parallel()

	src := &stubSources{
		coupon:  &coupon.Coupon{ID: uuid.New(), Code: "SAVE10", DiscountBps: 1000, IsActive: true},
		method:  flatMethod("standard", 500),
		taxRule: &tax.Rule{ID: uuid.New(), RateBps: 750},
	}
	in := pricing.Input{
		Currency:           "EUR",
		Items:              []pricing.Item{{ProductID: "p1", Qty: 3, PriceCents: 999, Currency: "EUR"}},
		ShippingMethodCode: "standard",
		CouponCode:         "SAVE10",
	}
	eng := newEngine(src)
	first, err := eng.Quote(context.Background(), "acme", in)
	require.NoError(t, err)
	second, err := eng.Quote(context.Background(), "acme", in)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	require.Equal(t, string(a), string(b))
}
