package pricing

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/backend-niaga/internal/coupon"
	"github.com/noah-isme/backend-niaga/internal/fee"
	"github.com/noah-isme/backend-niaga/internal/money"
	"github.com/noah-isme/backend-niaga/internal/shipping"
	"github.com/noah-isme/backend-niaga/internal/tax"
)

// Shipping resolution failures abort the quote.
var (
	ErrShippingMethodNotFound   = errors.New("shipping_method_not_found")
	ErrShippingCurrencyMismatch = errors.New("shipping_currency_mismatch")
)

// CouponSource looks up an active coupon by code. Nil result means no usable
// coupon, which is not an error.
type CouponSource interface {
	FindActive(ctx context.Context, tenantID, code string) (*coupon.Coupon, error)
}

// MethodSource looks up an active shipping method by code.
type MethodSource interface {
	FindByCode(ctx context.Context, tenantID, code string) (*shipping.Method, error)
}

// FeeRuleSource lists the active fee rules for a tenant.
type FeeRuleSource interface {
	ListActive(ctx context.Context, tenantID string) ([]fee.Rule, error)
}

// TaxSource resolves the applicable tax rule, or nil when none applies.
type TaxSource interface {
	Resolve(ctx context.Context, tenantID string, j tax.Jurisdiction, taxClass string, asOf time.Time) (*tax.Rule, error)
}

// Input is one quote request. All amounts are integer cents in Currency.
type Input struct {
	Currency            string
	Items               []Item
	ShippingMethodCode  string
	ShippingAddress     tax.Jurisdiction
	CouponCode          string
	FeeFlags            []string
	WeightGramsOverride *int64
	TaxClass            string
	FreeShipping        bool
}

// ShippingQuote is the priced shipping selection.
type ShippingQuote struct {
	Code       string `json:"code"`
	PriceCents int64  `json:"priceCents"`
	Currency   string `json:"currency"`
}

// Snapshots freezes the rules that produced a quote for audit and replay.
type Snapshots struct {
	Coupon         *coupon.Snapshot  `json:"coupon,omitempty"`
	ShippingMethod shipping.Snapshot `json:"shippingMethod"`
	Tax            *tax.Snapshot     `json:"tax,omitempty"`
	FeeCodes       []string          `json:"feeCodes,omitempty"`
}

// Output is the full quote breakdown.
type Output struct {
	Currency       string        `json:"currency"`
	Lines          []Line        `json:"lines"`
	SubtotalCents  int64         `json:"subtotalCents"`
	DiscountCents  int64         `json:"discountCents"`
	Shipping       ShippingQuote `json:"shipping"`
	Fees           []fee.Applied `json:"fees"`
	FeesTotalCents int64         `json:"feesTotalCents"`
	TaxCents       int64         `json:"taxCents"`
	TotalCents     int64         `json:"totalCents"`
	Snapshots      Snapshots     `json:"snapshots"`
}

// Engine computes quotes. It holds no per-request state; every rule is passed
// through an explicit tenant parameter.
type Engine struct {
	Coupons  CouponSource
	Methods  MethodSource
	FeeRules FeeRuleSource
	Taxes    TaxSource
	Now      func() time.Time
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Quote runs the pricing pipeline once. The four rule lookups have no data
// dependency on each other and run concurrently; the arithmetic that follows
// is sequential because each step feeds the next.
func (e *Engine) Quote(ctx context.Context, tenantID string, in Input) (*Output, error) {
	lines, subtotal, err := AssembleLines(in.Items, in.Currency)
	if err != nil {
		return nil, err
	}
	now := e.now()

	var (
		cpn     *coupon.Coupon
		method  *shipping.Method
		rules   []fee.Rule
		taxRule *tax.Rule
	)
	g, gctx := errgroup.WithContext(ctx)
	if in.CouponCode != "" {
		g.Go(func() error {
			var err error
			cpn, err = e.Coupons.FindActive(gctx, tenantID, coupon.NormalizeCode(in.CouponCode))
			return err
		})
	}
	g.Go(func() error {
		var err error
		method, err = e.Methods.FindByCode(gctx, tenantID, in.ShippingMethodCode)
		return err
	})
	g.Go(func() error {
		var err error
		rules, err = e.FeeRules.ListActive(gctx, tenantID)
		return err
	})
	g.Go(func() error {
		var err error
		taxRule, err = e.Taxes.Resolve(gctx, tenantID, in.ShippingAddress, in.TaxClass, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if method == nil {
		return nil, ErrShippingMethodNotFound
	}
	currency := normalizeCurrency(in.Currency)
	if normalizeCurrency(method.Currency) != currency {
		return nil, ErrShippingCurrencyMismatch
	}

	discount, couponSnap := coupon.Discount(cpn, now, subtotal)
	weight := TotalWeight(in.Items, in.WeightGramsOverride)
	shippingCents := shipping.Price(*method, subtotal, weight, in.FreeShipping)

	flags := make(map[string]bool, len(in.FeeFlags))
	for _, f := range in.FeeFlags {
		flags[f] = true
	}
	fees, feesTotal := fee.Evaluate(rules, fee.Basket{
		Currency:      currency,
		SubtotalCents: subtotal,
		DiscountCents: discount,
		ShippingCents: shippingCents,
		Flags:         flags,
		MethodCode:    method.Code,
		MethodCalc:    method.Calc,
		FreeOverCents: method.FreeOverCents,
	})

	base := money.NonNegative(subtotal - discount + shippingCents + feesTotal)
	taxCents, total := tax.Calculate(taxRule, base)

	out := &Output{
		Currency:       currency,
		Lines:          lines,
		SubtotalCents:  subtotal,
		DiscountCents:  discount,
		Shipping:       ShippingQuote{Code: method.Code, PriceCents: shippingCents, Currency: method.Currency},
		Fees:           fees,
		FeesTotalCents: feesTotal,
		TaxCents:       taxCents,
		TotalCents:     total,
		Snapshots: Snapshots{
			Coupon:         couponSnap,
			ShippingMethod: shipping.Snapshot{ID: method.ID, Code: method.Code, Calc: method.Calc},
		},
	}
	if taxRule != nil {
		out.Snapshots.Tax = &tax.Snapshot{RuleID: taxRule.ID, RateBps: taxRule.RateBps, Inclusive: taxRule.Inclusive}
	}
	for _, f := range fees {
		out.Snapshots.FeeCodes = append(out.Snapshots.FeeCodes, f.Code)
	}
	return out, nil
}

func normalizeCurrency(c string) string {
	return strings.ToUpper(strings.TrimSpace(c))
}
