// Package pricing orchestrates a checkout quote: line assembly, coupon
// discount, shipping price, conditional fees, and tax, all in integer cents.
package pricing

import (
	"errors"
	"strings"

	"github.com/noah-isme/backend-niaga/internal/money"
)

// Hard validation failures. Soft conditions (missing coupon, no tax rule)
// degrade to zero values instead of surfacing here.
var (
	ErrItemsRequired    = errors.New("items_required")
	ErrCurrencyMismatch = errors.New("currency_mismatch")
)

// Item is one cart entry submitted for quoting.
type Item struct {
	ProductID       string            `json:"productId"`
	VariantID       *string           `json:"variantId,omitempty"`
	Qty             int32             `json:"qty"`
	PriceCents      int64             `json:"priceCents"`
	OfferPriceCents *int64            `json:"offerPriceCents,omitempty"`
	Currency        string            `json:"currency"`
	WeightGrams     int64             `json:"weightGrams,omitempty"`
	Attributes      map[string]string `json:"attributes,omitempty"`
}

// Line is a priced cart entry in the quote output.
type Line struct {
	ProductID      string  `json:"productId"`
	VariantID      *string `json:"variantId,omitempty"`
	Qty            int32   `json:"qty"`
	UnitCents      int64   `json:"unitCents"`
	LineTotalCents int64   `json:"lineTotalCents"`
}

// AssembleLines validates the cart against the declared currency and prices
// each line. The offer price overrides the list price when present; a unit
// price is never negative and qty is floored at one.
func AssembleLines(items []Item, currency string) ([]Line, money.Money, error) {
	if len(items) == 0 {
		return nil, 0, ErrItemsRequired
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	lines := make([]Line, 0, len(items))
	var subtotal money.Money
	for _, it := range items {
		if strings.ToUpper(strings.TrimSpace(it.Currency)) != currency {
			return nil, 0, ErrCurrencyMismatch
		}
		unit := it.PriceCents
		if it.OfferPriceCents != nil {
			unit = *it.OfferPriceCents
		}
		unit = money.NonNegative(unit)
		qty := it.Qty
		if qty < 1 {
			qty = 1
		}
		line := Line{
			ProductID:      it.ProductID,
			VariantID:      it.VariantID,
			Qty:            qty,
			UnitCents:      unit,
			LineTotalCents: unit * int64(qty),
		}
		subtotal += line.LineTotalCents
		lines = append(lines, line)
	}
	return lines, subtotal, nil
}

// TotalWeight returns the cart weight in grams. An explicit override wins
// over the sum of per-item weights.
func TotalWeight(items []Item, override *int64) int64 {
	if override != nil {
		return money.NonNegative(*override)
	}
	var total int64
	for _, it := range items {
		qty := it.Qty
		if qty < 1 {
			qty = 1
		}
		total += money.NonNegative(it.WeightGrams) * int64(qty)
	}
	return total
}
