package fee

import (
	"strings"

	"github.com/noah-isme/backend-niaga/internal/money"
	"github.com/noah-isme/backend-niaga/internal/shipping"
)

// Basket describes the quote state fee rules are evaluated against.
type Basket struct {
	Currency      string
	SubtotalCents int64
	DiscountCents int64
	ShippingCents int64
	Flags         map[string]bool
	MethodCode    string
	MethodCalc    shipping.Calc
	FreeOverCents *int64
}

// Evaluate applies every active rule independently and returns the fees that
// made it into the quote plus their total in the basket currency. Fee amounts
// in another currency stay in the list but are excluded from the total.
func Evaluate(rules []Rule, b Basket) ([]Applied, int64) {
	applied := make([]Applied, 0, len(rules))
	var total int64
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		if !applies(r, b) {
			continue
		}
		amount := clampAmount(amountFor(r, b), r.MinCents, r.MaxCents)
		if amount <= 0 {
			continue
		}
		applied = append(applied, Applied{
			Code:        r.Code,
			Name:        r.Name,
			AmountCents: amount,
			Currency:    r.Currency,
		})
		if r.Currency == "" || strings.EqualFold(r.Currency, b.Currency) {
			total += amount
		}
	}
	return applied, total
}

// applies implements any-match semantics; an empty condition list is treated
// as unconditionally applicable.
func applies(r Rule, b Basket) bool {
	if len(r.AppliesWhen) == 0 {
		return true
	}
	for _, c := range r.AppliesWhen {
		switch c {
		case CondAll:
			return true
		case CondCOD:
			if b.Flags[string(CondCOD)] {
				return true
			}
		case CondExpressShipping:
			if b.MethodCode == "express" {
				return true
			}
		case CondBelowFreeShipping:
			if b.MethodCalc == shipping.CalcFreeOver && b.FreeOverCents != nil && b.SubtotalCents < *b.FreeOverCents {
				return true
			}
		}
	}
	return false
}

func amountFor(r Rule, b Basket) int64 {
	if r.Mode == ModePercent {
		base := b.SubtotalCents - b.DiscountCents + b.ShippingCents
		return money.ApplyBps(base, money.ClampBps(r.PercentBps))
	}
	return r.AmountCents
}

func clampAmount(amount int64, min, max *int64) int64 {
	if min != nil && amount < *min {
		amount = *min
	}
	if max != nil && amount > *max {
		amount = *max
	}
	return amount
}
