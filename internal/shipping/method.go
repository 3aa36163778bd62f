// Package shipping selects a shipping price from tenant-scoped shipping
// methods: flat rates, free-over thresholds, and weight/subtotal rate tables.
package shipping

import (
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-niaga/internal/money"
)

// Calc enumerates the supported price calculation strategies.
type Calc string

const (
	// CalcFlat always charges the flat price.
	CalcFlat Calc = "flat"
	// CalcFreeOver waives the flat price once the subtotal reaches a threshold.
	CalcFreeOver Calc = "free_over"
	// CalcTable picks the cheapest matching row from a rate table.
	CalcTable Calc = "table"
)

// Valid reports whether the calc value belongs to the closed set.
func (c Calc) Valid() bool {
	switch c {
	case CalcFlat, CalcFreeOver, CalcTable:
		return true
	}
	return false
}

// TableRow is one band of a rate table. Unset bounds are unbounded.
type TableRow struct {
	MinWeight        *int64 `json:"minWeight,omitempty"`
	MaxWeight        *int64 `json:"maxWeight,omitempty"`
	MinSubtotalCents *int64 `json:"minSubtotalCents,omitempty"`
	MaxSubtotalCents *int64 `json:"maxSubtotalCents,omitempty"`
	PriceCents       int64  `json:"priceCents"`
}

func (row TableRow) admits(weightGrams, subtotalCents int64) bool {
	if row.MinWeight != nil && weightGrams < *row.MinWeight {
		return false
	}
	if row.MaxWeight != nil && weightGrams > *row.MaxWeight {
		return false
	}
	if row.MinSubtotalCents != nil && subtotalCents < *row.MinSubtotalCents {
		return false
	}
	if row.MaxSubtotalCents != nil && subtotalCents > *row.MaxSubtotalCents {
		return false
	}
	return true
}

// Method is a tenant-scoped shipping method record.
type Method struct {
	ID             uuid.UUID  `json:"id"`
	Code           string     `json:"code"`
	Currency       string     `json:"currency"`
	Calc           Calc       `json:"calc"`
	FlatPriceCents int64      `json:"flatPriceCents"`
	FreeOverCents  *int64     `json:"freeOverCents,omitempty"`
	Table          []TableRow `json:"table,omitempty"`
	IsActive       bool       `json:"isActive"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Snapshot freezes the method used for a quote.
type Snapshot struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
	Calc Calc      `json:"calc"`
}

// Price resolves the shipping price in cents. freeShipping is an upstream
// override (e.g. granted by a promotion) and forces zero regardless of calc.
func Price(m Method, subtotalCents, weightGrams int64, freeShipping bool) int64 {
	if freeShipping {
		return 0
	}
	switch m.Calc {
	case CalcFreeOver:
		if m.FreeOverCents != nil && subtotalCents >= *m.FreeOverCents {
			return 0
		}
		return money.NonNegative(m.FlatPriceCents)
	case CalcTable:
		best := int64(-1)
		for _, row := range m.Table {
			if !row.admits(weightGrams, subtotalCents) {
				continue
			}
			// cheapest matching band wins, not the first listed
			if best < 0 || row.PriceCents < best {
				best = row.PriceCents
			}
		}
		if best >= 0 {
			return money.NonNegative(best)
		}
		return money.NonNegative(m.FlatPriceCents)
	default:
		return money.NonNegative(m.FlatPriceCents)
	}
}
