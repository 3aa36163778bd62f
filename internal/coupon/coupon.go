// Package coupon resolves tenant-scoped percentage coupons into discount
// amounts. Missing, inactive, or expired coupons degrade to a zero discount
// instead of failing the quote.
package coupon

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-niaga/internal/money"
)

// Coupon captures the runtime shape of a coupon rule.
type Coupon struct {
	ID          uuid.UUID  `json:"id"`
	Code        string     `json:"code"`
	DiscountBps int32      `json:"discountBps"`
	IsActive    bool       `json:"isActive"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Snapshot freezes the applied coupon for audit and replay.
type Snapshot struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	DiscountBps int32     `json:"discountBps"`
}

// NormalizeCode trims and upper-cases a coupon code. Codes are stored
// upper-cased and matched case-insensitively.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Usable reports whether the coupon may produce a discount at the given
// instant. Expired and inactive coupons are soft-invalid, not errors.
func (c *Coupon) Usable(now time.Time) bool {
	if c == nil || !c.IsActive {
		return false
	}
	if c.ExpiresAt != nil && c.ExpiresAt.Before(now) {
		return false
	}
	return true
}

// Discount computes the discount in cents for the given subtotal. A
// soft-invalid coupon yields zero and no snapshot. The result is clamped to
// [0, subtotal].
func Discount(c *Coupon, now time.Time, subtotalCents money.Money) (money.Money, *Snapshot) {
	if !c.Usable(now) {
		return 0, nil
	}
	bps := money.ClampBps(c.DiscountBps)
	d := money.ApplyBps(subtotalCents, bps)
	if d > subtotalCents {
		d = subtotalCents
	}
	if d < 0 {
		d = 0
	}
	return d, &Snapshot{ID: c.ID, Code: c.Code, DiscountBps: bps}
}
