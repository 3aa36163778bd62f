// Package fee evaluates conditional surcharge rules (cash-on-delivery fees,
// express handling, small-order fees below a free-shipping threshold) against
// the state of a quote.
package fee

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Mode enumerates how a fee amount is computed.
type Mode string

const (
	// ModeFixed charges a fixed amount in cents.
	ModeFixed Mode = "fixed"
	// ModePercent charges a fraction of the running total.
	ModePercent Mode = "percent"
)

// Valid reports whether the mode belongs to the closed set.
func (m Mode) Valid() bool {
	return m == ModeFixed || m == ModePercent
}

// Condition is a situational trigger controlling whether a rule applies.
// The set is closed; unknown values are rejected at ingestion so the
// evaluator never meets an unhandled condition.
type Condition string

const (
	// CondAll matches unconditionally.
	CondAll Condition = "all"
	// CondCOD matches when the cash-on-delivery flag is set.
	CondCOD Condition = "cod"
	// CondExpressShipping matches when the chosen method code is "express".
	CondExpressShipping Condition = "express_shipping"
	// CondBelowFreeShipping matches when a free_over method's threshold is unmet.
	CondBelowFreeShipping Condition = "below_free_shipping"
)

// ParseCondition validates a raw condition string.
func ParseCondition(raw string) (Condition, error) {
	c := Condition(raw)
	switch c {
	case CondAll, CondCOD, CondExpressShipping, CondBelowFreeShipping:
		return c, nil
	}
	return "", fmt.Errorf("unknown fee condition: %q", raw)
}

// Rule is a tenant-scoped conditional fee record.
type Rule struct {
	ID          uuid.UUID   `json:"id"`
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Currency    string      `json:"currency"`
	Mode        Mode        `json:"mode"`
	AmountCents int64       `json:"amountCents"`
	PercentBps  int32       `json:"percentBps"`
	MinCents    *int64      `json:"minCents,omitempty"`
	MaxCents    *int64      `json:"maxCents,omitempty"`
	AppliesWhen []Condition `json:"appliesWhen"`
	IsActive    bool        `json:"isActive"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Applied is a fee included in a quote.
type Applied struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	AmountCents int64  `json:"amountCents"`
	Currency    string `json:"currency"`
}
