// Package tax resolves jurisdiction tax rules and computes tax amounts with
// inclusive or exclusive semantics. Rates travel as integer basis points.
package tax

import (
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noah-isme/backend-niaga/internal/money"
)

// ClassStandard is the only tax class modelled by the engine.
const ClassStandard = "standard"

// Jurisdiction identifies where an order is taxed. Country is mandatory;
// narrower fields make a rule more specific.
type Jurisdiction struct {
	Country string `json:"country"`
	State   string `json:"state,omitempty"`
	City    string `json:"city,omitempty"`
	Postal  string `json:"postal,omitempty"`
}

// Normalize trims and upper-cases every jurisdiction field. Rules are stored
// and looked up in this form.
func (j Jurisdiction) Normalize() Jurisdiction {
	return Jurisdiction{
		Country: normalizeRegion(j.Country),
		State:   normalizeRegion(j.State),
		City:    normalizeRegion(j.City),
		Postal:  normalizeRegion(j.Postal),
	}
}

func normalizeRegion(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Rule is a resolved tax rule ready for calculation.
type Rule struct {
	ID        uuid.UUID `json:"id"`
	RateBps   int32     `json:"rateBps"`
	Inclusive bool      `json:"inclusive"`
}

// Snapshot freezes the rule used for a quote.
type Snapshot struct {
	RuleID    uuid.UUID `json:"ruleId"`
	RateBps   int32     `json:"rateBps"`
	Inclusive bool      `json:"inclusive"`
}

// Record is the stored form of a tax rule, managed through the admin surface.
type Record struct {
	ID            uuid.UUID  `json:"id"`
	Country       string     `json:"country"`
	State         string     `json:"state,omitempty"`
	City          string     `json:"city,omitempty"`
	Postal        string     `json:"postal,omitempty"`
	TaxClass      string     `json:"taxClass"`
	RateBps       int32      `json:"rateBps"`
	Inclusive     bool       `json:"inclusive"`
	EffectiveFrom time.Time  `json:"effectiveFrom"`
	EffectiveTo   *time.Time `json:"effectiveTo,omitempty"`
	IsActive      bool       `json:"isActive"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (r Record) normalized() Record {
	r.Country = normalizeRegion(r.Country)
	r.State = normalizeRegion(r.State)
	r.City = normalizeRegion(r.City)
	r.Postal = normalizeRegion(r.Postal)
	return r
}

var (
	ratOne      = big.NewRat(1, 1)
	ratHundred  = big.NewRat(100, 1)
	ratBpsDenom = big.NewRat(money.BpsDenom, 1)
)

// RateToBps normalizes a stored numeric rate into basis points. Legacy rows
// carry rates both as fractions (0.2) and percentages (20); values at or
// below 1 are treated as already-fractional.
func RateToBps(n pgtype.Numeric) int32 {
	if !n.Valid || n.NaN || n.Int == nil || n.Int.Sign() <= 0 {
		return 0
	}
	value := new(big.Rat).SetInt(n.Int)
	exp := int64(n.Exp)
	if exp > 0 {
		value.Mul(value, new(big.Rat).SetInt(pow10(exp)))
	} else if exp < 0 {
		value.Quo(value, new(big.Rat).SetInt(pow10(-exp)))
	}
	if value.Cmp(ratOne) <= 0 {
		value.Mul(value, ratBpsDenom)
	} else {
		value.Mul(value, ratHundred)
	}
	// round half-up to an integer bps value
	num := value.Num()
	den := value.Denom()
	rounded := new(big.Int).Mul(num, big.NewInt(2))
	rounded.Add(rounded, den)
	rounded.Quo(rounded, new(big.Int).Mul(den, big.NewInt(2)))
	if !rounded.IsInt64() {
		return int32(money.BpsDenom)
	}
	return money.ClampBps(int32(min64(rounded.Int64(), money.BpsDenom)))
}

// BpsToRate converts basis points into the stored numeric form. The fraction
// encoding (0.01 for 100 bps) keeps every value in 0..10000 bps at or below
// 1, so RateToBps decodes it exactly. The percent form is reserved for legacy
// rows written out of band.
func BpsToRate(bps int32) pgtype.Numeric {
	return pgtype.Numeric{Int: big.NewInt(int64(money.ClampBps(bps))), Exp: -4, Valid: true}
}

// Calculate applies the rule to the base amount. An inclusive rate is carved
// out of the base; an exclusive rate is added on top. A nil rule means no
// tax applies and the base is the final total.
func Calculate(r *Rule, baseCents money.Money) (taxCents, totalCents money.Money) {
	baseCents = money.NonNegative(baseCents)
	if r == nil || r.RateBps <= 0 {
		return 0, baseCents
	}
	rate := int64(money.ClampBps(r.RateBps))
	if r.Inclusive {
		tax := money.RoundHalfUpDiv(baseCents*rate, money.BpsDenom+rate)
		return tax, baseCents
	}
	tax := money.ApplyBps(baseCents, int32(rate))
	return tax, baseCents + tax
}

func pow10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
