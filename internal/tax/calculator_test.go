package tax_test

import (
	"math/big"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-niaga/internal/tax"
)

func TestCalculateExclusive(t *testing.T) {
	t.Parallel()

	r := &tax.Rule{ID: uuid.New(), RateBps: 2000}
	taxCents, total := tax.Calculate(r, 1000)
	require.EqualValues(t, 200, taxCents)
	require.EqualValues(t, 1200, total)
}

func TestCalculateInclusive(t *testing.T) {
	t.Parallel()

	r := &tax.Rule{ID: uuid.New(), RateBps: 2000, Inclusive: true}
	taxCents, total := tax.Calculate(r, 1200)
	require.EqualValues(t, 200, taxCents)
	// inclusive tax never adds on top of the base
	require.EqualValues(t, 1200, total)
}

func TestCalculateNoRule(t *testing.T) {
	t.Parallel()

	taxCents, total := tax.Calculate(nil, 1500)
	require.Zero(t, taxCents)
	require.EqualValues(t, 1500, total)
}

func TestCalculateNegativeBase(t *testing.T) {
	t.Parallel()

	r := &tax.Rule{RateBps: 1000}
	taxCents, total := tax.Calculate(r, -50)
	require.Zero(t, taxCents)
	require.Zero(t, total)
}

func TestCalculateBoundsOfRateRange(t *testing.T) {
	t.Parallel()

	zero := &tax.Rule{RateBps: 0}
	taxCents, total := tax.Calculate(zero, 1000)
	require.Zero(t, taxCents)
	require.EqualValues(t, 1000, total)

	full := &tax.Rule{RateBps: 10_000}
	taxCents, total = tax.Calculate(full, 1000)
	require.EqualValues(t, 1000, taxCents)
	require.EqualValues(t, 2000, total)

	fullInclusive := &tax.Rule{RateBps: 10_000, Inclusive: true}
	taxCents, total = tax.Calculate(fullInclusive, 1000)
	require.EqualValues(t, 500, taxCents)
	require.EqualValues(t, 1000, total)
}

func numeric(digits int64, exp int32) pgtype.Numeric {
	return pgtype.Numeric{Int: big.NewInt(digits), Exp: exp, Valid: true}
}

func TestRateToBpsNormalization(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   pgtype.Numeric
		want int32
	}{
		{"percent 20", numeric(20, 0), 2000},
		{"fraction 0.2", numeric(2, -1), 2000},
		{"fraction 0.075", numeric(75, -3), 750},
		{"percent 7.5", numeric(75, -1), 750},
		{"one is a full fraction", numeric(1, 0), 10_000},
		{"zero", numeric(0, 0), 0},
		{"invalid", pgtype.Numeric{}, 0},
		{"percent over 100 clamps", numeric(250, 0), 10_000},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, tax.RateToBps(tc.in), tc.name)
	}
}

func TestBpsToRateRoundTrip(t *testing.T) {
	t.Parallel()

	// small rates matter most here: a 1% rule must not come back as 100%
	for _, bps := range []int32{1, 25, 50, 100, 200, 750, 2000, 10_000} {
		require.Equal(t, bps, tax.RateToBps(tax.BpsToRate(bps)), "bps %d", bps)
	}
}

func TestJurisdictionNormalize(t *testing.T) {
	t.Parallel()

	j := tax.Jurisdiction{Country: " de ", State: "ca", City: " München ", Postal: "80331 "}
	n := j.Normalize()
	require.Equal(t, "DE", n.Country)
	require.Equal(t, "CA", n.State)
	require.Equal(t, "MÜNCHEN", n.City)
	require.Equal(t, "80331", n.Postal)
}
