package money_test

import (
	"testing"

	"github.com/noah-isme/backend-niaga/internal/money"
)

func TestRoundHalfUpDiv(t *testing.T) {
	cases := []struct {
		a, b, want int64
	}{
		{10, 4, 3},  // 2.5 rounds up
		{9, 4, 2},   // 2.25 rounds down
		{11, 4, 3},  // 2.75 rounds up
		{200, 100, 2},
		{1, 2, 1}, // 0.5 rounds up
		{0, 7, 0},
		{-5, 7, 0},
		{5, 0, 0},
	}
	for _, tc := range cases {
		if got := money.RoundHalfUpDiv(tc.a, tc.b); got != tc.want {
			t.Fatalf("RoundHalfUpDiv(%d, %d) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestApplyBps(t *testing.T) {
	if got := money.ApplyBps(2000, 1000); got != 200 {
		t.Fatalf("10%% of 2000 = %d, want 200", got)
	}
	if got := money.ApplyBps(1001, 50); got != 5 {
		t.Fatalf("0.5%% of 1001 = %d, want 5", got)
	}
	if got := money.ApplyBps(999, 0); got != 0 {
		t.Fatalf("0 bps should yield 0, got %d", got)
	}
	if got := money.ApplyBps(-100, 1000); got != 0 {
		t.Fatalf("negative amount should yield 0, got %d", got)
	}
}

func TestClampBps(t *testing.T) {
	if got := money.ClampBps(-5); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := money.ClampBps(25_000); got != 10_000 {
		t.Fatalf("expected 10000, got %d", got)
	}
	if got := money.ClampBps(2500); got != 2500 {
		t.Fatalf("expected 2500, got %d", got)
	}
}
