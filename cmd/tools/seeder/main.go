package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// Seeds a demo tenant with pricing rules so a fresh environment can serve
// quotes immediately.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	tenantID := os.Getenv("SEED_TENANT")
	if tenantID == "" {
		tenantID = "demo"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}
	log.Printf("Seeding tenant %q", tenantID)

	seedCoupons(ctx, pool, tenantID)
	seedShippingMethods(ctx, pool, tenantID)
	seedFeeRules(ctx, pool, tenantID)
	seedTaxRules(ctx, pool, tenantID)

	log.Println("Seeding completed successfully!")
}

func seedCoupons(ctx context.Context, pool *pgxpool.Pool, tenantID string) {
	coupons := []struct {
		Code        string
		DiscountBps int32
		ExpiresIn   time.Duration
	}{
		{"WELCOME10", 1000, 90 * 24 * time.Hour},
		{"SPRING5", 500, 30 * 24 * time.Hour},
		{"VIP25", 2500, 365 * 24 * time.Hour},
	}

	log.Println("Seeding Coupons...")
	for _, c := range coupons {
		_, err := pool.Exec(ctx, `
			INSERT INTO coupons (tenant_id, code, discount_bps, is_active, expires_at)
			VALUES ($1, $2, $3, TRUE, $4)
			ON CONFLICT (tenant_id, code) DO NOTHING`,
			tenantID, c.Code, c.DiscountBps, time.Now().Add(c.ExpiresIn),
		)
		if err != nil {
			log.Printf("Failed to seed coupon %s: %v", c.Code, err)
		}
	}
}

func seedShippingMethods(ctx context.Context, pool *pgxpool.Pool, tenantID string) {
	methods := []struct {
		Code      string
		Calc      string
		Flat      int64
		FreeOver  *int64
		RateTable string
	}{
		{"standard", "free_over", 700, int64p(5000), "[]"},
		{"express", "flat", 1500, nil, "[]"},
		{"parcel", "table", 900, nil, `[
			{"maxWeight": 1000, "priceCents": 500},
			{"minWeight": 1001, "maxWeight": 5000, "priceCents": 900},
			{"minWeight": 5001, "priceCents": 1600}
		]`},
	}

	log.Println("Seeding Shipping Methods...")
	for _, m := range methods {
		_, err := pool.Exec(ctx, `
			INSERT INTO shipping_methods (tenant_id, code, currency, calc, flat_price_cents, free_over_cents, rate_table, is_active)
			VALUES ($1, $2, 'EUR', $3, $4, $5, $6::jsonb, TRUE)
			ON CONFLICT (tenant_id, code) DO NOTHING`,
			tenantID, m.Code, m.Calc, m.Flat, m.FreeOver, m.RateTable,
		)
		if err != nil {
			log.Printf("Failed to seed shipping method %s: %v", m.Code, err)
		}
	}
}

func seedFeeRules(ctx context.Context, pool *pgxpool.Pool, tenantID string) {
	rules := []struct {
		Code       string
		Name       string
		Mode       string
		Amount     int64
		PercentBps int32
		Min        *int64
		Max        *int64
		When       []string
	}{
		{"cod", "Cash on delivery", "fixed", 300, 0, nil, nil, []string{"cod"}},
		{"express_handling", "Express handling", "fixed", 400, 0, nil, nil, []string{"express_shipping"}},
		{"small_order", "Small order surcharge", "fixed", 200, 0, nil, nil, []string{"below_free_shipping"}},
		{"service", "Service charge", "percent", 0, 250, int64p(50), int64p(500), nil},
	}

	log.Println("Seeding Fee Rules...")
	for _, r := range rules {
		_, err := pool.Exec(ctx, `
			INSERT INTO fee_rules (tenant_id, code, name, currency, mode, amount_cents, percent_bps, min_cents, max_cents, applies_when, is_active)
			VALUES ($1, $2, $3, 'EUR', $4, $5, $6, $7, $8, $9, TRUE)
			ON CONFLICT (tenant_id, code) DO NOTHING`,
			tenantID, r.Code, r.Name, r.Mode, r.Amount, r.PercentBps, r.Min, r.Max, r.When,
		)
		if err != nil {
			log.Printf("Failed to seed fee rule %s: %v", r.Code, err)
		}
	}
}

func seedTaxRules(ctx context.Context, pool *pgxpool.Pool, tenantID string) {
	rules := []struct {
		Country   string
		State     string
		Rate      string
		Inclusive bool
	}{
		{"DE", "", "19.00", false},
		{"FR", "", "20.00", true},
		{"US", "CA", "7.25", false},
	}

	log.Println("Seeding Tax Rules...")
	for _, r := range rules {
		_, err := pool.Exec(ctx, `
			INSERT INTO tax_rules (tenant_id, country, state, tax_class, rate, is_inclusive, effective_from, is_active)
			VALUES ($1, $2, $3, 'standard', $4::numeric, $5, now(), TRUE)`,
			tenantID, r.Country, r.State, r.Rate, r.Inclusive,
		)
		if err != nil {
			log.Printf("Failed to seed tax rule %s/%s: %v", r.Country, r.State, err)
		}
	}
}

func int64p(v int64) *int64 { return &v }
