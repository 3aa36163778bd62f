package shipping

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-niaga/internal/rulecache"
)

// Store persists shipping methods in Postgres with an optional Redis
// read-through cache for the hot lookup on the quote path.
type Store struct {
	Pool  *pgxpool.Pool
	Cache *rulecache.Cache
}

// NewStore constructs a shipping method store.
func NewStore(pool *pgxpool.Pool, cache *rulecache.Cache) *Store {
	return &Store{Pool: pool, Cache: cache}
}

func methodCacheKey(code string) string {
	return "shipmethod:" + strings.ToLower(strings.TrimSpace(code))
}

// FindByCode returns the active method for the tenant and code, or nil when
// none exists.
func (s *Store) FindByCode(ctx context.Context, tenantID, code string) (*Method, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("shipping store not configured")
	}
	key := methodCacheKey(code)
	var cached Method
	if hit, err := s.Cache.Get(ctx, tenantID, key, &cached); err == nil && hit {
		return &cached, nil
	}
	m, err := s.findByCode(ctx, tenantID, code)
	if err != nil || m == nil {
		return m, err
	}
	_ = s.Cache.Set(ctx, tenantID, key, m)
	return m, nil
}

func (s *Store) findByCode(ctx context.Context, tenantID, code string) (*Method, error) {
	var m Method
	err := s.Pool.QueryRow(ctx, `
		SELECT id, code, currency, calc, flat_price_cents, free_over_cents, rate_table, is_active, created_at, updated_at
		FROM shipping_methods
		WHERE tenant_id = $1 AND code = $2 AND is_active`,
		tenantID, strings.TrimSpace(code),
	).Scan(&m.ID, &m.Code, &m.Currency, &m.Calc, &m.FlatPriceCents, &m.FreeOverCents, &m.Table, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// Create inserts a shipping method for the tenant.
func (s *Store) Create(ctx context.Context, tenantID string, m Method) (Method, error) {
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO shipping_methods (tenant_id, code, currency, calc, flat_price_cents, free_over_cents, rate_table, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, code, currency, calc, flat_price_cents, free_over_cents, rate_table, is_active, created_at, updated_at`,
		tenantID, strings.TrimSpace(m.Code), strings.ToUpper(m.Currency), m.Calc, m.FlatPriceCents, m.FreeOverCents, m.Table, m.IsActive,
	)
	out, err := scanMethod(row)
	if err == nil {
		_ = s.Cache.Invalidate(ctx, tenantID, methodCacheKey(out.Code))
	}
	return out, err
}

// Update mutates an existing method identified by code.
func (s *Store) Update(ctx context.Context, tenantID string, m Method) (Method, error) {
	row := s.Pool.QueryRow(ctx, `
		UPDATE shipping_methods
		SET currency = $3, calc = $4, flat_price_cents = $5, free_over_cents = $6, rate_table = $7, is_active = $8, updated_at = now()
		WHERE tenant_id = $1 AND code = $2
		RETURNING id, code, currency, calc, flat_price_cents, free_over_cents, rate_table, is_active, created_at, updated_at`,
		tenantID, strings.TrimSpace(m.Code), strings.ToUpper(m.Currency), m.Calc, m.FlatPriceCents, m.FreeOverCents, m.Table, m.IsActive,
	)
	out, err := scanMethod(row)
	if err == nil {
		_ = s.Cache.Invalidate(ctx, tenantID, methodCacheKey(out.Code))
	}
	return out, err
}

// List returns methods for the tenant ordered by code.
func (s *Store) List(ctx context.Context, tenantID string, limit, offset int32) ([]Method, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, code, currency, calc, flat_price_cents, free_over_cents, rate_table, is_active, created_at, updated_at
		FROM shipping_methods
		WHERE tenant_id = $1
		ORDER BY code
		LIMIT $2 OFFSET $3`,
		tenantID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Method, 0, limit)
	for rows.Next() {
		m, err := scanMethod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMethod(row rowScanner) (Method, error) {
	var m Method
	err := row.Scan(&m.ID, &m.Code, &m.Currency, &m.Calc, &m.FlatPriceCents, &m.FreeOverCents, &m.Table, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}
