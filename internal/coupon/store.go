package coupon

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists coupon rules in Postgres. Every query carries an explicit
// tenant identifier.
type Store struct {
	Pool *pgxpool.Pool
}

// NewStore constructs a coupon store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

// FindActive returns the active coupon for the tenant and code, or nil when
// no such coupon exists. Absence is not an error.
func (s *Store) FindActive(ctx context.Context, tenantID, code string) (*Coupon, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("coupon store not configured")
	}
	var c Coupon
	err := s.Pool.QueryRow(ctx, `
		SELECT id, code, discount_bps, is_active, expires_at, created_at, updated_at
		FROM coupons
		WHERE tenant_id = $1 AND code = $2 AND is_active`,
		tenantID, NormalizeCode(code),
	).Scan(&c.ID, &c.Code, &c.DiscountBps, &c.IsActive, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a coupon rule for the tenant.
func (s *Store) Create(ctx context.Context, tenantID string, c Coupon) (Coupon, error) {
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO coupons (tenant_id, code, discount_bps, is_active, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, code, discount_bps, is_active, expires_at, created_at, updated_at`,
		tenantID, NormalizeCode(c.Code), c.DiscountBps, c.IsActive, c.ExpiresAt,
	)
	var out Coupon
	err := row.Scan(&out.ID, &out.Code, &out.DiscountBps, &out.IsActive, &out.ExpiresAt, &out.CreatedAt, &out.UpdatedAt)
	return out, err
}

// Update mutates an existing coupon identified by code.
func (s *Store) Update(ctx context.Context, tenantID string, c Coupon) (Coupon, error) {
	row := s.Pool.QueryRow(ctx, `
		UPDATE coupons
		SET discount_bps = $3, is_active = $4, expires_at = $5, updated_at = now()
		WHERE tenant_id = $1 AND code = $2
		RETURNING id, code, discount_bps, is_active, expires_at, created_at, updated_at`,
		tenantID, NormalizeCode(c.Code), c.DiscountBps, c.IsActive, c.ExpiresAt,
	)
	var out Coupon
	err := row.Scan(&out.ID, &out.Code, &out.DiscountBps, &out.IsActive, &out.ExpiresAt, &out.CreatedAt, &out.UpdatedAt)
	return out, err
}

// List returns coupons for the tenant ordered by code.
func (s *Store) List(ctx context.Context, tenantID string, limit, offset int32) ([]Coupon, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, code, discount_bps, is_active, expires_at, created_at, updated_at
		FROM coupons
		WHERE tenant_id = $1
		ORDER BY code
		LIMIT $2 OFFSET $3`,
		tenantID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Coupon, 0, limit)
	for rows.Next() {
		var c Coupon
		if err := rows.Scan(&c.ID, &c.Code, &c.DiscountBps, &c.IsActive, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeactivateExpired flips is_active off for coupons past their expiry. It
// runs across all tenants and returns the number of rows touched.
func (s *Store) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE coupons
		SET is_active = false, updated_at = now()
		WHERE is_active AND expires_at IS NOT NULL AND expires_at < $1`,
		now,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
