package tax

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store resolves tax rules from Postgres. Resolution returns at most one
// rule: the most specific active match for the jurisdiction at the given
// date. No match is a valid zero-tax outcome, not an error.
type Store struct {
	Pool *pgxpool.Pool
}

// NewStore constructs a tax rule store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

// Resolve finds the applicable rule for the tenant, jurisdiction, tax class,
// and evaluation date, or nil when none applies.
func (s *Store) Resolve(ctx context.Context, tenantID string, j Jurisdiction, taxClass string, asOf time.Time) (*Rule, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("tax store not configured")
	}
	if taxClass == "" {
		taxClass = ClassStandard
	}
	j = j.Normalize()
	var (
		id        pgtype.UUID
		rate      pgtype.Numeric
		inclusive bool
	)
	err := s.Pool.QueryRow(ctx, `
		SELECT id, rate, is_inclusive
		FROM tax_rules
		WHERE tenant_id = $1 AND tax_class = $2 AND country = $3
		  AND (state = '' OR state = $4)
		  AND (city = '' OR city = $5)
		  AND (postal = '' OR postal = $6)
		  AND effective_from <= $7
		  AND (effective_to IS NULL OR effective_to >= $7)
		  AND is_active
		ORDER BY (state <> '')::int + (city <> '')::int + (postal <> '')::int DESC, effective_from DESC
		LIMIT 1`,
		tenantID, taxClass, j.Country, j.State, j.City, j.Postal, asOf,
	).Scan(&id, &rate, &inclusive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &Rule{ID: id.Bytes, RateBps: RateToBps(rate), Inclusive: inclusive}, nil
}

// Create inserts a tax rule record for the tenant.
func (s *Store) Create(ctx context.Context, tenantID string, rec Record) (Record, error) {
	if rec.TaxClass == "" {
		rec.TaxClass = ClassStandard
	}
	if rec.EffectiveFrom.IsZero() {
		rec.EffectiveFrom = time.Now()
	}
	rec = rec.normalized()
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO tax_rules (tenant_id, country, state, city, postal, tax_class, rate, is_inclusive, effective_from, effective_to, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, country, state, city, postal, tax_class, rate, is_inclusive, effective_from, effective_to, is_active, created_at, updated_at`,
		tenantID, rec.Country, rec.State, rec.City, rec.Postal,
		rec.TaxClass, BpsToRate(rec.RateBps), rec.Inclusive, rec.EffectiveFrom, rec.EffectiveTo, rec.IsActive,
	)
	return scanRecord(row)
}

// Update mutates an existing tax rule by id.
func (s *Store) Update(ctx context.Context, tenantID string, rec Record) (Record, error) {
	rec = rec.normalized()
	row := s.Pool.QueryRow(ctx, `
		UPDATE tax_rules
		SET country = $3, state = $4, city = $5, postal = $6, tax_class = $7, rate = $8, is_inclusive = $9,
		    effective_from = $10, effective_to = $11, is_active = $12, updated_at = now()
		WHERE tenant_id = $1 AND id = $2
		RETURNING id, country, state, city, postal, tax_class, rate, is_inclusive, effective_from, effective_to, is_active, created_at, updated_at`,
		tenantID, rec.ID, rec.Country, rec.State, rec.City, rec.Postal,
		rec.TaxClass, BpsToRate(rec.RateBps), rec.Inclusive, rec.EffectiveFrom, rec.EffectiveTo, rec.IsActive,
	)
	return scanRecord(row)
}

// List returns a page of tax rule records for the tenant.
func (s *Store) List(ctx context.Context, tenantID string, limit, offset int32) ([]Record, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, country, state, city, postal, tax_class, rate, is_inclusive, effective_from, effective_to, is_active, created_at, updated_at
		FROM tax_rules
		WHERE tenant_id = $1
		ORDER BY country, state, city, postal, effective_from DESC
		LIMIT $2 OFFSET $3`,
		tenantID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec  Record
		rate pgtype.Numeric
	)
	err := row.Scan(&rec.ID, &rec.Country, &rec.State, &rec.City, &rec.Postal, &rec.TaxClass, &rate,
		&rec.Inclusive, &rec.EffectiveFrom, &rec.EffectiveTo, &rec.IsActive, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return Record{}, err
	}
	rec.RateBps = RateToBps(rate)
	return rec, nil
}
