package fee

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-niaga/internal/rulecache"
)

const activeRulesCacheKey = "feerules:active"

// Store persists fee rules in Postgres. The active rule set is the hot read
// on the quote path and goes through the rule cache.
type Store struct {
	Pool  *pgxpool.Pool
	Cache *rulecache.Cache
}

// NewStore constructs a fee rule store.
func NewStore(pool *pgxpool.Pool, cache *rulecache.Cache) *Store {
	return &Store{Pool: pool, Cache: cache}
}

// ListActive returns the active fee rules for the tenant in config order.
func (s *Store) ListActive(ctx context.Context, tenantID string) ([]Rule, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("fee store not configured")
	}
	var cached []Rule
	if hit, err := s.Cache.Get(ctx, tenantID, activeRulesCacheKey, &cached); err == nil && hit {
		return cached, nil
	}
	rules, err := s.list(ctx, tenantID, true, 0, 0)
	if err != nil {
		return nil, err
	}
	_ = s.Cache.Set(ctx, tenantID, activeRulesCacheKey, rules)
	return rules, nil
}

// List returns a page of fee rules for the tenant regardless of status.
func (s *Store) List(ctx context.Context, tenantID string, limit, offset int32) ([]Rule, error) {
	return s.list(ctx, tenantID, false, limit, offset)
}

func (s *Store) list(ctx context.Context, tenantID string, activeOnly bool, limit, offset int32) ([]Rule, error) {
	query := `
		SELECT id, code, name, currency, mode, amount_cents, percent_bps, min_cents, max_cents, applies_when, is_active, created_at, updated_at
		FROM fee_rules
		WHERE tenant_id = $1`
	args := []any{tenantID}
	if activeOnly {
		query += ` AND is_active ORDER BY created_at, code`
	} else {
		query += ` ORDER BY created_at, code LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Rule, 0, 8)
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Create inserts a fee rule for the tenant.
func (s *Store) Create(ctx context.Context, tenantID string, r Rule) (Rule, error) {
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO fee_rules (tenant_id, code, name, currency, mode, amount_cents, percent_bps, min_cents, max_cents, applies_when, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, code, name, currency, mode, amount_cents, percent_bps, min_cents, max_cents, applies_when, is_active, created_at, updated_at`,
		tenantID, strings.TrimSpace(r.Code), r.Name, strings.ToUpper(r.Currency), r.Mode,
		r.AmountCents, r.PercentBps, r.MinCents, r.MaxCents, conditionsToStrings(r.AppliesWhen), r.IsActive,
	)
	out, err := scanRule(row)
	if err == nil {
		_ = s.Cache.Invalidate(ctx, tenantID, activeRulesCacheKey)
	}
	return out, err
}

// Update mutates an existing fee rule identified by code.
func (s *Store) Update(ctx context.Context, tenantID string, r Rule) (Rule, error) {
	row := s.Pool.QueryRow(ctx, `
		UPDATE fee_rules
		SET name = $3, currency = $4, mode = $5, amount_cents = $6, percent_bps = $7, min_cents = $8, max_cents = $9, applies_when = $10, is_active = $11, updated_at = now()
		WHERE tenant_id = $1 AND code = $2
		RETURNING id, code, name, currency, mode, amount_cents, percent_bps, min_cents, max_cents, applies_when, is_active, created_at, updated_at`,
		tenantID, strings.TrimSpace(r.Code), r.Name, strings.ToUpper(r.Currency), r.Mode,
		r.AmountCents, r.PercentBps, r.MinCents, r.MaxCents, conditionsToStrings(r.AppliesWhen), r.IsActive,
	)
	out, err := scanRule(row)
	if err == nil {
		_ = s.Cache.Invalidate(ctx, tenantID, activeRulesCacheKey)
	}
	return out, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (Rule, error) {
	var (
		r    Rule
		when []string
	)
	err := row.Scan(&r.ID, &r.Code, &r.Name, &r.Currency, &r.Mode, &r.AmountCents, &r.PercentBps, &r.MinCents, &r.MaxCents, &when, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rule{}, pgx.ErrNoRows
		}
		return Rule{}, err
	}
	// ParseCondition guards ingestion; values from out-of-band writes are kept
	// verbatim and simply never match in the evaluator.
	r.AppliesWhen = make([]Condition, 0, len(when))
	for _, raw := range when {
		r.AppliesWhen = append(r.AppliesWhen, Condition(raw))
	}
	return r, nil
}

func conditionsToStrings(conds []Condition) []string {
	out := make([]string, 0, len(conds))
	for _, c := range conds {
		out = append(out, string(c))
	}
	return out
}
