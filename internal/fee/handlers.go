package fee

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/noah-isme/backend-niaga/internal/common"
	"github.com/noah-isme/backend-niaga/internal/tenant"
)

// Handler exposes administrative fee rule endpoints.
type Handler struct {
	Store    *Store
	Validate *validator.Validate
}

type rulePayload struct {
	Code        string   `json:"code" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Currency    string   `json:"currency" validate:"required,len=3"`
	Mode        string   `json:"mode" validate:"required"`
	AmountCents int64    `json:"amountCents" validate:"gte=0"`
	PercentBps  int32    `json:"percentBps" validate:"gte=0,lte=10000"`
	MinCents    *int64   `json:"minCents"`
	MaxCents    *int64   `json:"maxCents"`
	AppliesWhen []string `json:"appliesWhen"`
	IsActive    *bool    `json:"isActive"`
}

// Create inserts a new fee rule.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenant.From(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "TENANT_REQUIRED", "tenant could not be resolved", nil)
		return
	}
	rule, err := h.decode(r, "")
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	created, err := h.Store.Create(r.Context(), tenantID, rule)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			common.JSONError(w, http.StatusConflict, "CONFLICT", "fee rule code already exists", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create fee rule", nil)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// Update mutates an existing fee rule identified by code.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenant.From(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "TENANT_REQUIRED", "tenant could not be resolved", nil)
		return
	}
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "code is required", nil)
		return
	}
	rule, err := h.decode(r, code)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	updated, err := h.Store.Update(r.Context(), tenantID, rule)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "fee rule not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to update fee rule", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": updated})
}

// List returns a page of fee rules for the tenant.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenant.From(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "TENANT_REQUIRED", "tenant could not be resolved", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 50)
	items, err := h.Store.List(r.Context(), tenantID, int32(perPage), int32((page-1)*perPage))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list fee rules", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       items,
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: len(items)},
	})
}

// decode parses and validates a fee rule payload. A non-empty code comes
// from the URL param and takes precedence over any code in the body.
func (h *Handler) decode(r *http.Request, code string) (Rule, error) {
	var payload rulePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return Rule{}, errors.New("invalid payload")
	}
	if code != "" {
		payload.Code = code
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			return Rule{}, err
		}
	}
	mode := Mode(strings.TrimSpace(payload.Mode))
	if !mode.Valid() {
		return Rule{}, errors.New("mode must be fixed or percent")
	}
	conds := make([]Condition, 0, len(payload.AppliesWhen))
	for _, raw := range payload.AppliesWhen {
		c, err := ParseCondition(strings.TrimSpace(raw))
		if err != nil {
			return Rule{}, err
		}
		conds = append(conds, c)
	}
	active := true
	if payload.IsActive != nil {
		active = *payload.IsActive
	}
	return Rule{
		Code:        payload.Code,
		Name:        payload.Name,
		Currency:    payload.Currency,
		Mode:        mode,
		AmountCents: payload.AmountCents,
		PercentBps:  payload.PercentBps,
		MinCents:    payload.MinCents,
		MaxCents:    payload.MaxCents,
		AppliesWhen: conds,
		IsActive:    active,
	}, nil
}
