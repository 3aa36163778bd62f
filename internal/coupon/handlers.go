package coupon

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/noah-isme/backend-niaga/internal/common"
	"github.com/noah-isme/backend-niaga/internal/tenant"
)

// Handler exposes administrative coupon management endpoints.
type Handler struct {
	Store    *Store
	Validate *validator.Validate
}

type couponPayload struct {
	Code        string     `json:"code" validate:"required"`
	DiscountBps int32      `json:"discountBps" validate:"gte=0,lte=10000"`
	IsActive    *bool      `json:"isActive"`
	ExpiresAt   *time.Time `json:"expiresAt"`
}

// Create inserts a new coupon rule.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenant.From(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "TENANT_REQUIRED", "tenant could not be resolved", nil)
		return
	}
	payload, err := h.decode(r, "")
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	created, err := h.Store.Create(r.Context(), tenantID, payloadToCoupon(payload))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			common.JSONError(w, http.StatusConflict, "CONFLICT", "coupon code already exists", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create coupon", nil)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// Update mutates an existing coupon identified by code.
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
	payload, err := h.decode(r, code)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	updated, err := h.Store.Update(r.Context(), tenantID, payloadToCoupon(payload))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "coupon not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to update coupon", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": updated})
}

// List returns a page of coupons for the tenant.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenant.From(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "TENANT_REQUIRED", "tenant could not be resolved", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 50)
	items, err := h.Store.List(r.Context(), tenantID, int32(perPage), int32((page-1)*perPage))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list coupons", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       items,
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: len(items)},
	})
}

// decode parses and validates a coupon payload. A non-empty code comes from
// the URL param and takes precedence over any code in the body.
func (h *Handler) decode(r *http.Request, code string) (couponPayload, error) {
	var payload couponPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return couponPayload{}, errors.New("invalid payload")
	}
	if code != "" {
		payload.Code = code
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			return couponPayload{}, err
		}
	}
	return payload, nil
}

func payloadToCoupon(p couponPayload) Coupon {
	active := true
	if p.IsActive != nil {
		active = *p.IsActive
	}
	return Coupon{
		Code:        p.Code,
		DiscountBps: p.DiscountBps,
		IsActive:    active,
		ExpiresAt:   p.ExpiresAt,
	}
}
