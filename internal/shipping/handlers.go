package shipping

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

// Handler exposes administrative shipping method endpoints.
type Handler struct {
	Store    *Store
	Validate *validator.Validate
}

type methodPayload struct {
	Code           string     `json:"code" validate:"required"`
	Currency       string     `json:"currency" validate:"required,len=3"`
	Calc           string     `json:"calc" validate:"required"`
	FlatPriceCents int64      `json:"flatPriceCents" validate:"gte=0"`
	FreeOverCents  *int64     `json:"freeOverCents" validate:"omitempty,gte=0"`
	Table          []TableRow `json:"table"`
	IsActive       *bool      `json:"isActive"`
}

// Create inserts a new shipping method.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenant.From(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "TENANT_REQUIRED", "tenant could not be resolved", nil)
		return
	}
	m, err := h.decode(r, "")
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	created, err := h.Store.Create(r.Context(), tenantID, m)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			common.JSONError(w, http.StatusConflict, "CONFLICT", "shipping method code already exists", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create shipping method", nil)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// Update mutates an existing shipping method identified by code.
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
	m, err := h.decode(r, code)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	updated, err := h.Store.Update(r.Context(), tenantID, m)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "shipping method not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to update shipping method", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": updated})
}

// List returns a page of shipping methods for the tenant.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenant.From(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "TENANT_REQUIRED", "tenant could not be resolved", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 50)
	items, err := h.Store.List(r.Context(), tenantID, int32(perPage), int32((page-1)*perPage))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list shipping methods", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       items,
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: len(items)},
	})
}

// decode parses and validates a shipping method payload. A non-empty code
// comes from the URL param and takes precedence over any code in the body.
func (h *Handler) decode(r *http.Request, code string) (Method, error) {
	var payload methodPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return Method{}, errors.New("invalid payload")
	}
	if code != "" {
		payload.Code = code
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			return Method{}, err
		}
	}
	calc := Calc(strings.TrimSpace(payload.Calc))
	if !calc.Valid() {
		return Method{}, errors.New("calc must be one of flat, free_over, table")
	}
	active := true
	if payload.IsActive != nil {
		active = *payload.IsActive
	}
	return Method{
		Code:           payload.Code,
		Currency:       payload.Currency,
		Calc:           calc,
		FlatPriceCents: payload.FlatPriceCents,
		FreeOverCents:  payload.FreeOverCents,
		Table:          payload.Table,
		IsActive:       active,
	}, nil
}
