package tax

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/backend-niaga/internal/common"
	"github.com/noah-isme/backend-niaga/internal/tenant"
)

// Handler exposes administrative tax rule endpoints.
type Handler struct {
	Store    *Store
	Validate *validator.Validate
}

type recordPayload struct {
	Country       string     `json:"country" validate:"required,len=2"`
	State         string     `json:"state"`
	City          string     `json:"city"`
	Postal        string     `json:"postal"`
	TaxClass      string     `json:"taxClass"`
	RateBps       int32      `json:"rateBps" validate:"gte=0,lte=10000"`
	Inclusive     bool       `json:"inclusive"`
	EffectiveFrom *time.Time `json:"effectiveFrom"`
	EffectiveTo   *time.Time `json:"effectiveTo"`
	IsActive      *bool      `json:"isActive"`
}

// Create inserts a new tax rule.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenant.From(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "TENANT_REQUIRED", "tenant could not be resolved", nil)
		return
	}
	rec, err := h.decode(r)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	created, err := h.Store.Create(r.Context(), tenantID, rec)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create tax rule", nil)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// Update mutates an existing tax rule identified by id.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenant.From(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "TENANT_REQUIRED", "tenant could not be resolved", nil)
		return
	}
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid tax rule id", nil)
		return
	}
	rec, err := h.decode(r)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	rec.ID = id
	updated, err := h.Store.Update(r.Context(), tenantID, rec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "tax rule not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to update tax rule", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": updated})
}

// List returns a page of tax rules for the tenant.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenant.From(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "TENANT_REQUIRED", "tenant could not be resolved", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 50)
	items, err := h.Store.List(r.Context(), tenantID, int32(perPage), int32((page-1)*perPage))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list tax rules", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       items,
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: len(items)},
	})
}

func (h *Handler) decode(r *http.Request) (Record, error) {
	var payload recordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return Record{}, errors.New("invalid payload")
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			return Record{}, err
		}
	}
	rec := Record{
		Country:   payload.Country,
		State:     payload.State,
		City:      payload.City,
		Postal:    payload.Postal,
		TaxClass:  payload.TaxClass,
		RateBps:   payload.RateBps,
		Inclusive: payload.Inclusive,
		IsActive:  true,
	}
	if payload.EffectiveFrom != nil {
		rec.EffectiveFrom = *payload.EffectiveFrom
	}
	rec.EffectiveTo = payload.EffectiveTo
	if payload.IsActive != nil {
		rec.IsActive = *payload.IsActive
	}
	return rec, nil
}
