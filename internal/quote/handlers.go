// Package quote exposes the pricing quote endpoint.
package quote

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-niaga/internal/common"
	"github.com/noah-isme/backend-niaga/internal/obs"
	"github.com/noah-isme/backend-niaga/internal/pricing"
	"github.com/noah-isme/backend-niaga/internal/tax"
	"github.com/noah-isme/backend-niaga/internal/tenant"
)

// Handler computes pricing quotes over HTTP.
type Handler struct {
	Engine   *pricing.Engine
	Validate *validator.Validate
	Logger   zerolog.Logger
}

type itemPayload struct {
	ProductID       string            `json:"productId" validate:"required"`
	VariantID       *string           `json:"variantId"`
	Qty             int32             `json:"qty" validate:"gte=1"`
	PriceCents      int64             `json:"priceCents" validate:"gte=0"`
	OfferPriceCents *int64            `json:"offerPriceCents"`
	Currency        string            `json:"currency" validate:"required,len=3"`
	WeightGrams     int64             `json:"weightGrams" validate:"gte=0"`
	Attributes      map[string]string `json:"attributes"`
}

type addressPayload struct {
	Country string `json:"country" validate:"required,len=2"`
	State   string `json:"state"`
	City    string `json:"city"`
	Postal  string `json:"postal"`
}

type quotePayload struct {
	Currency            string         `json:"currency" validate:"required,len=3"`
	Items               []itemPayload  `json:"items" validate:"required,min=1,dive"`
	ShippingMethodCode  string         `json:"shippingMethodCode" validate:"required"`
	ShippingAddress     addressPayload `json:"shippingAddress" validate:"required"`
	CouponCode          string         `json:"couponCode"`
	FeeFlags            []string       `json:"feeFlags"`
	WeightGramsOverride *int64         `json:"weightGramsOverride"`
}

// Compute handles POST /pricing/quote.
func (h *Handler) Compute(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenant.From(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "TENANT_REQUIRED", "tenant could not be resolved", nil)
		return
	}
	var payload quotePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
	}

	start := time.Now()
	out, err := h.Engine.Quote(r.Context(), tenantID, toInput(payload))
	result := "ok"
	if err != nil {
		result = "error"
	}
	if obs.QuoteTotal != nil {
		obs.QuoteTotal.WithLabelValues(result).Inc()
	}
	if obs.QuoteDuration != nil {
		obs.QuoteDuration.WithLabelValues(result).Observe(obs.DurationMillis(time.Since(start)))
	}
	if err != nil {
		h.renderError(w, r, tenantID, err)
		return
	}
	if payload.CouponCode != "" && obs.QuoteCouponTotal != nil {
		couponResult := "skipped"
		if out.Snapshots.Coupon != nil {
			couponResult = "applied"
		}
		obs.QuoteCouponTotal.WithLabelValues(couponResult).Inc()
	}
	if obs.QuoteFeeTotal != nil {
		for _, f := range out.Fees {
			obs.QuoteFeeTotal.WithLabelValues(f.Code).Inc()
		}
	}
	common.JSON(w, http.StatusOK, map[string]any{"success": true, "data": out})
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, tenantID string, err error) {
	appErr := toAppError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		h.Logger.Error().Err(err).Str("tenant_id", tenantID).Str("path", r.URL.Path).Msg("quote failed")
	}
	common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
}

func toAppError(err error) *common.AppError {
	switch {
	case errors.Is(err, pricing.ErrItemsRequired):
		return common.NewAppError("ITEMS_REQUIRED", "at least one item is required", http.StatusBadRequest, err)
	case errors.Is(err, pricing.ErrCurrencyMismatch):
		return common.NewAppError("CURRENCY_MISMATCH", "item currency differs from quote currency", http.StatusBadRequest, err)
	case errors.Is(err, pricing.ErrShippingMethodNotFound):
		return common.NewAppError("SHIPPING_METHOD_NOT_FOUND", "shipping method not found", http.StatusNotFound, err)
	case errors.Is(err, pricing.ErrShippingCurrencyMismatch):
		return common.NewAppError("SHIPPING_CURRENCY_MISMATCH", "shipping method currency differs from quote currency", http.StatusBadRequest, err)
	default:
		return common.NewAppError("INTERNAL", "failed to compute quote", http.StatusInternalServerError, err)
	}
}

func toInput(p quotePayload) pricing.Input {
	items := make([]pricing.Item, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, pricing.Item{
			ProductID:       it.ProductID,
			VariantID:       it.VariantID,
			Qty:             it.Qty,
			PriceCents:      it.PriceCents,
			OfferPriceCents: it.OfferPriceCents,
			Currency:        it.Currency,
			WeightGrams:     it.WeightGrams,
			Attributes:      it.Attributes,
		})
	}
	return pricing.Input{
		Currency:           p.Currency,
		Items:              items,
		ShippingMethodCode: p.ShippingMethodCode,
		ShippingAddress: tax.Jurisdiction{
			Country: p.ShippingAddress.Country,
			State:   p.ShippingAddress.State,
			City:    p.ShippingAddress.City,
			Postal:  p.ShippingAddress.Postal,
		},
		CouponCode:          p.CouponCode,
		FeeFlags:            p.FeeFlags,
		WeightGramsOverride: p.WeightGramsOverride,
		TaxClass:            tax.ClassStandard,
	}
}
