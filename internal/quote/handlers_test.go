package quote_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-niaga/internal/coupon"
	"github.com/noah-isme/backend-niaga/internal/fee"
	"github.com/noah-isme/backend-niaga/internal/pricing"
	"github.com/noah-isme/backend-niaga/internal/quote"
	"github.com/noah-isme/backend-niaga/internal/shipping"
	"github.com/noah-isme/backend-niaga/internal/tax"
	"github.com/noah-isme/backend-niaga/internal/tenant"
)

type stubSources struct {
	coupon  *coupon.Coupon
	method  *shipping.Method
	rules   []fee.Rule
	taxRule *tax.Rule
}

func (s *stubSources) FindActive(context.Context, string, string) (*coupon.Coupon, error) {
	return s.coupon, nil
}

func (s *stubSources) FindByCode(context.Context, string, string) (*shipping.Method, error) {
	return s.method, nil
}

func (s *stubSources) ListActive(context.Context, string) ([]fee.Rule, error) {
	return s.rules, nil
}

func (s *stubSources) Resolve(context.Context, string, tax.Jurisdiction, string, time.Time) (*tax.Rule, error) {
	return s.taxRule, nil
}

func newHandler(src *stubSources) *quote.Handler {
	return &quote.Handler{
		Engine: &pricing.Engine{
			Coupons:  src,
			Methods:  src,
			FeeRules: src,
			Taxes:    src,
		},
		Validate: validator.New(),
		Logger:   zerolog.Nop(),
	}
}

func doQuote(t *testing.T, h *quote.Handler, tenantID string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/quote", bytes.NewReader(raw))
	if tenantID != "" {
		req = req.WithContext(tenant.With(req.Context(), tenantID))
	}
	rr := httptest.NewRecorder()
	h.Compute(rr, req)
	return rr
}

func validBody() map[string]any {
	return map[string]any{
		"currency": "EUR",
		"items": []map[string]any{
			{"productId": "p1", "qty": 2, "priceCents": 1000, "currency": "EUR"},
		},
		"shippingMethodCode": "standard",
		"shippingAddress":    map[string]any{"country": "DE"},
	}
}

func TestComputeSuccess(t *testing.T) {
	t.Parallel()

	src := &stubSources{
		method: &shipping.Method{ID: uuid.New(), Code: "standard", Currency: "EUR", Calc: shipping.CalcFlat, FlatPriceCents: 500, IsActive: true},
	}
	rr := doQuote(t, newHandler(src), "acme", validBody())
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Success bool           `json:"success"`
		Data    pricing.Output `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.EqualValues(t, 2000, resp.Data.SubtotalCents)
	require.EqualValues(t, 2500, resp.Data.TotalCents)
}

func TestComputeTenantRequired(t *testing.T) {
	t.Parallel()

	rr := doQuote(t, newHandler(&stubSources{}), "", validBody())
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "TENANT_REQUIRED")
}

func TestComputeValidation(t *testing.T) {
	t.Parallel()

	body := validBody()
	body["items"] = []map[string]any{}
	rr := doQuote(t, newHandler(&stubSources{}), "acme", body)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "VALIDATION_ERROR")
}

func TestComputeCurrencyMismatch(t *testing.T) {
	t.Parallel()

	src := &stubSources{
		method: &shipping.Method{ID: uuid.New(), Code: "standard", Currency: "EUR", Calc: shipping.CalcFlat, IsActive: true},
	}
	body := validBody()
	body["items"] = []map[string]any{
		{"productId": "p1", "qty": 1, "priceCents": 1000, "currency": "USD"},
	}
	rr := doQuote(t, newHandler(src), "acme", body)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "CURRENCY_MISMATCH")
}

func TestComputeShippingMethodNotFound(t *testing.T) {
	t.Parallel()

	rr := doQuote(t, newHandler(&stubSources{}), "acme", validBody())
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Contains(t, rr.Body.String(), "SHIPPING_METHOD_NOT_FOUND")
}

func TestComputeShippingCurrencyMismatch(t *testing.T) {
	t.Parallel()

	src := &stubSources{
		method: &shipping.Method{ID: uuid.New(), Code: "standard", Currency: "USD", Calc: shipping.CalcFlat, IsActive: true},
	}
	rr := doQuote(t, newHandler(src), "acme", validBody())
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "SHIPPING_CURRENCY_MISMATCH")
}
