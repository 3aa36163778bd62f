package coupon

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	validator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestDecodeUpdateWithoutBodyCode(t *testing.T) {
	t.Parallel()

	h := &Handler{Validate: validator.New()}
	r := httptest.NewRequest(http.MethodPut, "/api/v1/admin/coupons/SAVE10", strings.NewReader(`{"discountBps":500}`))
	payload, err := h.decode(r, "SAVE10")
	require.NoError(t, err)
	require.Equal(t, "SAVE10", payload.Code)
}

func TestDecodeCreateRequiresCode(t *testing.T) {
	t.Parallel()

	h := &Handler{Validate: validator.New()}
	r := httptest.NewRequest(http.MethodPost, "/api/v1/admin/coupons", strings.NewReader(`{"discountBps":500}`))
	_, err := h.decode(r, "")
	require.Error(t, err)
}
