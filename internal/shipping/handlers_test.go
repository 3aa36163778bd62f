package shipping

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
	body := `{"currency":"EUR","calc":"flat","flatPriceCents":500}`
	r := httptest.NewRequest(http.MethodPut, "/api/v1/admin/shipping-methods/express", strings.NewReader(body))
	m, err := h.decode(r, "express")
	require.NoError(t, err)
	require.Equal(t, "express", m.Code)
}
