package fee

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
	body := `{"name":"Cash on delivery","currency":"EUR","mode":"fixed","amountCents":300,"appliesWhen":["cod"]}`
	r := httptest.NewRequest(http.MethodPut, "/api/v1/admin/fee-rules/cod", strings.NewReader(body))
	rule, err := h.decode(r, "cod")
	require.NoError(t, err)
	require.Equal(t, "cod", rule.Code)
}
