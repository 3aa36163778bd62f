package tenant

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolverHeaderWins(t *testing.T) {
	t.Parallel()

	r := NewResolver("", "shop.example.com", "")
	req := httptest.NewRequest(http.MethodPost, "http://acme.shop.example.com/pricing/quote", nil)
	req.Header.Set("X-Tenant-ID", "globex")
	require.Equal(t, "globex", r.Resolve(req))
}

func TestResolverSubdomain(t *testing.T) {
	t.Parallel()

	r := NewResolver("X-Tenant-ID", "shop.example.com", "")
	req := httptest.NewRequest(http.MethodGet, "http://acme.shop.example.com/", nil)
	require.Equal(t, "acme", r.Resolve(req))

	// hosts outside the root domain resolve nothing
	req = httptest.NewRequest(http.MethodGet, "http://acme.other.com/", nil)
	require.Empty(t, r.Resolve(req))

	req = httptest.NewRequest(http.MethodGet, "http://shop.example.com/", nil)
	require.Empty(t, r.Resolve(req))
}

func TestMiddlewareDefaultTenant(t *testing.T) {
	t.Parallel()

	r := NewResolver("X-Tenant-ID", "", "default")
	var got string
	h := r.Middleware(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		got, _ = From(req.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://localhost:8080/", nil))
	require.Equal(t, "default", got)
}

func TestPrefixKey(t *testing.T) {
	t.Parallel()

	require.Equal(t, "acme:rules:feerules:active", PrefixKey("acme", "rules:feerules:active"))
	require.Equal(t, "rules:feerules:active", PrefixKey("", "rules:feerules:active"))
}
