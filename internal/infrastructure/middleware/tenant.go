package middleware

import (
	"net/http"
	"strings"

	"commerce-sync-layer/internal/domain"

	"github.com/rs/zerolog"
)

// TenantHeader carries the caller's authenticated tenant ID, set by the
// upstream API gateway.
const TenantHeader = "X-Tenant-ID"

// TenantID extracts the tenant ID header and binds it to the request
// context. Public routes and the OAuth callback (which carries its tenant in
// the state token) are skipped; every other route without a tenant ID is
// rejected.
func TenantID(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if path == "/health" ||
				path == "/metrics" ||
				path == "/auth/callback" ||
				strings.HasPrefix(path, "/swagger/") {
				next.ServeHTTP(w, r)
				return
			}

			tenantID := r.Header.Get(TenantHeader)
			if tenantID == "" {
				// The connect request may carry its tenant in the body instead.
				if path == "/connect" {
					next.ServeHTTP(w, r)
					return
				}
				logger.Warn().Str("path", path).Msg("Request without tenant ID")
				http.Error(w, TenantHeader+" header is required", http.StatusBadRequest)
				return
			}

			ctx := domain.WithTenantID(r.Context(), tenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
