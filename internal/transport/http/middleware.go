package httptransport

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	tenantmodels "github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/tenant/models"
	dErrors "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain-errors"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/platform/httputil"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/requestcontext"
)

type tenantKey struct{}

// TenantFrom returns the authenticated tenant set by the auth middleware.
func TenantFrom(ctx context.Context) *tenantmodels.Tenant {
	tenant, _ := ctx.Value(tenantKey{}).(*tenantmodels.Tenant)
	return tenant
}

// CredentialResolver authenticates an opaque API credential.
type CredentialResolver interface {
	ResolveCredential(ctx context.Context, apiKey string) (*tenantmodels.Tenant, error)
}

// RequestMetadata assigns a correlation id and captures client metadata into
// the request context.
func RequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithClientMetadata(ctx, clientIP(r), r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TenantAuth resolves the caller's credential and stores the typed tenant in
// the request context. The credential travels in X-API-Key or as a bearer
// token.
func TenantAuth(resolver CredentialResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
					apiKey = strings.TrimPrefix(auth, "Bearer ")
				}
			}
			if apiKey == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "credential required"))
				return
			}

			tenant, err := resolver.ResolveCredential(r.Context(), apiKey)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), tenantKey{}, tenant)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
