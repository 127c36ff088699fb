// Package security records cross-tenant access attempts for audit.
package security

import (
	"context"
	"log/slog"

	"github.com/mssola/useragent"

	id "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/requestcontext"
)

// Reporter emits structured security events. Cross-tenant lookups are the
// interesting case: a tenant probing another tenant's submission ids is
// either a misconfigured client or an enumeration attempt, and both need a
// durable trail.
type Reporter struct {
	logger *slog.Logger
}

func NewReporter(logger *slog.Logger) *Reporter {
	return &Reporter{logger: logger}
}

// IsolationViolation logs a cross-tenant access attempt with the client
// metadata carried in ctx. The caller still rejects the request; this only
// records it.
func (r *Reporter) IsolationViolation(ctx context.Context, callerTenantID, ownerTenantID id.TenantID, resource string) {
	rawUA := requestcontext.UserAgent(ctx)
	ua := useragent.New(rawUA)
	browser, version := ua.Browser()

	r.logger.WarnContext(ctx, "tenant isolation violation",
		"event", "security.isolation_violation",
		"caller_tenant_id", callerTenantID,
		"owner_tenant_id", ownerTenantID,
		"resource", resource,
		"request_id", requestcontext.RequestID(ctx),
		"client_ip", requestcontext.ClientIP(ctx),
		"user_agent", rawUA,
		"client_browser", browser+" "+version,
		"client_os", ua.OS(),
		"client_is_bot", ua.Bot(),
	)
}
