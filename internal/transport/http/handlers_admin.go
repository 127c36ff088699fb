package httptransport

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	tenantmodels "github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/tenant/models"
	dErrors "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain-errors"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/platform/httputil"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/requestcontext"
)

// TenantProvisioner creates tenants and hands back the one-time raw API key.
type TenantProvisioner interface {
	CreateTenant(ctx context.Context, name string) (*tenantmodels.Tenant, string, error)
}

// AdminHandler exposes tenant provisioning behind a static operator token.
// This is bootstrap tooling, not an operator console.
type AdminHandler struct {
	tenants TenantProvisioner
	token   string
	logger  *slog.Logger
}

func NewAdminHandler(tenants TenantProvisioner, token string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{tenants: tenants, token: token, logger: logger}
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Post("/admin/tenants", h.handleCreateTenant)
}

type createTenantRequest struct {
	Name string `json:"name"`
}

type createTenantResponse struct {
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
	// APIKey is returned exactly once; only its hash is stored.
	APIKey string `json:"api_key"`
}

func (h *AdminHandler) handleCreateTenant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	provided := r.Header.Get("X-Admin-Token")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.token)) != 1 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid admin token"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[createTenantRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if !govalidator.StringLength(req.Name, "3", "255") {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "tenant name must be 3-255 characters"))
		return
	}

	tenant, apiKey, err := h.tenants.CreateTenant(ctx, req.Name)
	if err != nil {
		h.logger.ErrorContext(ctx, "tenant provisioning failed", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "tenant provisioned",
		"tenant_id", tenant.ID,
		"name", tenant.Name,
		"request_id", requestID,
	)
	httputil.WriteJSON(w, http.StatusCreated, createTenantResponse{
		TenantID: tenant.ID.String(),
		Name:     tenant.Name,
		APIKey:   apiKey,
	})
}
