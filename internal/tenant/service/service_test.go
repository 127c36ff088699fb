package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/tenant/models"
	tenantstore "github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/tenant/store/tenant"
	dErrors "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain-errors"
)

func newService(t *testing.T) (*TenantService, *models.Tenant, string) {
	t.Helper()
	store := tenantstore.NewInMemory()
	svc := NewTenantService(store)

	tenant, apiKey, err := svc.CreateTenant(context.Background(), "Acme Lending")
	require.NoError(t, err)
	require.NotEmpty(t, apiKey)
	return svc, tenant, apiKey
}

func TestResolveCredential(t *testing.T) {
	t.Run("resolves active tenant by its API key", func(t *testing.T) {
		svc, tenant, apiKey := newService(t)

		resolved, err := svc.ResolveCredential(context.Background(), apiKey)
		require.NoError(t, err)
		assert.Equal(t, tenant.ID, resolved.ID)
	})

	t.Run("rejects unknown credential as unauthorized", func(t *testing.T) {
		svc, _, _ := newService(t)

		_, err := svc.ResolveCredential(context.Background(), "no-such-key")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects empty credential", func(t *testing.T) {
		svc, _, _ := newService(t)

		_, err := svc.ResolveCredential(context.Background(), "")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("suspended tenant fails exactly like a wrong key", func(t *testing.T) {
		store := tenantstore.NewInMemory()
		svc := NewTenantService(store)
		_, apiKey, err := svc.CreateTenant(context.Background(), "Suspended Org")
		require.NoError(t, err)

		resolved, err := svc.ResolveCredential(context.Background(), apiKey)
		require.NoError(t, err)

		// Flip status out-of-band, as a platform operator would.
		resolved.Status = models.TenantStatusSuspended
		suspendedStore := tenantstore.NewInMemory()
		require.NoError(t, suspendedStore.Create(context.Background(), resolved))
		svc = NewTenantService(suspendedStore)

		_, err = svc.ResolveCredential(context.Background(), apiKey)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Equal(t, "invalid credential", dErrors.MessageOf(err))
	})

	t.Run("trial tenant may authenticate", func(t *testing.T) {
		store := tenantstore.NewInMemory()
		svc := NewTenantService(store)
		tenant, apiKey, err := svc.CreateTenant(context.Background(), "Trial Org")
		require.NoError(t, err)

		tenant.Status = models.TenantStatusTrial
		trialStore := tenantstore.NewInMemory()
		require.NoError(t, trialStore.Create(context.Background(), tenant))

		resolved, err := NewTenantService(trialStore).ResolveCredential(context.Background(), apiKey)
		require.NoError(t, err)
		assert.Equal(t, models.TenantStatusTrial, resolved.Status)
	})
}
