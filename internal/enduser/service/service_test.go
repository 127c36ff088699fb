package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	enduserstore "github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/enduser/store/enduser"
	id "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain"
	dErrors "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain-errors"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/requestcontext"
)

const testDomain = "placeholder.test"

func TestResolveOrCreate(t *testing.T) {
	tenantID := id.NewTenantID()

	t.Run("creates on first use and is idempotent on the second", func(t *testing.T) {
		r := NewResolver(enduserstore.NewInMemory(), testDomain)

		first, err := r.ResolveOrCreate(context.Background(), tenantID, "cust-1", "", "")
		require.NoError(t, err)

		second, err := r.ResolveOrCreate(context.Background(), tenantID, "cust-1", "", "")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("generates placeholder email from the external identifier", func(t *testing.T) {
		r := NewResolver(enduserstore.NewInMemory(), testDomain)

		user, err := r.ResolveOrCreate(context.Background(), tenantID, "customer-42-very-long", "", "")
		require.NoError(t, err)
		assert.Equal(t, "user-customer@"+testDomain, user.Email)
	})

	t.Run("short external identifiers are used whole", func(t *testing.T) {
		r := NewResolver(enduserstore.NewInMemory(), testDomain)

		user, err := r.ResolveOrCreate(context.Background(), tenantID, "c1", "", "")
		require.NoError(t, err)
		assert.Equal(t, "user-c1@"+testDomain, user.Email)
	})

	t.Run("supplied contact fields win over placeholders", func(t *testing.T) {
		r := NewResolver(enduserstore.NewInMemory(), testDomain)

		user, err := r.ResolveOrCreate(context.Background(), tenantID, "cust-2", "real@example.com", "+15550001111")
		require.NoError(t, err)
		assert.Equal(t, "real@example.com", user.Email)
		assert.Equal(t, "+15550001111", user.Phone)
	})

	t.Run("placeholder phone carries the prefix and timestamp digits", func(t *testing.T) {
		r := NewResolver(enduserstore.NewInMemory(), testDomain)

		ctx := requestcontext.WithTime(context.Background(), time.Unix(0, 1234567890123456789))
		user, err := r.ResolveOrCreate(ctx, tenantID, "cust-3", "", "")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(user.Phone, "+91"))
		assert.Len(t, user.Phone, len("+91")+7+3)
	})

	t.Run("distinct tenants own distinct users for the same external id", func(t *testing.T) {
		r := NewResolver(enduserstore.NewInMemory(), testDomain)
		otherTenant := id.NewTenantID()

		a, err := r.ResolveOrCreate(context.Background(), tenantID, "shared-ext", "", "")
		require.NoError(t, err)
		b, err := r.ResolveOrCreate(context.Background(), otherTenant, "shared-ext", "", "")
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})
}

func TestResolve(t *testing.T) {
	tenantID := id.NewTenantID()

	t.Run("fails with UserNotFound before session initiation", func(t *testing.T) {
		r := NewResolver(enduserstore.NewInMemory(), testDomain)

		_, err := r.Resolve(context.Background(), tenantID, "never-initiated")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("finds a previously initiated user without creating", func(t *testing.T) {
		r := NewResolver(enduserstore.NewInMemory(), testDomain)

		created, err := r.ResolveOrCreate(context.Background(), tenantID, "cust-9", "", "")
		require.NoError(t, err)

		found, err := r.Resolve(context.Background(), tenantID, "cust-9")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("never resolves across tenants", func(t *testing.T) {
		r := NewResolver(enduserstore.NewInMemory(), testDomain)

		_, err := r.ResolveOrCreate(context.Background(), tenantID, "cust-10", "", "")
		require.NoError(t, err)

		_, err = r.Resolve(context.Background(), id.NewTenantID(), "cust-10")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
