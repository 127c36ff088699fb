package cache

import (
	"context"
	"log/slog"
	"time"

	platformredis "github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/platform/redis"
	id "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain"
)

// Redis caches credential-fingerprint to tenant-id mappings.
// Only the mapping is cached; bcrypt verification is never skipped, so a stale
// or poisoned entry cannot authenticate a wrong key.
type Redis struct {
	client *platformredis.Client
	logger *slog.Logger
}

func NewRedis(client *platformredis.Client, logger *slog.Logger) *Redis {
	return &Redis{client: client, logger: logger}
}

func key(fingerprint string) string {
	return "kyc:tenant:fp:" + fingerprint
}

func (c *Redis) GetTenantID(ctx context.Context, fingerprint string) (id.TenantID, bool) {
	raw, err := c.client.Get(ctx, key(fingerprint)).Result()
	if err != nil {
		return id.TenantID{}, false
	}
	tenantID, err := id.ParseTenantID(raw)
	if err != nil {
		return id.TenantID{}, false
	}
	return tenantID, true
}

func (c *Redis) PutTenantID(ctx context.Context, fingerprint string, tenantID id.TenantID, ttl time.Duration) {
	if err := c.client.Set(ctx, key(fingerprint), tenantID.String(), ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "tenant resolution cache write failed", "error", err)
	}
}
