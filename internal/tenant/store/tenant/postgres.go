package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/tenant/models"
	id "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/platform/sentinel"
)

// PostgresStore persists tenants in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, status, credential_fingerprint, credential_hash, allowed_origins, webhook_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(tenant.ID), tenant.Name, string(tenant.Status),
		tenant.CredentialFingerprint, tenant.CredentialHash,
		pq.Array(tenant.AllowedOrigins), tenant.WebhookURL,
		tenant.CreatedAt, tenant.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create tenant: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	return s.scanOne(ctx, `
		SELECT id, name, status, credential_fingerprint, credential_hash, allowed_origins, webhook_url, created_at, updated_at
		FROM tenants WHERE id = $1
	`, uuid.UUID(tenantID))
}

func (s *PostgresStore) FindByCredentialFingerprint(ctx context.Context, fingerprint string) (*models.Tenant, error) {
	return s.scanOne(ctx, `
		SELECT id, name, status, credential_fingerprint, credential_hash, allowed_origins, webhook_url, created_at, updated_at
		FROM tenants WHERE credential_fingerprint = $1
	`, fingerprint)
}

func (s *PostgresStore) scanOne(ctx context.Context, query string, arg any) (*models.Tenant, error) {
	var (
		tenant  models.Tenant
		rawID   uuid.UUID
		status  string
		origins pq.StringArray
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&rawID, &tenant.Name, &status,
		&tenant.CredentialFingerprint, &tenant.CredentialHash,
		&origins, &tenant.WebhookURL,
		&tenant.CreatedAt, &tenant.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find tenant: %w", err)
	}
	tenant.ID = id.TenantID(rawID)
	tenant.Status = models.TenantStatus(status)
	tenant.AllowedOrigins = origins
	return &tenant, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
