package enduser

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/enduser/models"
	id "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/platform/sentinel"
)

// PostgresStore persists end users in PostgreSQL. Uniqueness of
// (tenant_id, external_id) and (tenant_id, phone) is enforced by the schema.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, user *models.EndUser) error {
	query := `
		INSERT INTO end_users (id, tenant_id, external_id, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(user.ID), uuid.UUID(user.TenantID), user.ExternalID,
		user.Email, user.Phone, user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create end user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByExternalID(ctx context.Context, tenantID id.TenantID, externalID string) (*models.EndUser, error) {
	var (
		user        models.EndUser
		rawID       uuid.UUID
		rawTenantID uuid.UUID
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, external_id, email, phone, created_at
		FROM end_users WHERE tenant_id = $1 AND external_id = $2
	`, uuid.UUID(tenantID), externalID).Scan(
		&rawID, &rawTenantID, &user.ExternalID, &user.Email, &user.Phone, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find end user: %w", err)
	}
	user.ID = id.EndUserID(rawID)
	user.TenantID = id.TenantID(rawTenantID)
	return &user, nil
}
