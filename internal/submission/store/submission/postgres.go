package submission

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/document"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/submission/models"
	id "github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/domain"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/pkg/platform/sentinel"
)

// PostgresStore persists submissions in PostgreSQL. Extracted fields and
// verification scores live in JSONB columns; updates use optimistic
// concurrency on updated_at.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const submissionColumns = `
	id, tenant_id, end_user_id, source,
	pan_card_ref, id_front_ref, id_back_ref, id_combined_ref, live_photo_ref, signature_ref,
	extracted_fields, verification_scores,
	status, rejection_reason,
	reviewed_by, review_note, reviewed_at,
	created_at, updated_at
`

func (s *PostgresStore) Create(ctx context.Context, sub *models.Submission) error {
	fields, scores, err := marshalJSONColumns(sub)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO submissions (` + submissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.UUID(sub.ID), uuid.UUID(sub.TenantID), uuid.UUID(sub.EndUserID), string(sub.Source),
		sub.PANCardRef, sub.IDFrontRef, sub.IDBackRef, sub.IDCombined, sub.LivePhotoRef, sub.SignatureRef,
		fields, scores,
		string(sub.Status), sub.RejectionReason,
		sub.ReviewedBy, sub.ReviewNote, sub.ReviewedAt,
		sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, submissionID id.SubmissionID) (*models.Submission, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+submissionColumns+` FROM submissions WHERE id = $1
	`, uuid.UUID(submissionID))
	return scanSubmission(row)
}

func (s *PostgresStore) FindLatestByEndUser(ctx context.Context, tenantID id.TenantID, endUserID id.EndUserID) (*models.Submission, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+submissionColumns+` FROM submissions
		WHERE tenant_id = $1 AND end_user_id = $2
		ORDER BY created_at DESC LIMIT 1
	`, uuid.UUID(tenantID), uuid.UUID(endUserID))
	return scanSubmission(row)
}

// Update writes sub back only if updated_at is unchanged since the read, then
// stamps the new updated_at. Zero rows affected means either a concurrent
// writer won or the row is gone; the two are distinguished with a follow-up
// lookup.
func (s *PostgresStore) Update(ctx context.Context, sub *models.Submission, now time.Time) error {
	fields, scores, err := marshalJSONColumns(sub)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE submissions SET
			pan_card_ref = $1, id_front_ref = $2, id_back_ref = $3, id_combined_ref = $4,
			live_photo_ref = $5, signature_ref = $6,
			extracted_fields = $7, verification_scores = $8,
			status = $9, rejection_reason = $10,
			reviewed_by = $11, review_note = $12, reviewed_at = $13,
			updated_at = $14
		WHERE id = $15 AND updated_at = $16
	`,
		sub.PANCardRef, sub.IDFrontRef, sub.IDBackRef, sub.IDCombined,
		sub.LivePhotoRef, sub.SignatureRef,
		fields, scores,
		string(sub.Status), sub.RejectionReason,
		sub.ReviewedBy, sub.ReviewNote, sub.ReviewedAt,
		now,
		uuid.UUID(sub.ID), sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	if affected == 0 {
		if _, findErr := s.FindByID(ctx, sub.ID); errors.Is(findErr, sentinel.ErrNotFound) {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrConflict
	}
	sub.UpdatedAt = now
	return nil
}

func marshalJSONColumns(sub *models.Submission) (fields, scores []byte, err error) {
	if sub.ExtractedFields != nil {
		fields, err = json.Marshal(sub.ExtractedFields)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal extracted fields: %w", err)
		}
	}
	if sub.VerificationScores != nil {
		scores, err = json.Marshal(sub.VerificationScores)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal verification scores: %w", err)
		}
	}
	return fields, scores, nil
}

func scanSubmission(row *sql.Row) (*models.Submission, error) {
	var (
		sub            models.Submission
		rawID          uuid.UUID
		rawTenantID    uuid.UUID
		rawEndUserID   uuid.UUID
		source, status string
		fields, scores []byte
	)
	err := row.Scan(
		&rawID, &rawTenantID, &rawEndUserID, &source,
		&sub.PANCardRef, &sub.IDFrontRef, &sub.IDBackRef, &sub.IDCombined, &sub.LivePhotoRef, &sub.SignatureRef,
		&fields, &scores,
		&status, &sub.RejectionReason,
		&sub.ReviewedBy, &sub.ReviewNote, &sub.ReviewedAt,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	sub.ID = id.SubmissionID(rawID)
	sub.TenantID = id.TenantID(rawTenantID)
	sub.EndUserID = id.EndUserID(rawEndUserID)
	sub.Source = document.Source(source)
	sub.Status = models.Status(status)
	if len(fields) > 0 {
		sub.ExtractedFields = &models.ExtractedFields{}
		if err := json.Unmarshal(fields, sub.ExtractedFields); err != nil {
			return nil, fmt.Errorf("decode extracted fields: %w", err)
		}
	}
	if len(scores) > 0 {
		sub.VerificationScores = &models.VerificationScores{}
		if err := json.Unmarshal(scores, sub.VerificationScores); err != nil {
			return nil, fmt.Errorf("decode verification scores: %w", err)
		}
	}
	return &sub, nil
}
