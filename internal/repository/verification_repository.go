package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/herbtrace/herbtrace-api/internal/dto"
	"github.com/herbtrace/herbtrace-api/internal/models"
)

// VerificationRepository persists verification history events.
type VerificationRepository struct {
	db *sqlx.DB
}

// NewVerificationRepository constructs a new repository.
func NewVerificationRepository(db *sqlx.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// ExistsSince reports whether the user already has an event for the
// batch at or after the given instant (start of the current calendar
// day for the throttling policy).
func (r *VerificationRepository) ExistsSince(ctx context.Context, userID, batchID string, since time.Time) (bool, error) {
	query := `SELECT EXISTS (
SELECT 1 FROM verification_history WHERE user_id = $1 AND batch_id = $2 AND verified_at >= $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, batchID, since); err != nil {
		return false, fmt.Errorf("check verification history: %w", err)
	}
	return exists, nil
}

// Insert appends a verification event. No uniqueness is enforced at the
// storage level: the same-day duplicate suppression is a best-effort
// pre-check in the service, and a race losing it only produces an extra
// history row.
func (r *VerificationRepository) Insert(ctx context.Context, event *models.VerificationEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.VerifiedAt.IsZero() {
		event.VerifiedAt = time.Now().UTC()
	}
	query := `INSERT INTO verification_history (id, user_id, batch_id, status, verified_at)
VALUES (:id, :user_id, :batch_id, :status, :verified_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("insert verification event: %w", err)
	}
	return nil
}

// ListByUser returns the user's history newest-first, enriched with
// batch details when the batch still exists.
func (r *VerificationRepository) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]dto.VerificationHistoryItem, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	query := fmt.Sprintf(`SELECT vh.id, vh.user_id, vh.batch_id, vh.status, vh.verified_at,
COALESCE(hb.batch_code, '') AS batch_code, COALESCE(hb.herb_name, '') AS herb_name
FROM verification_history vh
LEFT JOIN herb_batches hb ON hb.id = vh.batch_id
WHERE vh.user_id = $1 ORDER BY vh.verified_at DESC LIMIT %d OFFSET %d`, pageSize, offset)
	var items []dto.VerificationHistoryItem
	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, 0, fmt.Errorf("list verification history: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM verification_history WHERE user_id = $1", userID); err != nil {
		return nil, 0, fmt.Errorf("count verification history: %w", err)
	}
	return items, total, nil
}

// StatsByUser returns the user's total event count and how many of them
// were authentic.
func (r *VerificationRepository) StatsByUser(ctx context.Context, userID string) (total int, authentic int, err error) {
	query := `SELECT COUNT(*) AS total,
COALESCE(SUM(CASE WHEN status = 'authentic' THEN 1 ELSE 0 END), 0) AS authentic
FROM verification_history WHERE user_id = $1`
	row := r.db.QueryRowxContext(ctx, query, userID)
	if err := row.Scan(&total, &authentic); err != nil {
		return 0, 0, fmt.Errorf("verification stats: %w", err)
	}
	return total, authentic, nil
}
