package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/herbtrace/herbtrace-api/internal/models"
)

// ReviewRepository manages customer reviews for batches.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository constructs a new repository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Upsert writes the caller's review, replacing a previous one for the
// same batch.
func (r *ReviewRepository) Upsert(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if review.CreatedAt.IsZero() {
		review.CreatedAt = now
	}
	review.UpdatedAt = now
	query := `INSERT INTO reviews (id, batch_id, user_id, user_name, rating, comment, created_at, updated_at)
VALUES (:id, :batch_id, :user_id, :user_name, :rating, :comment, :created_at, :updated_at)
ON CONFLICT (batch_id, user_id) DO UPDATE
SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, user_name = EXCLUDED.user_name, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, review); err != nil {
		return fmt.Errorf("upsert review: %w", err)
	}
	return nil
}

// ListByBatch returns reviews for a batch newest-first.
func (r *ReviewRepository) ListByBatch(ctx context.Context, batchID string) ([]models.Review, error) {
	var reviews []models.Review
	query := `SELECT id, batch_id, user_id, user_name, rating, comment, created_at, updated_at
FROM reviews WHERE batch_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &reviews, query, batchID); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// SummaryForBatch aggregates the batch's rating.
func (r *ReviewRepository) SummaryForBatch(ctx context.Context, batchID string) (*models.RatingSummary, error) {
	summary := models.RatingSummary{BatchID: batchID}
	query := "SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM reviews WHERE batch_id = $1"
	row := r.db.QueryRowxContext(ctx, query, batchID)
	if err := row.Scan(&summary.Average, &summary.ReviewCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &summary, nil
		}
		return nil, fmt.Errorf("review summary: %w", err)
	}
	return &summary, nil
}

// SummariesForBatches aggregates ratings for a set of batches in one
// round trip (browse listing enrichment).
func (r *ReviewRepository) SummariesForBatches(ctx context.Context, batchIDs []string) (map[string]models.RatingSummary, error) {
	result := make(map[string]models.RatingSummary, len(batchIDs))
	if len(batchIDs) == 0 {
		return result, nil
	}
	var summaries []models.RatingSummary
	query := `SELECT batch_id, COALESCE(AVG(rating), 0) AS average, COUNT(*) AS review_count
FROM reviews WHERE batch_id = ANY($1) GROUP BY batch_id`
	if err := r.db.SelectContext(ctx, &summaries, query, pq.Array(batchIDs)); err != nil {
		return nil, fmt.Errorf("review summaries: %w", err)
	}
	for _, s := range summaries {
		result[s.BatchID] = s
	}
	return result, nil
}
