package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/herbtrace/herbtrace-api/internal/models"
)

// SavedRepository manages a user's saved-herbs list. Batch ids may be
// store-assigned ids or static-dataset identifiers; both are stored
// verbatim in the same column.
type SavedRepository struct {
	db *sqlx.DB
}

// NewSavedRepository constructs a new repository.
func NewSavedRepository(db *sqlx.DB) *SavedRepository {
	return &SavedRepository{db: db}
}

// Save bookmarks a batch for a user. Saving an already-saved id is a
// no-op that still reports success; the return value tells the caller
// whether a new row was written.
func (r *SavedRepository) Save(ctx context.Context, userID, batchID string) (bool, error) {
	query := `INSERT INTO saved_herbs (id, user_id, batch_id, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, batch_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, uuid.NewString(), userID, batchID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("save herb: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("save herb result: %w", err)
	}
	return affected > 0, nil
}

// Unsave removes the bookmark if present.
func (r *SavedRepository) Unsave(ctx context.Context, userID, batchID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM saved_herbs WHERE user_id = $1 AND batch_id = $2", userID, batchID); err != nil {
		return fmt.Errorf("unsave herb: %w", err)
	}
	return nil
}

// IsSaved reports whether the user bookmarked the batch.
func (r *SavedRepository) IsSaved(ctx context.Context, userID, batchID string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS (SELECT 1 FROM saved_herbs WHERE user_id = $1 AND batch_id = $2)"
	if err := r.db.GetContext(ctx, &exists, query, userID, batchID); err != nil {
		return false, fmt.Errorf("check saved herb: %w", err)
	}
	return exists, nil
}

// ListByUser returns the user's bookmarks newest-first.
func (r *SavedRepository) ListByUser(ctx context.Context, userID string) ([]models.SavedHerb, error) {
	var saved []models.SavedHerb
	query := "SELECT id, user_id, batch_id, created_at FROM saved_herbs WHERE user_id = $1 ORDER BY created_at DESC"
	if err := r.db.SelectContext(ctx, &saved, query, userID); err != nil {
		return nil, fmt.Errorf("list saved herbs: %w", err)
	}
	return saved, nil
}

// CountByUser returns the number of bookmarks a user holds.
func (r *SavedRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM saved_herbs WHERE user_id = $1", userID); err != nil {
		return 0, fmt.Errorf("count saved herbs: %w", err)
	}
	return count, nil
}
