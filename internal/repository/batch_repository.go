package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/herbtrace/herbtrace-api/internal/models"
)

const batchColumns = `id, batch_code, farmer_id, herb_name, scientific_name, farmer_name, description,
harvest_region, harvest_date, processing_steps, price, unit, category, image_url, hash, status, created_at, updated_at`

// BatchRepository manages persistence for herb batches.
type BatchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository constructs a new repository.
func NewBatchRepository(db *sqlx.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Create inserts a sealed batch row. The hash column is written exactly
// once here; no update statement in this repository touches it again.
func (r *BatchRepository) Create(ctx context.Context, batch *models.HerbBatch) error {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = now
	}
	batch.UpdatedAt = now
	if batch.Status == "" {
		batch.Status = models.BatchStatusActive
	}
	query := `INSERT INTO herb_batches (id, batch_code, farmer_id, herb_name, scientific_name, farmer_name, description,
harvest_region, harvest_date, processing_steps, price, unit, category, image_url, hash, status, created_at, updated_at)
VALUES (:id, :batch_code, :farmer_id, :herb_name, :scientific_name, :farmer_name, :description,
:harvest_region, :harvest_date, :processing_steps, :price, :unit, :category, :image_url, :hash, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, batch); err != nil {
		return fmt.Errorf("create herb batch: %w", err)
	}
	return nil
}

// FindByCode returns the batch with the given human-readable code, or
// nil when no row matches.
func (r *BatchRepository) FindByCode(ctx context.Context, batchCode string) (*models.HerbBatch, error) {
	return r.findOne(ctx, "batch_code", batchCode)
}

// FindByID returns the batch with the given opaque id, or nil when no
// row matches. The id column is uuid-typed, so an identifier that is
// not a UUID cannot match any row and is reported as a miss without a
// query; binding it would fail at the driver instead.
func (r *BatchRepository) FindByID(ctx context.Context, id string) (*models.HerbBatch, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	return r.findOne(ctx, "id", id)
}

func (r *BatchRepository) findOne(ctx context.Context, column, value string) (*models.HerbBatch, error) {
	query := fmt.Sprintf("SELECT %s FROM herb_batches WHERE %s = $1", batchColumns, column)
	var batch models.HerbBatch
	if err := r.db.GetContext(ctx, &batch, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find herb batch by %s: %w", column, err)
	}
	return &batch, nil
}

// List returns batches matching the provided filter plus the total count.
func (r *BatchRepository) List(ctx context.Context, filter models.BatchFilter) ([]models.HerbBatch, int, error) {
	base := "FROM herb_batches"
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.Region != "" {
		where = append(where, fmt.Sprintf("harvest_region ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Region+"%")
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(herb_name ILIKE $%d OR scientific_name ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.FarmerID != "" {
		where = append(where, fmt.Sprintf("farmer_id = $%d", len(args)+1))
		args = append(args, filter.FarmerID)
	}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	whereClause := strings.Join(where, " AND ")
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 24
	}
	offset := (page - 1) * size
	query := fmt.Sprintf(`SELECT %s
%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`, batchColumns, base, whereClause, size, offset)
	var batches []models.HerbBatch
	if err := r.db.SelectContext(ctx, &batches, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list herb batches: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count herb batches: %w", err)
	}
	return batches, total, nil
}

// UpdateCommercial mutates only the commercial columns of a batch. The
// provenance columns and the hash are immutable after sealing and are
// intentionally absent from this statement.
func (r *BatchRepository) UpdateCommercial(ctx context.Context, id string, update models.CommercialUpdate) error {
	set := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}
	if update.Price != nil {
		add("price", *update.Price)
	}
	if update.Unit != nil {
		add("unit", *update.Unit)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.Category != nil {
		add("category", *update.Category)
	}
	if update.ImageURL != nil {
		add("image_url", *update.ImageURL)
	}
	if len(set) == 0 {
		return nil
	}
	add("updated_at", time.Now().UTC())
	args = append(args, id)
	query := fmt.Sprintf("UPDATE herb_batches SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update herb batch: %w", err)
	}
	return nil
}

// UpdateStatus flips the lifecycle flag (admin moderation).
func (r *BatchRepository) UpdateStatus(ctx context.Context, id string, status models.BatchStatus) error {
	query := "UPDATE herb_batches SET status = $1, updated_at = $2 WHERE id = $3"
	if _, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update herb batch status: %w", err)
	}
	return nil
}

// Delete removes a batch row. Verification of the code afterwards
// reports not-found.
func (r *BatchRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM herb_batches WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete herb batch: %w", err)
	}
	return nil
}

// HasRecentDuplicate reports whether the farmer registered a batch with
// the same herb and harvest date since the given instant. Used as a
// double-submit guard at registration time.
func (r *BatchRepository) HasRecentDuplicate(ctx context.Context, farmerID, herbName, harvestDate string, since time.Time) (bool, error) {
	query := `SELECT EXISTS (
SELECT 1 FROM herb_batches WHERE farmer_id = $1 AND herb_name = $2 AND harvest_date = $3 AND created_at >= $4)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, farmerID, herbName, harvestDate, since); err != nil {
		return false, fmt.Errorf("check duplicate herb batch: %w", err)
	}
	return exists, nil
}
