package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herbtrace/herbtrace-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func batchRows() *sqlmock.Rows {
	now := time.Now()
	hash := "ab12"
	return sqlmock.NewRows([]string{"id", "batch_code", "farmer_id", "herb_name", "scientific_name", "farmer_name", "description",
		"harvest_region", "harvest_date", "processing_steps", "price", "unit", "category", "image_url", "hash", "status", "created_at", "updated_at"}).
		AddRow("b1", "ATB-2025-000123", "f1", "Ashwagandha", "Withania somnifera", "Rajesh Patel", nil,
			"Mandsaur, Madhya Pradesh", "2025-09-15", []byte(`[{"step":"Harvesting","date":"2025-09-15","description":""}]`),
			450.0, "250g", nil, nil, hash, string(models.BatchStatusActive), now, now)
}

func TestBatchCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	mock.ExpectExec("INSERT INTO herb_batches").WillReturnResult(sqlmock.NewResult(1, 1))

	batch := &models.HerbBatch{BatchCode: "ATB-2025-000123", FarmerID: "f1", HerbName: "Ashwagandha"}
	err := repo.Create(context.Background(), batch)
	require.NoError(t, err)
	assert.NotEmpty(t, batch.ID)
	assert.Equal(t, models.BatchStatusActive, batch.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchFindByCode(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	mock.ExpectQuery(`FROM herb_batches WHERE batch_code = \$1`).
		WithArgs("ATB-2025-000123").
		WillReturnRows(batchRows())

	batch, err := repo.FindByCode(context.Background(), "ATB-2025-000123")
	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.Equal(t, "Ashwagandha", batch.HerbName)
	require.NotNil(t, batch.Hash)
	assert.Equal(t, []string{"Harvesting"}, batch.Steps.StepNames())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	id := uuid.NewString()
	mock.ExpectQuery(`FROM herb_batches WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(batchRows())

	batch, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchFindByIDNonUUID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	for _, id := range []string{"NO-SUCH-CODE", "ATB-2025-001", ""} {
		batch, err := repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Nil(t, batch)
	}
	assert.NoError(t, mock.ExpectationsWereMet(), "non-uuid ids must not reach the store")
}

func TestBatchFindByCodeMiss(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	mock.ExpectQuery(`FROM herb_batches WHERE batch_code = \$1`).
		WithArgs("ATB-2099-999999").
		WillReturnError(sql.ErrNoRows)

	batch, err := repo.FindByCode(context.Background(), "ATB-2099-999999")
	require.NoError(t, err)
	assert.Nil(t, batch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	mock.ExpectQuery(`FROM herb_batches WHERE 1=1 AND category = \$1 AND status = \$2 ORDER BY created_at DESC LIMIT 24 OFFSET 0`).
		WithArgs("Adaptogen", "active").
		WillReturnRows(batchRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM herb_batches WHERE 1=1 AND category = $1 AND status = $2")).
		WithArgs("Adaptogen", "active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	active := models.BatchStatusActive
	batches, total, err := repo.List(context.Background(), models.BatchFilter{Category: "Adaptogen", Status: &active})
	require.NoError(t, err)
	assert.Len(t, batches, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchUpdateCommercialPartialSet(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE herb_batches SET price = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(675.0, sqlmock.AnyArg(), "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	price := 675.0
	err := repo.UpdateCommercial(context.Background(), "b1", models.CommercialUpdate{Price: &price})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchUpdateCommercialNoFields(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	err := repo.UpdateCommercial(context.Background(), "b1", models.CommercialUpdate{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchHasRecentDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	since := time.Now().Add(-5 * time.Minute)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("f1", "Ashwagandha", "2025-09-15", since).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	dup, err := repo.HasRecentDuplicate(context.Background(), "f1", "Ashwagandha", "2025-09-15", since)
	require.NoError(t, err)
	assert.True(t, dup)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewBatchRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM herb_batches WHERE id = $1")).
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), "b1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
