package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herbtrace/herbtrace-api/internal/models"
)

func TestVerificationExistsSince(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVerificationRepository(db)

	dayStart := time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("u1", "b1", dayStart).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsSince(context.Background(), "u1", "b1", dayStart)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationInsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVerificationRepository(db)

	mock.ExpectExec("INSERT INTO verification_history").WillReturnResult(sqlmock.NewResult(1, 1))

	event := &models.VerificationEvent{UserID: "u1", BatchID: "b1", Status: models.VerificationAuthentic}
	err := repo.Insert(context.Background(), event)
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.VerifiedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationListByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVerificationRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "batch_id", "status", "verified_at", "batch_code", "herb_name"}).
		AddRow("v1", "u1", "b1", string(models.VerificationAuthentic), now, "ATB-2025-000123", "Ashwagandha").
		AddRow("v2", "u1", "b2", string(models.VerificationSuspicious), now.Add(-time.Hour), "", "")
	mock.ExpectQuery("SELECT vh.id, vh.user_id, vh.batch_id").
		WithArgs("u1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM verification_history WHERE user_id = $1")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	items, total, err := repo.ListByUser(context.Background(), "u1", 1, 20)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 2, total)
	assert.Equal(t, "ATB-2025-000123", items[0].BatchCode)
	assert.Empty(t, items[1].BatchCode, "deleted batches keep their history rows")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerificationStatsByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewVerificationRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS total").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"total", "authentic"}).AddRow(8, 6))

	total, authentic, err := repo.StatsByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 8, total)
	assert.Equal(t, 6, authentic)
	assert.NoError(t, mock.ExpectationsWereMet())
}
