package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herbtrace/herbtrace-api/internal/dto"
	"github.com/herbtrace/herbtrace-api/internal/integrity"
	"github.com/herbtrace/herbtrace-api/internal/models"
	appErrors "github.com/herbtrace/herbtrace-api/pkg/errors"
)

type batchLookupStub struct {
	byCode    map[string]*models.HerbBatch
	byID      map[string]*models.HerbBatch
	codeErr   error
	idErr     error
	codeCalls int
	idCalls   int
}

func (s *batchLookupStub) FindByCode(ctx context.Context, batchCode string) (*models.HerbBatch, error) {
	s.codeCalls++
	if s.codeErr != nil {
		return nil, s.codeErr
	}
	return s.byCode[batchCode], nil
}

func (s *batchLookupStub) FindByID(ctx context.Context, id string) (*models.HerbBatch, error) {
	s.idCalls++
	if s.idErr != nil {
		return nil, s.idErr
	}
	return s.byID[id], nil
}

type historyStoreStub struct {
	exists    bool
	existsErr error
	insertErr error
	inserted  []*models.VerificationEvent
}

func (s *historyStoreStub) ExistsSince(ctx context.Context, userID, batchID string, since time.Time) (bool, error) {
	return s.exists, s.existsErr
}

func (s *historyStoreStub) Insert(ctx context.Context, event *models.VerificationEvent) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, event)
	return nil
}

func (s *historyStoreStub) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]dto.VerificationHistoryItem, int, error) {
	return nil, 0, nil
}

func sealedBatch() *models.HerbBatch {
	batch := &models.HerbBatch{
		ID:             "batch-1",
		BatchCode:      "ATB-2025-000123",
		FarmerID:       "farmer-1",
		HerbName:       "Ashwagandha",
		ScientificName: "Withania somnifera",
		FarmerName:     "Rajesh Patel",
		HarvestRegion:  "Mandsaur, Madhya Pradesh",
		HarvestDate:    "2025-09-15",
		Steps: models.ProcessingSteps{
			{Step: "Harvesting", Date: "2025-09-15"},
			{Step: "Sun Drying", Date: "2025-09-17"},
		},
		Price:  450,
		Unit:   "250g",
		Status: models.BatchStatusActive,
	}
	digest := integrity.Digest(batch.ProvenanceFields())
	batch.Hash = &digest
	return batch
}

func newVerificationService(lookup *batchLookupStub, history *historyStoreStub) *VerificationService {
	return NewVerificationService(lookup, history, nil, nil, VerificationConfig{
		StaticDatasetEnabled: true,
		RecordHistory:        true,
	})
}

func customerClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-1", Role: models.RoleCustomer}
}

func TestVerifyBlankIdentifier(t *testing.T) {
	svc := newVerificationService(&batchLookupStub{}, &historyStoreStub{})

	_, err := svc.Verify(context.Background(), "   ", nil)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestVerifyStaticDatasetHit(t *testing.T) {
	lookup := &batchLookupStub{}
	svc := newVerificationService(lookup, &historyStoreStub{})

	result, err := svc.Verify(context.Background(), "ATB-2025-001", nil)
	require.NoError(t, err)

	assert.Equal(t, models.SourceStatic, result.Source)
	assert.Equal(t, models.OutcomeVerified, result.Outcome)
	require.NotNil(t, result.StaticBatch)
	assert.Equal(t, "Ashwagandha", result.StaticBatch.HerbName)
	assert.Empty(t, result.ComputedDigest)
	assert.Equal(t, result.StaticBatch.Hash, result.StoredDigest)
	assert.Zero(t, lookup.codeCalls, "static hit must not touch the record store")
	assert.Zero(t, lookup.idCalls)
}

func TestVerifySealedBatchRoundTrip(t *testing.T) {
	batch := sealedBatch()
	lookup := &batchLookupStub{byCode: map[string]*models.HerbBatch{batch.BatchCode: batch}}
	svc := newVerificationService(lookup, &historyStoreStub{})

	result, err := svc.Verify(context.Background(), batch.BatchCode, nil)
	require.NoError(t, err)

	assert.Equal(t, models.SourceDatabase, result.Source)
	assert.Equal(t, models.OutcomeVerified, result.Outcome)
	assert.Equal(t, *batch.Hash, result.ComputedDigest)
	assert.False(t, result.HistoryRecorded)
}

func TestVerifyCommercialEditsKeepSeal(t *testing.T) {
	batch := sealedBatch()
	batch.Price = 9999
	batch.Unit = "1kg"
	desc := "rewritten marketing copy"
	batch.Description = &desc
	batch.Status = models.BatchStatusSuspended

	lookup := &batchLookupStub{byCode: map[string]*models.HerbBatch{batch.BatchCode: batch}}
	svc := newVerificationService(lookup, &historyStoreStub{})

	result, err := svc.Verify(context.Background(), batch.BatchCode, nil)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeVerified, result.Outcome)
}

func TestVerifyProvenanceEditIsTampered(t *testing.T) {
	batch := sealedBatch()
	batch.HarvestRegion = "Pune, Maharashtra"

	lookup := &batchLookupStub{byCode: map[string]*models.HerbBatch{batch.BatchCode: batch}}
	svc := newVerificationService(lookup, &historyStoreStub{})

	result, err := svc.Verify(context.Background(), batch.BatchCode, nil)
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeTampered, result.Outcome)
	assert.NotEqual(t, result.StoredDigest, result.ComputedDigest)
}

func TestVerifyUnsealedBatch(t *testing.T) {
	batch := sealedBatch()
	batch.Hash = nil

	lookup := &batchLookupStub{byCode: map[string]*models.HerbBatch{batch.BatchCode: batch}}
	history := &historyStoreStub{}
	svc := newVerificationService(lookup, history)

	result, err := svc.Verify(context.Background(), batch.BatchCode, customerClaims())
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeUnsealed, result.Outcome)
	assert.Empty(t, result.StoredDigest)
	assert.False(t, result.HistoryRecorded, "unsealed outcomes are not history events")
	assert.Empty(t, history.inserted)
}

func TestVerifyFallsBackToIDLookup(t *testing.T) {
	batch := sealedBatch()
	lookup := &batchLookupStub{byID: map[string]*models.HerbBatch{batch.ID: batch}}
	svc := newVerificationService(lookup, &historyStoreStub{})

	result, err := svc.Verify(context.Background(), batch.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeVerified, result.Outcome)
	assert.Equal(t, 1, lookup.codeCalls)
	assert.Equal(t, 1, lookup.idCalls)
}

func TestVerifyUnknownIdentifier(t *testing.T) {
	svc := newVerificationService(&batchLookupStub{}, &historyStoreStub{})

	_, err := svc.Verify(context.Background(), "ATB-2099-999999", nil)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestVerifyStoreFailureIsRetryable(t *testing.T) {
	lookup := &batchLookupStub{codeErr: errors.New("connection refused")}
	svc := newVerificationService(lookup, &historyStoreStub{})

	_, err := svc.Verify(context.Background(), "ATB-2025-000123", nil)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrStoreUnavailable.Code, appErr.Code)
	assert.NotEqual(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestVerifyRecordsCustomerHistory(t *testing.T) {
	batch := sealedBatch()
	lookup := &batchLookupStub{byCode: map[string]*models.HerbBatch{batch.BatchCode: batch}}
	history := &historyStoreStub{}
	svc := newVerificationService(lookup, history)

	result, err := svc.Verify(context.Background(), batch.BatchCode, customerClaims())
	require.NoError(t, err)

	assert.True(t, result.HistoryRecorded)
	require.Len(t, history.inserted, 1)
	assert.Equal(t, "user-1", history.inserted[0].UserID)
	assert.Equal(t, batch.ID, history.inserted[0].BatchID)
	assert.Equal(t, models.VerificationAuthentic, history.inserted[0].Status)
}

func TestVerifyTamperedRecordsSuspicious(t *testing.T) {
	batch := sealedBatch()
	batch.FarmerName = "Somebody Else"

	lookup := &batchLookupStub{byCode: map[string]*models.HerbBatch{batch.BatchCode: batch}}
	history := &historyStoreStub{}
	svc := newVerificationService(lookup, history)

	result, err := svc.Verify(context.Background(), batch.BatchCode, customerClaims())
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeTampered, result.Outcome)
	require.Len(t, history.inserted, 1)
	assert.Equal(t, models.VerificationSuspicious, history.inserted[0].Status)
}

func TestVerifySameDayDuplicateSuppressed(t *testing.T) {
	batch := sealedBatch()
	lookup := &batchLookupStub{byCode: map[string]*models.HerbBatch{batch.BatchCode: batch}}
	history := &historyStoreStub{exists: true}
	svc := newVerificationService(lookup, history)

	result, err := svc.Verify(context.Background(), batch.BatchCode, customerClaims())
	require.NoError(t, err)

	assert.True(t, result.Outcome == models.OutcomeVerified)
	assert.False(t, result.HistoryRecorded)
	assert.Empty(t, history.inserted)
}

func TestVerifyNonCustomerRolesSkipHistory(t *testing.T) {
	batch := sealedBatch()
	lookup := &batchLookupStub{byCode: map[string]*models.HerbBatch{batch.BatchCode: batch}}
	history := &historyStoreStub{}
	svc := newVerificationService(lookup, history)

	for _, role := range []models.UserRole{models.RoleFarmer, models.RoleAdmin} {
		result, err := svc.Verify(context.Background(), batch.BatchCode, &models.JWTClaims{UserID: "u", Role: role})
		require.NoError(t, err)
		assert.False(t, result.HistoryRecorded)
	}
	assert.Empty(t, history.inserted)
}

func TestVerifyHistoryFailureDoesNotFailVerification(t *testing.T) {
	batch := sealedBatch()
	lookup := &batchLookupStub{byCode: map[string]*models.HerbBatch{batch.BatchCode: batch}}
	history := &historyStoreStub{insertErr: errors.New("history table gone")}
	svc := newVerificationService(lookup, history)

	result, err := svc.Verify(context.Background(), batch.BatchCode, customerClaims())
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeVerified, result.Outcome)
	assert.False(t, result.HistoryRecorded)
}
