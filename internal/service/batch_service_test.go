package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herbtrace/herbtrace-api/internal/dto"
	"github.com/herbtrace/herbtrace-api/internal/integrity"
	"github.com/herbtrace/herbtrace-api/internal/models"
	appErrors "github.com/herbtrace/herbtrace-api/pkg/errors"
)

type batchStoreStub struct {
	created       []*models.HerbBatch
	byID          map[string]*models.HerbBatch
	listResult    []models.HerbBatch
	listTotal     int
	listFilter    models.BatchFilter
	updates       map[string]models.CommercialUpdate
	statusUpdates map[string]models.BatchStatus
	deleted       []string
	duplicate     bool
}

func (s *batchStoreStub) Create(ctx context.Context, batch *models.HerbBatch) error {
	s.created = append(s.created, batch)
	return nil
}

func (s *batchStoreStub) FindByCode(ctx context.Context, batchCode string) (*models.HerbBatch, error) {
	return nil, nil
}

func (s *batchStoreStub) FindByID(ctx context.Context, id string) (*models.HerbBatch, error) {
	return s.byID[id], nil
}

func (s *batchStoreStub) List(ctx context.Context, filter models.BatchFilter) ([]models.HerbBatch, int, error) {
	s.listFilter = filter
	return s.listResult, s.listTotal, nil
}

func (s *batchStoreStub) UpdateCommercial(ctx context.Context, id string, update models.CommercialUpdate) error {
	if s.updates == nil {
		s.updates = map[string]models.CommercialUpdate{}
	}
	s.updates[id] = update
	return nil
}

func (s *batchStoreStub) UpdateStatus(ctx context.Context, id string, status models.BatchStatus) error {
	if s.statusUpdates == nil {
		s.statusUpdates = map[string]models.BatchStatus{}
	}
	s.statusUpdates[id] = status
	return nil
}

func (s *batchStoreStub) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *batchStoreStub) HasRecentDuplicate(ctx context.Context, farmerID, herbName, harvestDate string, since time.Time) (bool, error) {
	return s.duplicate, nil
}

type ratingStoreStub struct {
	summaries map[string]models.RatingSummary
}

func (s *ratingStoreStub) SummaryForBatch(ctx context.Context, batchID string) (*models.RatingSummary, error) {
	summary := s.summaries[batchID]
	summary.BatchID = batchID
	return &summary, nil
}

func (s *ratingStoreStub) SummariesForBatches(ctx context.Context, batchIDs []string) (map[string]models.RatingSummary, error) {
	return s.summaries, nil
}

type auditorStub struct {
	logs []*models.AuditLog
}

func (s *auditorStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, log)
	return nil
}

func farmerClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "farmer-1", Role: models.RoleFarmer, FullName: "Rajesh Patel"}
}

func validCreateRequest() dto.CreateBatchRequest {
	return dto.CreateBatchRequest{
		HerbName:        "Ashwagandha",
		ScientificName:  "Withania somnifera",
		FarmerName:      "Rajesh Patel",
		HarvestRegion:   "Mandsaur, Madhya Pradesh",
		HarvestDate:     "2025-09-15",
		Price:           450,
		Unit:            "250g",
		Category:        "Adaptogen",
		ProcessingSteps: "Harvesting\nSun Drying\n\nPackaging\n",
	}
}

func TestRegisterSealsBatch(t *testing.T) {
	store := &batchStoreStub{}
	svc := NewBatchService(store, &ratingStoreStub{}, &auditorStub{}, nil, nil, nil)

	batch, err := svc.Register(context.Background(), farmerClaims(), validCreateRequest())
	require.NoError(t, err)
	require.Len(t, store.created, 1)

	assert.Regexp(t, regexp.MustCompile(`^ATB-\d{4}-\d{6}$`), batch.BatchCode)
	assert.Equal(t, "farmer-1", batch.FarmerID)
	assert.Equal(t, models.BatchStatusActive, batch.Status)

	require.NotNil(t, batch.Hash)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), *batch.Hash)
	assert.Equal(t, integrity.Digest(batch.ProvenanceFields()), *batch.Hash)

	assert.Equal(t, []string{"Harvesting", "Sun Drying", "Packaging"}, batch.Steps.StepNames())
}

func TestRegisterRejectsRecentDuplicate(t *testing.T) {
	store := &batchStoreStub{duplicate: true}
	svc := NewBatchService(store, &ratingStoreStub{}, &auditorStub{}, nil, nil, nil)

	_, err := svc.Register(context.Background(), farmerClaims(), validCreateRequest())
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Empty(t, store.created)
}

func TestRegisterValidatesPayload(t *testing.T) {
	svc := NewBatchService(&batchStoreStub{}, &ratingStoreStub{}, &auditorStub{}, nil, nil, nil)

	req := validCreateRequest()
	req.HerbName = ""

	_, err := svc.Register(context.Background(), farmerClaims(), req)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestBrowseFiltersToActive(t *testing.T) {
	store := &batchStoreStub{listResult: []models.HerbBatch{}, listTotal: 0}
	svc := NewBatchService(store, &ratingStoreStub{}, &auditorStub{}, nil, nil, nil)

	_, _, err := svc.Browse(context.Background(), dto.BatchListFilter{Category: "Adaptogen"})
	require.NoError(t, err)

	require.NotNil(t, store.listFilter.Status)
	assert.Equal(t, models.BatchStatusActive, *store.listFilter.Status)
	assert.Equal(t, "Adaptogen", store.listFilter.Category)
}

func TestBrowseAttachesRatings(t *testing.T) {
	store := &batchStoreStub{
		listResult: []models.HerbBatch{{ID: "b1"}, {ID: "b2"}},
		listTotal:  2,
	}
	ratings := &ratingStoreStub{summaries: map[string]models.RatingSummary{
		"b1": {BatchID: "b1", Average: 4.5, ReviewCount: 12},
	}}
	svc := NewBatchService(store, ratings, &auditorStub{}, nil, nil, nil)

	items, pagination, err := svc.Browse(context.Background(), dto.BatchListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.InDelta(t, 4.5, items[0].AverageRating, 0.001)
	assert.Equal(t, 12, items[0].ReviewCount)
	assert.Zero(t, items[1].ReviewCount)
	assert.Equal(t, 2, pagination.TotalCount)
}

func TestUpdateCommercialRejectsOtherFarmer(t *testing.T) {
	owned := &models.HerbBatch{ID: "b1", FarmerID: "farmer-1"}
	store := &batchStoreStub{byID: map[string]*models.HerbBatch{"b1": owned}}
	svc := NewBatchService(store, &ratingStoreStub{}, &auditorStub{}, nil, nil, nil)

	other := &models.JWTClaims{UserID: "farmer-2", Role: models.RoleFarmer}
	price := 100.0
	_, err := svc.UpdateCommercial(context.Background(), other, "b1", dto.UpdateBatchRequest{Price: &price})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.Empty(t, store.updates)
}

func TestUpdateCommercialTouchesOnlyCommercialColumns(t *testing.T) {
	owned := &models.HerbBatch{ID: "b1", FarmerID: "farmer-1"}
	store := &batchStoreStub{byID: map[string]*models.HerbBatch{"b1": owned}}
	svc := NewBatchService(store, &ratingStoreStub{}, &auditorStub{}, nil, nil, nil)

	price := 675.0
	unit := "500g"
	_, err := svc.UpdateCommercial(context.Background(), farmerClaims(), "b1", dto.UpdateBatchRequest{Price: &price, Unit: &unit})
	require.NoError(t, err)

	update, ok := store.updates["b1"]
	require.True(t, ok)
	assert.Equal(t, price, *update.Price)
	assert.Equal(t, unit, *update.Unit)
	assert.Nil(t, update.Description)
	assert.Nil(t, update.Category)
	assert.Nil(t, update.ImageURL)
}

func TestSetStatusRequiresAdmin(t *testing.T) {
	store := &batchStoreStub{byID: map[string]*models.HerbBatch{"b1": {ID: "b1"}}}
	svc := NewBatchService(store, &ratingStoreStub{}, &auditorStub{}, nil, nil, nil)

	err := svc.SetStatus(context.Background(), farmerClaims(), "b1", models.BatchStatusSuspended)
	require.Error(t, err)

	admin := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
	err = svc.SetStatus(context.Background(), admin, "b1", models.BatchStatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, models.BatchStatusSuspended, store.statusUpdates["b1"])
}

func TestDeleteAuditsAndRemoves(t *testing.T) {
	store := &batchStoreStub{byID: map[string]*models.HerbBatch{"b1": {ID: "b1", FarmerID: "farmer-1"}}}
	auditor := &auditorStub{}
	svc := NewBatchService(store, &ratingStoreStub{}, auditor, nil, nil, nil)

	err := svc.Delete(context.Background(), farmerClaims(), "b1")
	require.NoError(t, err)

	assert.Equal(t, []string{"b1"}, store.deleted)
	require.Len(t, auditor.logs, 1)
	assert.Equal(t, models.AuditActionBatchDelete, auditor.logs[0].Action)
}
