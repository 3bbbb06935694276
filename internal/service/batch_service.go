package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/herbtrace/herbtrace-api/internal/dto"
	"github.com/herbtrace/herbtrace-api/internal/integrity"
	"github.com/herbtrace/herbtrace-api/internal/models"
	"github.com/herbtrace/herbtrace-api/internal/staticdata"
	appErrors "github.com/herbtrace/herbtrace-api/pkg/errors"
)

const (
	browseCachePattern = "browse:*"
	duplicateWindow    = 5 * time.Minute
)

type batchStore interface {
	Create(ctx context.Context, batch *models.HerbBatch) error
	FindByCode(ctx context.Context, batchCode string) (*models.HerbBatch, error)
	FindByID(ctx context.Context, id string) (*models.HerbBatch, error)
	List(ctx context.Context, filter models.BatchFilter) ([]models.HerbBatch, int, error)
	UpdateCommercial(ctx context.Context, id string, update models.CommercialUpdate) error
	UpdateStatus(ctx context.Context, id string, status models.BatchStatus) error
	Delete(ctx context.Context, id string) error
	HasRecentDuplicate(ctx context.Context, farmerID, herbName, harvestDate string, since time.Time) (bool, error)
}

type ratingStore interface {
	SummaryForBatch(ctx context.Context, batchID string) (*models.RatingSummary, error)
	SummariesForBatches(ctx context.Context, batchIDs []string) (map[string]models.RatingSummary, error)
}

type batchAuditor interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// BatchService covers batch registration, browsing and lifecycle.
type BatchService struct {
	store     batchStore
	ratings   ratingStore
	auditor   batchAuditor
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger

	now func() time.Time
}

// NewBatchService constructs a BatchService.
func NewBatchService(store batchStore, ratings ratingStore, auditor batchAuditor, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *BatchService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{
		store:     store,
		ratings:   ratings,
		auditor:   auditor,
		cache:     cache,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register creates and seals a new batch for the calling farmer. The
// content digest is computed once here, over the provenance fields only,
// and is never recomputed or rewritten afterwards.
func (s *BatchService) Register(ctx context.Context, claims *models.JWTClaims, req dto.CreateBatchRequest) (*models.HerbBatch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}

	dup, err := s.store.HasRecentDuplicate(ctx, claims.UserID, strings.TrimSpace(req.HerbName), req.HarvestDate, s.now().Add(-duplicateWindow))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check recent batches")
	}
	if dup {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an identical batch was registered moments ago")
	}

	batch := &models.HerbBatch{
		BatchCode:      s.generateBatchCode(),
		FarmerID:       claims.UserID,
		HerbName:       strings.TrimSpace(req.HerbName),
		ScientificName: strings.TrimSpace(req.ScientificName),
		FarmerName:     strings.TrimSpace(req.FarmerName),
		HarvestRegion:  strings.TrimSpace(req.HarvestRegion),
		HarvestDate:    req.HarvestDate,
		Steps:          parseSteps(req.ProcessingSteps),
		Price:          req.Price,
		Unit:           strings.TrimSpace(req.Unit),
		Status:         models.BatchStatusActive,
	}
	if req.Description != "" {
		desc := req.Description
		batch.Description = &desc
	}
	if req.Category != "" {
		cat := req.Category
		batch.Category = &cat
	}
	if req.ImageURL != "" {
		img := req.ImageURL
		batch.ImageURL = &img
	}

	digest := integrity.Digest(batch.ProvenanceFields())
	batch.Hash = &digest

	if err := s.store.Create(ctx, batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register batch")
	}

	s.audit(ctx, claims, models.AuditActionBatchCreate, batch.ID, nil)
	s.invalidateBrowse(ctx)

	return batch, nil
}

// Browse lists active batches with rating summaries. Results are cached
// per filter combination when the cache is enabled.
func (s *BatchService) Browse(ctx context.Context, filter dto.BatchListFilter) ([]dto.BatchListItem, *models.Pagination, error) {
	key := browseCacheKey(filter)

	type cachedListing struct {
		Items      []dto.BatchListItem `json:"items"`
		Pagination models.Pagination   `json:"pagination"`
	}
	var cached cachedListing
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached.Items, &cached.Pagination, nil
	}

	active := models.BatchStatusActive
	batches, total, err := s.store.List(ctx, models.BatchFilter{
		Category: filter.Category,
		Region:   filter.Region,
		Search:   filter.Search,
		Status:   &active,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batches")
	}

	items, err := s.attachRatings(ctx, batches)
	if err != nil {
		return nil, nil, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 24
	}
	pagination := models.Pagination{Page: page, PageSize: size, TotalCount: total}

	if err := s.cache.Set(ctx, key, cachedListing{Items: items, Pagination: pagination}, 0); err != nil {
		s.logger.Warn("failed to cache browse listing", zap.Error(err))
	}

	return items, &pagination, nil
}

// Get resolves a batch by id or batch code for the detail page. Static
// dataset ids resolve to fixture details when no stored row matches.
func (s *BatchService) Get(ctx context.Context, identifier string) (*dto.BatchListItem, *staticdata.Batch, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "identifier is required")
	}

	batch, err := s.store.FindByID(ctx, identifier)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	if batch == nil {
		batch, err = s.store.FindByCode(ctx, identifier)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
		}
	}
	if batch == nil {
		if fixture, ok := staticdata.Find(identifier); ok {
			return nil, fixture, nil
		}
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
	}

	item := dto.BatchListItem{HerbBatch: *batch}
	if s.ratings != nil {
		summary, err := s.ratings.SummaryForBatch(ctx, batch.ID)
		if err != nil {
			s.logger.Warn("failed to load rating summary", zap.String("batch_id", batch.ID), zap.Error(err))
		} else if summary != nil {
			item.AverageRating = summary.Average
			item.ReviewCount = summary.ReviewCount
		}
	}
	return &item, nil, nil
}

// ListForFarmer returns the farmer's own batches including suspended ones.
func (s *BatchService) ListForFarmer(ctx context.Context, farmerID string, page, pageSize int) ([]dto.BatchListItem, *models.Pagination, error) {
	batches, total, err := s.store.List(ctx, models.BatchFilter{FarmerID: farmerID, Page: page, PageSize: pageSize})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list farmer batches")
	}
	items, err := s.attachRatings(ctx, batches)
	if err != nil {
		return nil, nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 24
	}
	return items, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// UpdateCommercial edits the mutable commercial fields of an owned
// batch. Provenance fields and the seal are immutable; there is no code
// path that updates them.
func (s *BatchService) UpdateCommercial(ctx context.Context, claims *models.JWTClaims, batchID string, req dto.UpdateBatchRequest) (*models.HerbBatch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}

	batch, err := s.requireOwnedBatch(ctx, claims, batchID)
	if err != nil {
		return nil, err
	}

	update := models.CommercialUpdate{
		Price:       req.Price,
		Unit:        req.Unit,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	}
	if err := s.store.UpdateCommercial(ctx, batch.ID, update); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update batch")
	}

	s.audit(ctx, claims, models.AuditActionBatchUpdate, batch.ID, nil)
	s.invalidateBrowse(ctx)

	updated, err := s.store.FindByID(ctx, batch.ID)
	if err != nil || updated == nil {
		return batch, nil
	}
	return updated, nil
}

// SetStatus suspends or reinstates a listing. Admin only, enforced at
// the route level and rechecked here.
func (s *BatchService) SetStatus(ctx context.Context, claims *models.JWTClaims, batchID string, status models.BatchStatus) error {
	if claims == nil || claims.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}
	batch, err := s.store.FindByID(ctx, batchID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	if batch == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "batch not found")
	}
	if err := s.store.UpdateStatus(ctx, batchID, status); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update batch status")
	}
	s.audit(ctx, claims, models.AuditActionBatchSuspend, batchID, []byte(fmt.Sprintf(`{"status":%q}`, status)))
	s.invalidateBrowse(ctx)
	return nil
}

// Delete removes an owned batch. Verifying its code afterwards reports
// not-found.
func (s *BatchService) Delete(ctx context.Context, claims *models.JWTClaims, batchID string) error {
	batch, err := s.requireOwnedBatch(ctx, claims, batchID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, batch.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete batch")
	}
	s.audit(ctx, claims, models.AuditActionBatchDelete, batch.ID, nil)
	s.invalidateBrowse(ctx)
	return nil
}

func (s *BatchService) requireOwnedBatch(ctx context.Context, claims *models.JWTClaims, batchID string) (*models.HerbBatch, error) {
	batch, err := s.store.FindByID(ctx, batchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	if batch == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
	}
	if claims == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if claims.Role != models.RoleAdmin && batch.FarmerID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "batch belongs to another farmer")
	}
	return batch, nil
}

func (s *BatchService) attachRatings(ctx context.Context, batches []models.HerbBatch) ([]dto.BatchListItem, error) {
	items := make([]dto.BatchListItem, len(batches))
	ids := make([]string, len(batches))
	for i, b := range batches {
		items[i] = dto.BatchListItem{HerbBatch: b}
		ids[i] = b.ID
	}
	if s.ratings == nil || len(ids) == 0 {
		return items, nil
	}
	summaries, err := s.ratings.SummariesForBatches(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to load rating summaries", zap.Error(err))
		return items, nil
	}
	for i := range items {
		if summary, ok := summaries[items[i].ID]; ok {
			items[i].AverageRating = summary.Average
			items[i].ReviewCount = summary.ReviewCount
		}
	}
	return items, nil
}

func (s *BatchService) audit(ctx context.Context, claims *models.JWTClaims, action models.AuditAction, batchID string, newValues []byte) {
	if s.auditor == nil || claims == nil {
		return
	}
	if err := s.auditor.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &claims.UserID,
		Action:     action,
		Resource:   "herb_batch",
		ResourceID: &batchID,
		NewValues:  newValues,
	}); err != nil {
		s.logger.Warn("failed to record batch audit log", zap.Error(err))
	}
}

func (s *BatchService) invalidateBrowse(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, browseCachePattern); err != nil {
		s.logger.Warn("failed to invalidate browse cache", zap.Error(err))
	}
}

// generateBatchCode produces a human-readable code of the form
// ATB-<year>-<6 digits>, the suffix taken from the millisecond clock.
func (s *BatchService) generateBatchCode() string {
	now := s.now()
	return fmt.Sprintf("ATB-%d-%06d", now.Year(), now.UnixMilli()%1_000_000)
}

// parseSteps turns the submitted multiline step list into the stored
// timeline. One step name per line; blank lines are dropped.
func parseSteps(raw string) models.ProcessingSteps {
	lines := strings.Split(raw, "\n")
	steps := make(models.ProcessingSteps, 0, len(lines))
	for _, line := range lines {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		steps = append(steps, models.ProcessingStep{Step: name})
	}
	return steps
}

func browseCacheKey(filter dto.BatchListFilter) string {
	return fmt.Sprintf("browse:%s:%s:%s:%d:%d", filter.Category, filter.Region, filter.Search, filter.Page, filter.PageSize)
}
