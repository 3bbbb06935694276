package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/herbtrace/herbtrace-api/internal/dto"
	"github.com/herbtrace/herbtrace-api/internal/models"
	appErrors "github.com/herbtrace/herbtrace-api/pkg/errors"
)

type reviewStore interface {
	Upsert(ctx context.Context, review *models.Review) error
	ListByBatch(ctx context.Context, batchID string) ([]models.Review, error)
	SummaryForBatch(ctx context.Context, batchID string) (*models.RatingSummary, error)
}

// ReviewService manages customer reviews on batches.
type ReviewService struct {
	store     reviewStore
	batches   batchLookup
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReviewService constructs a ReviewService.
func NewReviewService(store reviewStore, batches batchLookup, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ReviewService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{store: store, batches: batches, cache: cache, validator: validate, logger: logger}
}

// Submit writes or replaces the caller's review of a stored batch.
func (s *ReviewService) Submit(ctx context.Context, claims *models.JWTClaims, batchID string, req dto.CreateReviewRequest) (*models.Review, error) {
	if claims == nil || claims.Role != models.RoleCustomer {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "customer role required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	batch, err := s.batches.FindByID(ctx, batchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	if batch == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
	}

	review := &models.Review{
		BatchID:  batch.ID,
		UserID:   claims.UserID,
		UserName: claims.FullName,
		Rating:   req.Rating,
	}
	if req.Comment != "" {
		comment := req.Comment
		review.Comment = &comment
	}
	if err := s.store.Upsert(ctx, review); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save review")
	}

	if err := s.cache.Invalidate(ctx, browseCachePattern); err != nil {
		s.logger.Warn("failed to invalidate browse cache after review", zap.Error(err))
	}
	return review, nil
}

// ListForBatch returns a batch's reviews with their aggregate.
func (s *ReviewService) ListForBatch(ctx context.Context, batchID string) (*dto.ReviewList, error) {
	reviews, err := s.store.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reviews")
	}
	summary, err := s.store.SummaryForBatch(ctx, batchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rating summary")
	}
	return &dto.ReviewList{Reviews: reviews, Summary: *summary}, nil
}
