package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/herbtrace/herbtrace-api/internal/dto"
	"github.com/herbtrace/herbtrace-api/internal/models"
	"github.com/herbtrace/herbtrace-api/internal/staticdata"
	appErrors "github.com/herbtrace/herbtrace-api/pkg/errors"
)

type savedStore interface {
	Save(ctx context.Context, userID, batchID string) (bool, error)
	Unsave(ctx context.Context, userID, batchID string) error
	IsSaved(ctx context.Context, userID, batchID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]models.SavedHerb, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}

// SavedService manages a customer's bookmarked herbs.
type SavedService struct {
	store   savedStore
	batches batchLookup
	logger  *zap.Logger
}

// NewSavedService constructs a SavedService.
func NewSavedService(store savedStore, batches batchLookup, logger *zap.Logger) *SavedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SavedService{store: store, batches: batches, logger: logger}
}

// Save bookmarks a batch. Saving twice is a no-op. The identifier may
// name a stored batch or a static-dataset entry.
func (s *SavedService) Save(ctx context.Context, claims *models.JWTClaims, batchID string) error {
	if err := s.requireCustomer(claims); err != nil {
		return err
	}
	if _, ok := staticdata.Find(batchID); !ok {
		batch, err := s.batches.FindByID(ctx, batchID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
		}
		if batch == nil {
			return appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
	}
	if _, err := s.store.Save(ctx, claims.UserID, batchID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save herb")
	}
	return nil
}

// Unsave removes the bookmark if present.
func (s *SavedService) Unsave(ctx context.Context, claims *models.JWTClaims, batchID string) error {
	if err := s.requireCustomer(claims); err != nil {
		return err
	}
	if err := s.store.Unsave(ctx, claims.UserID, batchID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove saved herb")
	}
	return nil
}

// List returns the caller's bookmarks with batch details attached where
// the batch still resolves.
func (s *SavedService) List(ctx context.Context, claims *models.JWTClaims) ([]dto.SavedHerbItem, error) {
	if err := s.requireCustomer(claims); err != nil {
		return nil, err
	}
	saved, err := s.store.ListByUser(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list saved herbs")
	}
	items := make([]dto.SavedHerbItem, len(saved))
	for i, entry := range saved {
		items[i] = dto.SavedHerbItem{SavedHerb: entry}
		if fixture, ok := staticdata.Find(entry.BatchID); ok {
			items[i].StaticBatch = fixture
			continue
		}
		batch, err := s.batches.FindByID(ctx, entry.BatchID)
		if err != nil {
			s.logger.Warn("failed to resolve saved batch", zap.String("batch_id", entry.BatchID), zap.Error(err))
			continue
		}
		items[i].StoredBatch = batch
	}
	return items, nil
}

// IsSaved reports whether the caller bookmarked the batch.
func (s *SavedService) IsSaved(ctx context.Context, claims *models.JWTClaims, batchID string) (bool, error) {
	if err := s.requireCustomer(claims); err != nil {
		return false, err
	}
	saved, err := s.store.IsSaved(ctx, claims.UserID, batchID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check saved herb")
	}
	return saved, nil
}

func (s *SavedService) requireCustomer(claims *models.JWTClaims) error {
	if claims == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if claims.Role != models.RoleCustomer {
		return appErrors.Clone(appErrors.ErrForbidden, "customer role required")
	}
	return nil
}
