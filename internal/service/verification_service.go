package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/herbtrace/herbtrace-api/internal/dto"
	"github.com/herbtrace/herbtrace-api/internal/integrity"
	"github.com/herbtrace/herbtrace-api/internal/models"
	"github.com/herbtrace/herbtrace-api/internal/staticdata"
	appErrors "github.com/herbtrace/herbtrace-api/pkg/errors"
)

type batchLookup interface {
	FindByCode(ctx context.Context, batchCode string) (*models.HerbBatch, error)
	FindByID(ctx context.Context, id string) (*models.HerbBatch, error)
}

type historyStore interface {
	ExistsSince(ctx context.Context, userID, batchID string, since time.Time) (bool, error)
	Insert(ctx context.Context, event *models.VerificationEvent) error
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]dto.VerificationHistoryItem, int, error)
}

// VerificationConfig tunes the verification flow.
type VerificationConfig struct {
	StaticDatasetEnabled bool
	RecordHistory        bool
}

// VerificationService resolves a submitted identifier to a batch record
// and checks the record's integrity seal.
type VerificationService struct {
	batches batchLookup
	history historyStore
	metrics *MetricsService
	logger  *zap.Logger
	config  VerificationConfig

	// findStatic is swappable in tests.
	findStatic func(id string) (*staticdata.Batch, bool)
}

// NewVerificationService constructs a VerificationService.
func NewVerificationService(batches batchLookup, history historyStore, metrics *MetricsService, logger *zap.Logger, config VerificationConfig) *VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerificationService{
		batches:    batches,
		history:    history,
		metrics:    metrics,
		logger:     logger,
		config:     config,
		findStatic: staticdata.Find,
	}
}

// Verify resolves the identifier and checks the resolved record's seal.
// Lookup order: static dataset by exact id, then the record store by
// batch code, then by opaque id. Static entries are pre-verified and are
// returned without recomputation. A record-store failure is reported as
// retryable, never as not-found.
//
// claims may be nil (the endpoint is public). When a customer verifies a
// stored batch, the attempt is appended to their history at most once
// per batch per UTC calendar day.
func (s *VerificationService) Verify(ctx context.Context, identifier string, claims *models.JWTClaims) (*dto.VerificationResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "identifier is required")
	}

	if s.config.StaticDatasetEnabled {
		if fixture, ok := s.findStatic(identifier); ok {
			result := &dto.VerificationResult{
				Source:       models.SourceStatic,
				Outcome:      fixture.IntegrityStatus,
				StaticBatch:  fixture,
				StoredDigest: fixture.Hash,
			}
			s.metrics.RecordVerification(result.Source, result.Outcome)
			return result, nil
		}
	}

	batch, err := s.batches.FindByCode(ctx, identifier)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)
	}
	if batch == nil {
		batch, err = s.batches.FindByID(ctx, identifier)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)
		}
	}
	if batch == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
	}

	result := &dto.VerificationResult{
		Source:         models.SourceDatabase,
		StoredBatch:    batch,
		ComputedDigest: integrity.Digest(batch.ProvenanceFields()),
	}

	switch {
	case batch.Hash == nil || *batch.Hash == "":
		result.Outcome = models.OutcomeUnsealed
	case *batch.Hash == result.ComputedDigest:
		result.Outcome = models.OutcomeVerified
		result.StoredDigest = *batch.Hash
	default:
		result.Outcome = models.OutcomeTampered
		result.StoredDigest = *batch.Hash
	}

	if result.Outcome != models.OutcomeUnsealed {
		result.HistoryRecorded = s.recordHistory(ctx, claims, batch.ID, result.Outcome)
	}

	s.metrics.RecordVerification(result.Source, result.Outcome)
	return result, nil
}

// History returns the caller's verification history newest-first.
func (s *VerificationService) History(ctx context.Context, userID string, page, pageSize int) ([]dto.VerificationHistoryItem, *models.Pagination, error) {
	items, total, err := s.history.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load verification history")
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return items, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// recordHistory appends a verification event for customer callers,
// suppressing same-day duplicates per batch. The check and the insert
// are not atomic; a race losing the check only writes an extra row.
// Recording failures never fail the verification itself.
func (s *VerificationService) recordHistory(ctx context.Context, claims *models.JWTClaims, batchID string, outcome models.IntegrityOutcome) bool {
	if !s.config.RecordHistory || claims == nil || claims.Role != models.RoleCustomer {
		return false
	}

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	exists, err := s.history.ExistsSince(ctx, claims.UserID, batchID, dayStart)
	if err != nil {
		s.logger.Warn("verification history lookup failed", zap.String("batch_id", batchID), zap.Error(err))
		return false
	}
	if exists {
		return false
	}

	status := models.VerificationAuthentic
	if outcome == models.OutcomeTampered {
		status = models.VerificationSuspicious
	}

	event := &models.VerificationEvent{
		UserID:     claims.UserID,
		BatchID:    batchID,
		Status:     status,
		VerifiedAt: now,
	}
	if err := s.history.Insert(ctx, event); err != nil {
		s.logger.Warn("verification history insert failed", zap.String("batch_id", batchID), zap.Error(err))
		return false
	}
	return true
}
