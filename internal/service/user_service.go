package service

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/herbtrace/herbtrace-api/internal/dto"
	"github.com/herbtrace/herbtrace-api/internal/models"
	appErrors "github.com/herbtrace/herbtrace-api/pkg/errors"
)

type userStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type savedCounter interface {
	CountByUser(ctx context.Context, userID string) (int, error)
}

type verificationStats interface {
	StatsByUser(ctx context.Context, userID string) (total int, authentic int, err error)
}

// UserService covers profile stats and admin account management.
type UserService struct {
	users  userStore
	saved  savedCounter
	events verificationStats
	logger *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(users userStore, saved savedCounter, events verificationStats, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, saved: saved, events: events, logger: logger}
}

// ProfileStats summarises the caller's saved herbs and verification
// history. AuthenticRate is a whole percentage; zero history yields zero.
func (s *UserService) ProfileStats(ctx context.Context, userID string) (*dto.ProfileStats, error) {
	savedCount, err := s.saved.CountByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count saved herbs")
	}
	total, authentic, err := s.events.StatsByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load verification stats")
	}

	stats := &dto.ProfileStats{SavedCount: savedCount, HistoryCount: total}
	if total > 0 {
		stats.AuthenticRate = int(math.Round(float64(authentic) / float64(total) * 100))
	}
	return stats, nil
}

// ListUsers returns accounts for the admin console.
func (s *UserService) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return users, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// SetActive enables or disables an account.
func (s *UserService) SetActive(ctx context.Context, claims *models.JWTClaims, userID string, active bool) error {
	if claims == nil || claims.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}
	if claims.UserID == userID {
		return appErrors.Clone(appErrors.ErrConflict, "cannot change your own account state")
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if err := s.users.SetActive(ctx, userID, active); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update account state")
	}
	return nil
}
