package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/herbtrace/herbtrace-api/internal/dto"
	"github.com/herbtrace/herbtrace-api/internal/models"
	appErrors "github.com/herbtrace/herbtrace-api/pkg/errors"
)

type orderStore interface {
	CreateWithItems(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
}

// OrderService places and lists customer orders.
type OrderService struct {
	store     orderStore
	batches   batchLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewOrderService constructs an OrderService.
func NewOrderService(store orderStore, batches batchLookup, validate *validator.Validate, logger *zap.Logger) *OrderService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{store: store, batches: batches, validator: validate, logger: logger}
}

// Checkout places an order from the cart. Herb name and unit price are
// snapshotted per line so later commercial edits do not rewrite order
// history. Suspended listings cannot be purchased.
func (s *OrderService) Checkout(ctx context.Context, claims *models.JWTClaims, req dto.CheckoutRequest) (*models.Order, error) {
	if claims == nil || claims.Role != models.RoleCustomer {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "customer role required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid checkout payload")
	}

	order := &models.Order{
		UserID:     claims.UserID,
		Status:     models.OrderPlaced,
		ShippingTo: req.ShippingTo,
		Items:      make([]models.OrderItem, 0, len(req.Items)),
	}

	for _, line := range req.Items {
		batch, err := s.batches.FindByID(ctx, line.BatchID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
		}
		if batch == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found: "+line.BatchID)
		}
		if batch.Status != models.BatchStatusActive {
			return nil, appErrors.Clone(appErrors.ErrConflict, "batch is not available for purchase: "+batch.BatchCode)
		}
		order.Items = append(order.Items, models.OrderItem{
			BatchID:   batch.ID,
			HerbName:  batch.HerbName,
			UnitPrice: batch.Price,
			Unit:      batch.Unit,
			Quantity:  line.Quantity,
		})
		order.TotalAmount += batch.Price * float64(line.Quantity)
	}

	if err := s.store.CreateWithItems(ctx, order); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to place order")
	}
	return order, nil
}

// List returns the caller's orders newest-first.
func (s *OrderService) List(ctx context.Context, claims *models.JWTClaims) ([]models.Order, error) {
	if claims == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	orders, err := s.store.ListByUser(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list orders")
	}
	return orders, nil
}

// Get returns one of the caller's orders by id.
func (s *OrderService) Get(ctx context.Context, claims *models.JWTClaims, orderID string) (*models.Order, error) {
	if claims == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	order, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load order")
	}
	if order == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "order not found")
	}
	if order.UserID != claims.UserID && claims.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "order belongs to another user")
	}
	return order, nil
}
