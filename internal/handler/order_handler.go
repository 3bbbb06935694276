package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/herbtrace/herbtrace-api/internal/dto"
	"github.com/herbtrace/herbtrace-api/internal/service"
	appErrors "github.com/herbtrace/herbtrace-api/pkg/errors"
	"github.com/herbtrace/herbtrace-api/pkg/response"
)

// OrderHandler exposes checkout and order history.
type OrderHandler struct {
	service *service.OrderService
}

// NewOrderHandler creates a new handler.
func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{service: svc}
}

// Checkout godoc
// @Summary Place an order
// @Description Place an order from the cart contents
// @Tags Customer
// @Accept json
// @Produce json
// @Param payload body dto.CheckoutRequest true "Checkout payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /customer/orders [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid checkout payload"))
		return
	}

	order, err := h.service.Checkout(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, order)
}

// List godoc
// @Summary My orders
// @Tags Customer
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /customer/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.service.List(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, orders, nil)
}

// Get godoc
// @Summary Order detail
// @Tags Customer
// @Produce json
// @Param id path string true "Order id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /customer/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.service.Get(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, order, nil)
}
