package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/herbtrace/herbtrace-api/internal/dto"
	"github.com/herbtrace/herbtrace-api/internal/service"
	appErrors "github.com/herbtrace/herbtrace-api/pkg/errors"
	"github.com/herbtrace/herbtrace-api/pkg/response"
)

// ReviewHandler exposes review submission and listing.
type ReviewHandler struct {
	service *service.ReviewService
}

// NewReviewHandler creates a new handler.
func NewReviewHandler(svc *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: svc}
}

// Submit godoc
// @Summary Review a herb
// @Description Submit or replace the caller's review of a batch
// @Tags Customer
// @Accept json
// @Produce json
// @Param id path string true "Batch id"
// @Param payload body dto.CreateReviewRequest true "Review payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /herbs/{id}/reviews [post]
func (h *ReviewHandler) Submit(c *gin.Context) {
	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	review, err := h.service.Submit(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, review)
}

// List godoc
// @Summary Herb reviews
// @Description List reviews and the aggregate rating for a batch
// @Tags Herbs
// @Produce json
// @Param id path string true "Batch id"
// @Success 200 {object} response.Envelope
// @Router /herbs/{id}/reviews [get]
func (h *ReviewHandler) List(c *gin.Context) {
	list, err := h.service.ListForBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}
