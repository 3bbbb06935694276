package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/herbtrace/herbtrace-api/internal/dto"
	"github.com/herbtrace/herbtrace-api/internal/service"
	appErrors "github.com/herbtrace/herbtrace-api/pkg/errors"
	"github.com/herbtrace/herbtrace-api/pkg/response"
)

// BatchHandler exposes browse, registration and lifecycle endpoints.
type BatchHandler struct {
	service *service.BatchService
}

// NewBatchHandler creates a new handler.
func NewBatchHandler(svc *service.BatchService) *BatchHandler {
	return &BatchHandler{service: svc}
}

// Browse godoc
// @Summary Browse herbs
// @Description List active batches with optional filters
// @Tags Herbs
// @Produce json
// @Param category query string false "Category"
// @Param region query string false "Harvest region"
// @Param search query string false "Herb or scientific name"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /herbs [get]
func (h *BatchHandler) Browse(c *gin.Context) {
	var filter dto.BatchListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid browse query"))
		return
	}

	items, pagination, err := h.service.Browse(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Herb detail
// @Description Resolve a batch by id or code for the detail page
// @Tags Herbs
// @Produce json
// @Param id path string true "Batch id or code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /herbs/{id} [get]
func (h *BatchHandler) Get(c *gin.Context) {
	stored, fixture, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if fixture != nil {
		response.JSON(c, http.StatusOK, fixture, nil)
		return
	}
	response.JSON(c, http.StatusOK, stored, nil)
}

// Create godoc
// @Summary Register a batch
// @Description Register and seal a new herb batch
// @Tags Farmer
// @Accept json
// @Produce json
// @Param payload body dto.CreateBatchRequest true "Batch payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /farmer/batches [post]
func (h *BatchHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid batch payload"))
		return
	}

	batch, err := h.service.Register(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, batch)
}

// ListMine godoc
// @Summary My batches
// @Description List the calling farmer's batches
// @Tags Farmer
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /farmer/batches [get]
func (h *BatchHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "24"))

	items, pagination, err := h.service.ListForFarmer(c.Request.Context(), claims.UserID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, pagination)
}

// Update godoc
// @Summary Update a batch
// @Description Edit commercial fields of an owned batch
// @Tags Farmer
// @Accept json
// @Produce json
// @Param id path string true "Batch id"
// @Param payload body dto.UpdateBatchRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /farmer/batches/{id} [patch]
func (h *BatchHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid update payload"))
		return
	}

	batch, err := h.service.UpdateCommercial(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, batch, nil)
}

// Delete godoc
// @Summary Delete a batch
// @Description Remove an owned batch listing
// @Tags Farmer
// @Produce json
// @Param id path string true "Batch id"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /farmer/batches/{id} [delete]
func (h *BatchHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// SetStatus godoc
// @Summary Moderate a listing
// @Description Suspend or reinstate a batch listing
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Batch id"
// @Param payload body dto.SetBatchStatusRequest true "Status payload"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/batches/{id}/status [put]
func (h *BatchHandler) SetStatus(c *gin.Context) {
	claims := claimsFromContext(c)

	var req dto.SetBatchStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	if err := h.service.SetStatus(c.Request.Context(), claims, c.Param("id"), req.Status); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
