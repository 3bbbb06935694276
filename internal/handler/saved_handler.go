package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/herbtrace/herbtrace-api/internal/service"
	"github.com/herbtrace/herbtrace-api/pkg/response"
)

// SavedHandler exposes the customer bookmark endpoints.
type SavedHandler struct {
	service *service.SavedService
}

// NewSavedHandler creates a new handler.
func NewSavedHandler(svc *service.SavedService) *SavedHandler {
	return &SavedHandler{service: svc}
}

// Save godoc
// @Summary Save a herb
// @Description Bookmark a batch for the calling customer
// @Tags Customer
// @Produce json
// @Param id path string true "Batch id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /customer/saved/{id} [post]
func (h *SavedHandler) Save(c *gin.Context) {
	if err := h.service.Save(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Unsave godoc
// @Summary Remove a saved herb
// @Tags Customer
// @Produce json
// @Param id path string true "Batch id"
// @Success 204 {object} response.Envelope
// @Router /customer/saved/{id} [delete]
func (h *SavedHandler) Unsave(c *gin.Context) {
	if err := h.service.Unsave(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List godoc
// @Summary Saved herbs
// @Description List the caller's bookmarks with batch details
// @Tags Customer
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /customer/saved [get]
func (h *SavedHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// IsSaved godoc
// @Summary Check a bookmark
// @Tags Customer
// @Produce json
// @Param id path string true "Batch id"
// @Success 200 {object} response.Envelope
// @Router /customer/saved/{id} [get]
func (h *SavedHandler) IsSaved(c *gin.Context) {
	saved, err := h.service.IsSaved(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"saved": saved}, nil)
}
