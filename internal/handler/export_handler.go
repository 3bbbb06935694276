package handler

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/herbtrace/herbtrace-api/internal/service"
	"github.com/herbtrace/herbtrace-api/pkg/response"
)

// ExportHandler exposes export generation and signed downloads.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// ListingsCSV godoc
// @Summary Export my listings
// @Description Export the calling farmer's batches as CSV
// @Tags Farmer
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /farmer/exports/listings [post]
func (h *ExportHandler) ListingsCSV(c *gin.Context) {
	artifact, err := h.service.FarmerListingsCSV(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, artifact)
}

// Certificate godoc
// @Summary Export a provenance certificate
// @Description Render the certificate PDF for an owned batch
// @Tags Farmer
// @Produce json
// @Param id path string true "Batch id"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /farmer/batches/{id}/certificate [post]
func (h *ExportHandler) Certificate(c *gin.Context) {
	artifact, err := h.service.Certificate(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, artifact)
}

// Download godoc
// @Summary Download an export
// @Description Stream an artifact referenced by a signed token
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /downloads/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, name, err := h.service.DownloadByToken(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Status(http.StatusOK)
	http.ServeContent(c.Writer, c.Request, name, fileModTime(file), file)
}

func fileModTime(f *os.File) time.Time {
	info, err := f.Stat()
	if err != nil {
		return time.Now()
	}
	return info.ModTime()
}
