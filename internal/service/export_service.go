package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/herbtrace/herbtrace-api/internal/dto"
	"github.com/herbtrace/herbtrace-api/internal/models"
	appErrors "github.com/herbtrace/herbtrace-api/pkg/errors"
	"github.com/herbtrace/herbtrace-api/pkg/export"
	"github.com/herbtrace/herbtrace-api/pkg/storage"
)

type exportBatchStore interface {
	FindByID(ctx context.Context, id string) (*models.HerbBatch, error)
	List(ctx context.Context, filter models.BatchFilter) ([]models.HerbBatch, int, error)
}

// ExportService renders downloadable artifacts: a farmer's listing CSV
// and per-batch provenance certificates. Artifacts are written to local
// storage and handed out behind short-lived signed tokens.
type ExportService struct {
	batches exportBatchStore
	store   *storage.LocalStorage
	signer  *storage.SignedURLSigner
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(batches exportBatchStore, store *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		batches: batches,
		store:   store,
		signer:  signer,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
	}
}

// FarmerListingsCSV exports all of the calling farmer's batches.
func (s *ExportService) FarmerListingsCSV(ctx context.Context, claims *models.JWTClaims) (*dto.ExportArtifact, error) {
	if claims == nil || (claims.Role != models.RoleFarmer && claims.Role != models.RoleAdmin) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "farmer role required")
	}

	batches, _, err := s.batches.List(ctx, models.BatchFilter{FarmerID: claims.UserID, Page: 1, PageSize: 100})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batches")
	}

	headers := []string{"batch_code", "herb_name", "scientific_name", "harvest_region", "harvest_date", "price", "unit", "status", "hash"}
	rows := make([]map[string]string, len(batches))
	for i, b := range batches {
		hash := ""
		if b.Hash != nil {
			hash = *b.Hash
		}
		rows[i] = map[string]string{
			"batch_code":      b.BatchCode,
			"herb_name":       b.HerbName,
			"scientific_name": b.ScientificName,
			"harvest_region":  b.HarvestRegion,
			"harvest_date":    b.HarvestDate,
			"price":           strconv.FormatFloat(b.Price, 'f', 2, 64),
			"unit":            b.Unit,
			"status":          string(b.Status),
			"hash":            hash,
		}
	}

	data, err := s.csv.Render(export.Dataset{Headers: headers, Rows: rows})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render listings export")
	}

	return s.persist("listings", claims.UserID, "csv", data)
}

// Certificate renders the provenance certificate PDF for a batch. The
// owning farmer and admins may export it.
func (s *ExportService) Certificate(ctx context.Context, claims *models.JWTClaims, batchID string) (*dto.ExportArtifact, error) {
	if claims == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}

	batch, err := s.batches.FindByID(ctx, batchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	if batch == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
	}
	if claims.Role != models.RoleAdmin && batch.FarmerID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "batch belongs to another farmer")
	}

	cert := export.Certificate{
		Title: "Provenance Certificate",
		Fields: []export.CertificateField{
			{Label: "Batch Code", Value: batch.BatchCode},
			{Label: "Herb", Value: batch.HerbName},
			{Label: "Scientific Name", Value: batch.ScientificName},
			{Label: "Farmer", Value: batch.FarmerName},
			{Label: "Harvest Region", Value: batch.HarvestRegion},
			{Label: "Harvest Date", Value: batch.HarvestDate},
			{Label: "Issued", Value: time.Now().UTC().Format("2006-01-02")},
		},
		FooterMsg: "This certificate attests the provenance details sealed at registration time. Verify the batch code at any time to confirm the seal still holds.",
	}
	for _, step := range batch.Steps {
		cert.Timeline = append(cert.Timeline, export.TimelineEntry{
			Step:        step.Step,
			Date:        step.Date,
			Description: step.Description,
		})
	}
	if batch.Hash != nil {
		cert.Digest = *batch.Hash
	}

	data, err := s.pdf.RenderCertificate(cert)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render certificate")
	}

	return s.persist("certificates", batch.BatchCode, "pdf", data)
}

// DownloadByToken validates a signed token and opens the artifact.
func (s *ExportService) DownloadByToken(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download token")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
	}
	return file, filepath.Base(relPath), nil
}

// CleanupExpired removes artifacts older than the signer TTL.
func (s *ExportService) CleanupExpired(ttl time.Duration) {
	deleted, err := s.store.CleanupOlderThan(ttl)
	if err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("removed expired exports", zap.Int("count", len(deleted)))
	}
}

func (s *ExportService) persist(kind, owner, ext string, data []byte) (*dto.ExportArtifact, error) {
	exportID := uuid.NewString()
	fileName := fmt.Sprintf("%s-%s.%s", strings.ToLower(kind), exportID[:8], ext)
	relPath := filepath.Join(kind, owner, fileName)

	if _, err := s.store.Save(relPath, data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
	}

	return &dto.ExportArtifact{
		Token:     token,
		FileName:  fileName,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	}, nil
}
