package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herbtrace/herbtrace-api/internal/dto"
	"github.com/herbtrace/herbtrace-api/internal/integrity"
	"github.com/herbtrace/herbtrace-api/internal/models"
	"github.com/herbtrace/herbtrace-api/internal/service"
)

type verifyLookupMock struct {
	batch *models.HerbBatch
}

func (m *verifyLookupMock) FindByCode(ctx context.Context, batchCode string) (*models.HerbBatch, error) {
	if m.batch != nil && m.batch.BatchCode == batchCode {
		return m.batch, nil
	}
	return nil, nil
}

func (m *verifyLookupMock) FindByID(ctx context.Context, id string) (*models.HerbBatch, error) {
	return nil, nil
}

func newVerifyHandler(batch *models.HerbBatch) *VerificationHandler {
	svc := service.NewVerificationService(&verifyLookupMock{batch: batch}, nil, nil, nil, service.VerificationConfig{
		StaticDatasetEnabled: true,
	})
	return NewVerificationHandler(svc)
}

func postVerify(t *testing.T, handler *VerificationHandler, identifier string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, err := json.Marshal(dto.VerifyRequest{Identifier: identifier})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, "/verify", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Verify(c)
	return w
}

func TestVerifyHandlerSealedBatch(t *testing.T) {
	batch := &models.HerbBatch{
		ID:             "b1",
		BatchCode:      "ATB-2025-000123",
		FarmerID:       "f1",
		HerbName:       "Ashwagandha",
		ScientificName: "Withania somnifera",
		FarmerName:     "Rajesh Patel",
		HarvestRegion:  "Mandsaur, Madhya Pradesh",
		HarvestDate:    "2025-09-15",
		Status:         models.BatchStatusActive,
	}
	digest := integrity.Digest(batch.ProvenanceFields())
	batch.Hash = &digest

	w := postVerify(t, newVerifyHandler(batch), batch.BatchCode)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.VerificationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, models.OutcomeVerified, envelope.Data.Outcome)
	assert.Equal(t, models.SourceDatabase, envelope.Data.Source)
	assert.Equal(t, digest, envelope.Data.ComputedDigest)
}

func TestVerifyHandlerStaticFixture(t *testing.T) {
	w := postVerify(t, newVerifyHandler(nil), "ATB-2025-001")
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.VerificationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, models.SourceStatic, envelope.Data.Source)
	assert.Equal(t, models.OutcomeVerified, envelope.Data.Outcome)
}

func TestVerifyHandlerBlankIdentifier(t *testing.T) {
	w := postVerify(t, newVerifyHandler(nil), "   ")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyHandlerUnknownIdentifier(t *testing.T) {
	w := postVerify(t, newVerifyHandler(nil), "ATB-2099-999999")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
