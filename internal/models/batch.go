package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/herbtrace/herbtrace-api/internal/integrity"
)

// BatchStatus is the lifecycle flag on a listed batch.
type BatchStatus string

const (
	BatchStatusActive    BatchStatus = "active"
	BatchStatusSuspended BatchStatus = "suspended"
)

// ProcessingStep is one entry in a batch's processing timeline.
type ProcessingStep struct {
	Step        string `json:"step"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// ProcessingSteps is the ordered processing timeline, stored as jsonb.
type ProcessingSteps []ProcessingStep

// Value implements driver.Valuer for jsonb persistence.
func (p ProcessingSteps) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for jsonb retrieval.
func (p *ProcessingSteps) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("unsupported processing_steps type %T", src)
	}
}

// StepNames returns the ordered step names.
func (p ProcessingSteps) StepNames() []string {
	names := make([]string, len(p))
	for i, step := range p {
		names[i] = step.Step
	}
	return names
}

// HerbBatch is a registered unit of herb provenance, sealed with a
// content digest at creation time.
type HerbBatch struct {
	ID             string          `db:"id" json:"id"`
	BatchCode      string          `db:"batch_code" json:"batch_code"`
	FarmerID       string          `db:"farmer_id" json:"farmer_id"`
	HerbName       string          `db:"herb_name" json:"herb_name"`
	ScientificName string          `db:"scientific_name" json:"scientific_name"`
	FarmerName     string          `db:"farmer_name" json:"farmer_name"`
	Description    *string         `db:"description" json:"description,omitempty"`
	HarvestRegion  string          `db:"harvest_region" json:"harvest_region"`
	HarvestDate    string          `db:"harvest_date" json:"harvest_date"`
	Steps          ProcessingSteps `db:"processing_steps" json:"processing_steps"`
	Price          float64         `db:"price" json:"price"`
	Unit           string          `db:"unit" json:"unit"`
	Category       *string         `db:"category" json:"category,omitempty"`
	ImageURL       *string         `db:"image_url" json:"image_url,omitempty"`
	Hash           *string         `db:"hash" json:"hash,omitempty"`
	Status         BatchStatus     `db:"status" json:"status"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// ProvenanceFields builds the canonical mapping the integrity digest is
// computed over. Only the immutable provenance fields participate;
// price, unit, description, category, image and status do not: the
// digest is a provenance seal, not a full-record checksum.
// Step names are joined in timeline order; step dates and descriptions
// are excluded (see integrity.StepDelimiter).
func (b *HerbBatch) ProvenanceFields() map[string]interface{} {
	return map[string]interface{}{
		"batchCode":       b.BatchCode,
		"herbName":        b.HerbName,
		"scientificName":  b.ScientificName,
		"farmerName":      b.FarmerName,
		"harvestRegion":   b.HarvestRegion,
		"harvestDate":     b.HarvestDate,
		"farmerId":        b.FarmerID,
		"processingSteps": strings.Join(b.Steps.StepNames(), integrity.StepDelimiter),
	}
}

// BatchFilter captures browse filtering criteria.
type BatchFilter struct {
	Category string
	Region   string
	Search   string
	FarmerID string
	Status   *BatchStatus
	Page     int
	PageSize int
}

// CommercialUpdate carries the mutable, non-provenance fields of a
// batch. A nil pointer leaves the column untouched.
type CommercialUpdate struct {
	Price       *float64
	Unit        *string
	Description *string
	Category    *string
	ImageURL    *string
}
