package dto

import "github.com/herbtrace/herbtrace-api/internal/models"

// CreateBatchRequest registers (and seals) a new herb batch.
// ProcessingSteps is the raw multiline form value: one step name per
// line, in timeline order.
type CreateBatchRequest struct {
	HerbName        string  `json:"herb_name" validate:"required,min=2,max=100"`
	ScientificName  string  `json:"scientific_name" validate:"required,min=2,max=150"`
	FarmerName      string  `json:"farmer_name" validate:"required,min=2,max=100"`
	Description     string  `json:"description" validate:"max=1000"`
	HarvestRegion   string  `json:"harvest_region" validate:"required,min=2,max=200"`
	HarvestDate     string  `json:"harvest_date" validate:"required"`
	Price           float64 `json:"price" validate:"required,gt=0"`
	Unit            string  `json:"unit" validate:"required,min=1,max=50"`
	Category        string  `json:"category" validate:"required,min=1,max=100"`
	ImageURL        string  `json:"image_url" validate:"omitempty,url"`
	ProcessingSteps string  `json:"processing_steps" validate:"max=2000"`
}

// UpdateBatchRequest modifies the commercial fields of a batch. The
// provenance fields and the stored digest are immutable post-seal and
// have no place here.
type UpdateBatchRequest struct {
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Unit        *string  `json:"unit" validate:"omitempty,min=1,max=50"`
	Description *string  `json:"description" validate:"omitempty,max=1000"`
	Category    *string  `json:"category" validate:"omitempty,min=1,max=100"`
	ImageURL    *string  `json:"image_url" validate:"omitempty,url"`
}

// BatchListFilter carries browse query parameters.
type BatchListFilter struct {
	Category string `form:"category"`
	Region   string `form:"region"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// BatchListItem is a browse row enriched with its rating summary.
type BatchListItem struct {
	models.HerbBatch
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// SetBatchStatusRequest is the admin moderation payload.
type SetBatchStatusRequest struct {
	Status models.BatchStatus `json:"status" validate:"required,oneof=active suspended"`
}
