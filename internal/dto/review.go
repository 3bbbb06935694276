package dto

import "github.com/herbtrace/herbtrace-api/internal/models"

// CreateReviewRequest submits or replaces the caller's review of a batch.
type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

// ReviewList bundles reviews with their aggregate summary.
type ReviewList struct {
	Reviews []models.Review      `json:"reviews"`
	Summary models.RatingSummary `json:"summary"`
}
