package dto

import (
	"github.com/herbtrace/herbtrace-api/internal/models"
	"github.com/herbtrace/herbtrace-api/internal/staticdata"
)

// VerifyRequest submits a batch identifier for authenticity checking.
// The identifier may be a batch code (ATB-2025-000123), an opaque
// store-assigned id, or a static-dataset id.
type VerifyRequest struct {
	Identifier string `json:"identifier" validate:"required"`
}

// VerificationResult reports the outcome of one verification attempt.
// Exactly one of StaticBatch / StoredBatch is set, tagged by Source.
type VerificationResult struct {
	Source  models.RecordSource     `json:"source"`
	Outcome models.IntegrityOutcome `json:"outcome"`

	StaticBatch *staticdata.Batch `json:"static_batch,omitempty"`
	StoredBatch *models.HerbBatch `json:"stored_batch,omitempty"`

	// StoredDigest is the digest persisted at seal time; ComputedDigest
	// is the fresh recomputation over the record's current provenance
	// fields. ComputedDigest is empty for static entries, which are
	// pre-verified and never recomputed.
	StoredDigest   string `json:"stored_digest,omitempty"`
	ComputedDigest string `json:"computed_digest,omitempty"`

	// HistoryRecorded reports whether this attempt added a verification
	// event to the caller's history.
	HistoryRecorded bool `json:"history_recorded"`
}

// VerificationHistoryItem is one history row for the profile page.
type VerificationHistoryItem struct {
	models.VerificationEvent
	BatchCode string `db:"batch_code" json:"batch_code,omitempty"`
	HerbName  string `db:"herb_name" json:"herb_name,omitempty"`
}
