package dto

import (
	"github.com/herbtrace/herbtrace-api/internal/models"
	"github.com/herbtrace/herbtrace-api/internal/staticdata"
)

// SavedHerbItem is one bookmark enriched with the batch it points at.
// At most one of StoredBatch / StaticBatch is set; both are nil when the
// batch has since been deleted.
type SavedHerbItem struct {
	models.SavedHerb
	StoredBatch *models.HerbBatch `json:"stored_batch,omitempty"`
	StaticBatch *staticdata.Batch `json:"static_batch,omitempty"`
}

// ProfileStats summarises a customer's marketplace activity.
type ProfileStats struct {
	SavedCount    int `json:"saved_count"`
	HistoryCount  int `json:"history_count"`
	AuthenticRate int `json:"authentic_rate"`
}

// ExportArtifact describes a generated download behind a signed URL.
type ExportArtifact struct {
	Token     string `json:"token"`
	FileName  string `json:"file_name"`
	ExpiresAt string `json:"expires_at"`
}
