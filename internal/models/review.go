package models

import "time"

// Review is a customer rating for a batch. One review per user per
// batch; resubmitting replaces the previous rating and comment.
type Review struct {
	ID        string    `db:"id" json:"id"`
	BatchID   string    `db:"batch_id" json:"batch_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	UserName  string    `db:"user_name" json:"user_name"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RatingSummary aggregates review scores for a batch.
type RatingSummary struct {
	BatchID     string  `db:"batch_id" json:"batch_id"`
	Average     float64 `db:"average" json:"average"`
	ReviewCount int     `db:"review_count" json:"review_count"`
}
