package models

import "time"

// SavedHerb links a user to a batch they bookmarked. BatchID may be a
// store-assigned id or a static-dataset identifier; both live in the
// same identifier space, so no foreign key is assumed.
type SavedHerb struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	BatchID   string    `db:"batch_id" json:"batch_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
