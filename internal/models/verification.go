package models

import "time"

// VerificationStatus is the recorded outcome of a verification event.
type VerificationStatus string

const (
	VerificationAuthentic  VerificationStatus = "authentic"
	VerificationSuspicious VerificationStatus = "suspicious"
)

// VerificationEvent is one row of a user's verification history.
// History accumulates across days; within a single calendar day the
// recording policy suppresses duplicates per (user, batch) best-effort.
type VerificationEvent struct {
	ID         string             `db:"id" json:"id"`
	UserID     string             `db:"user_id" json:"user_id"`
	BatchID    string             `db:"batch_id" json:"batch_id"`
	Status     VerificationStatus `db:"status" json:"status"`
	VerifiedAt time.Time          `db:"verified_at" json:"verified_at"`
}

// RecordSource tags where a verified record was resolved from.
type RecordSource string

const (
	SourceStatic   RecordSource = "static"
	SourceDatabase RecordSource = "database"
)

// IntegrityOutcome is the verdict of a verification attempt.
type IntegrityOutcome string

const (
	// OutcomeVerified means the recomputed digest equals the stored seal.
	OutcomeVerified IntegrityOutcome = "verified"
	// OutcomeTampered means the record's current provenance fields no
	// longer produce the stored digest.
	OutcomeTampered IntegrityOutcome = "tampered"
	// OutcomeUnsealed means the record carries no stored digest. The
	// absence of a seal is not evidence of alteration, so it is kept
	// distinct from OutcomeTampered.
	OutcomeUnsealed IntegrityOutcome = "unsealed"
)
