package storage

import (
	"time"

	"healthchain/internal/vitals"
)

// ReadingRecord is a persisted vital-sign reading row.
type ReadingRecord struct {
	ID        int64
	SubjectID string
	Reading   vitals.Reading
	CreatedAt time.Time
}

// AssessmentRecord is a persisted risk assessment. The current table holds
// one row per subject; every write is also appended to the history table
// for audit, ordered by AssessedAt.
type AssessmentRecord struct {
	SubjectID       string
	RiskLevel       vitals.RiskLevel
	RiskFactors     []string
	Recommendations []string
	AssessedAt      time.Time
	CreatedAt       time.Time
}

// AlertRecord captures an emitted risk alert for de-duplication/auditing.
type AlertRecord struct {
	ID          int64
	SubjectID   string
	RiskLevel   vitals.RiskLevel
	RiskFactors []string
	HealthScore int
	Channels    []string
	CreatedAt   time.Time
}
