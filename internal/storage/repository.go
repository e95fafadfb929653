package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"healthchain/internal/vitals"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
	// ErrNoAssessment indicates no assessment exists for the subject.
	ErrNoAssessment = errors.New("storage: no assessment for subject")
)

const (
	insertReadingSQL = `INSERT INTO vital_signs (
        subject_id,
        recorded_at,
        heart_rate,
        bp_systolic,
        bp_diastolic,
        temperature,
        temperature_unit,
        oxygen_saturation,
        metadata
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9
    ) RETURNING id, created_at;`

	listRecentReadingsSQL = `SELECT
        id,
        subject_id,
        recorded_at,
        heart_rate,
        bp_systolic,
        bp_diastolic,
        temperature,
        temperature_unit,
        oxygen_saturation,
        metadata,
        created_at
    FROM vital_signs
    WHERE subject_id = $1
    ORDER BY recorded_at DESC
    LIMIT $2;`

	listReadingsBetweenSQL = `SELECT
        id,
        subject_id,
        recorded_at,
        heart_rate,
        bp_systolic,
        bp_diastolic,
        temperature,
        temperature_unit,
        oxygen_saturation,
        metadata,
        created_at
    FROM vital_signs
    WHERE subject_id = $1
      AND recorded_at >= $2
      AND recorded_at < $3
    ORDER BY recorded_at;`

	countReadingsSQL = `SELECT COUNT(*) FROM vital_signs WHERE subject_id = $1;`

	upsertAssessmentSQL = `INSERT INTO risk_assessments (
        subject_id,
        risk_level,
        risk_factors,
        recommendations,
        assessed_at
    ) VALUES (
        $1,$2,$3,$4,$5
    )
    ON CONFLICT (subject_id) DO UPDATE
    SET risk_level      = EXCLUDED.risk_level,
        risk_factors    = EXCLUDED.risk_factors,
        recommendations = EXCLUDED.recommendations,
        assessed_at     = EXCLUDED.assessed_at
    RETURNING subject_id, risk_level, risk_factors, recommendations, assessed_at, created_at;`

	appendAssessmentHistorySQL = `INSERT INTO risk_assessment_history (
        subject_id,
        risk_level,
        risk_factors,
        recommendations,
        assessed_at
    ) VALUES (
        $1,$2,$3,$4,$5
    );`

	latestAssessmentSQL = `SELECT
        subject_id,
        risk_level,
        risk_factors,
        recommendations,
        assessed_at,
        created_at
    FROM risk_assessments
    WHERE subject_id = $1;`

	insertAlertSQL = `INSERT INTO alerts (
        subject_id,
        risk_level,
        risk_factors,
        health_score,
        channels
    ) VALUES (
        $1,$2,$3,$4,$5
    ) RETURNING id, subject_id, risk_level, risk_factors, health_score, channels, created_at;`

	listRecentAlertsSQL = `SELECT
        id,
        subject_id,
        risk_level,
        risk_factors,
        health_score,
        channels,
        created_at
    FROM alerts
    WHERE subject_id = $1
    ORDER BY created_at DESC
    LIMIT $2;`

	deleteAlertsBeforeSQL = `DELETE FROM alerts WHERE created_at < $1;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// ReadingStore defines operations for the append-only vital-sign history.
type ReadingStore interface {
	AppendReading(ctx context.Context, subjectID string, reading vitals.Reading) (ReadingRecord, error)
	ListRecentReadings(ctx context.Context, subjectID string, limit int) ([]ReadingRecord, error)
	ListReadingsBetween(ctx context.Context, subjectID string, from, to time.Time) ([]ReadingRecord, error)
	CountReadings(ctx context.Context, subjectID string) (int64, error)
}

// AssessmentStore defines operations for risk assessment persistence.
type AssessmentStore interface {
	UpsertRiskAssessment(ctx context.Context, subjectID string, assessment vitals.RiskAssessment) (AssessmentRecord, error)
	LatestRiskAssessment(ctx context.Context, subjectID string) (AssessmentRecord, error)
}

// AlertStore defines operations for alert auditing.
type AlertStore interface {
	InsertAlert(ctx context.Context, alert AlertRecord) (AlertRecord, error)
	ListRecentAlerts(ctx context.Context, subjectID string, limit int) ([]AlertRecord, error)
	DeleteAlertsBefore(ctx context.Context, olderThan time.Time) error
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store aggregates access to readings, assessments, and alerts.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, err := conn.Exec(ctxUnlock, advisoryUnlockSQL, key); err != nil {
			// unlock best effort; log omitted in storage package
		}
		conn.Release()
	}
	return unlock, true, nil
}

// AppendReading persists one immutable reading.
func (s *Store) AppendReading(ctx context.Context, subjectID string, reading vitals.Reading) (ReadingRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return ReadingRecord{}, err
	}

	var metadata []byte
	if reading.Metadata != nil {
		metadata, err = json.Marshal(reading.Metadata)
		if err != nil {
			return ReadingRecord{}, fmt.Errorf("marshal reading metadata: %w", err)
		}
	}

	record := ReadingRecord{SubjectID: subjectID, Reading: reading}
	row := pool.QueryRow(ctx, insertReadingSQL,
		subjectID,
		reading.Timestamp,
		reading.HeartRate,
		reading.BloodPressureSystolic,
		reading.BloodPressureDiastolic,
		reading.Temperature.String(),
		string(reading.TemperatureUnit),
		reading.OxygenSaturation,
		metadata,
	)
	if scanErr := row.Scan(&record.ID, &record.CreatedAt); scanErr != nil {
		return ReadingRecord{}, fmt.Errorf("append reading: %w", scanErr)
	}
	return record, nil
}

// ListRecentReadings lists the most recent readings ordered newest first.
func (s *Store) ListRecentReadings(ctx context.Context, subjectID string, limit int) ([]ReadingRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentReadingsSQL, subjectID, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent readings: %w", queryErr)
	}
	defer rows.Close()

	return collectReadings(rows, limit)
}

// ListReadingsBetween lists readings within a time window ordered oldest first.
func (s *Store) ListReadingsBetween(ctx context.Context, subjectID string, from, to time.Time) ([]ReadingRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listReadingsBetweenSQL, subjectID, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list readings between: %w", queryErr)
	}
	defer rows.Close()

	return collectReadings(rows, 0)
}

// CountReadings counts stored readings for a subject.
func (s *Store) CountReadings(ctx context.Context, subjectID string) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countReadingsSQL, subjectID).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count readings: %w", scanErr)
	}
	return count, nil
}

// UpsertRiskAssessment replaces the subject's current assessment and appends
// the same row to the audit history in one transaction.
func (s *Store) UpsertRiskAssessment(ctx context.Context, subjectID string, assessment vitals.RiskAssessment) (AssessmentRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return AssessmentRecord{}, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return AssessmentRecord{}, fmt.Errorf("begin assessment tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var rec AssessmentRecord
	var level string
	row := tx.QueryRow(ctx, upsertAssessmentSQL,
		subjectID,
		string(assessment.RiskLevel),
		assessment.RiskFactors,
		assessment.Recommendations,
		assessment.AssessedAt,
	)
	if scanErr := row.Scan(
		&rec.SubjectID,
		&level,
		&rec.RiskFactors,
		&rec.Recommendations,
		&rec.AssessedAt,
		&rec.CreatedAt,
	); scanErr != nil {
		return AssessmentRecord{}, fmt.Errorf("upsert risk assessment: %w", scanErr)
	}
	rec.RiskLevel = vitals.RiskLevel(level)

	if _, execErr := tx.Exec(ctx, appendAssessmentHistorySQL,
		subjectID,
		string(assessment.RiskLevel),
		assessment.RiskFactors,
		assessment.Recommendations,
		assessment.AssessedAt,
	); execErr != nil {
		return AssessmentRecord{}, fmt.Errorf("append assessment history: %w", execErr)
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		return AssessmentRecord{}, fmt.Errorf("commit assessment tx: %w", commitErr)
	}
	return rec, nil
}

// LatestRiskAssessment returns the subject's current assessment.
func (s *Store) LatestRiskAssessment(ctx context.Context, subjectID string) (AssessmentRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return AssessmentRecord{}, err
	}

	var rec AssessmentRecord
	var level string
	row := pool.QueryRow(ctx, latestAssessmentSQL, subjectID)
	if scanErr := row.Scan(
		&rec.SubjectID,
		&level,
		&rec.RiskFactors,
		&rec.Recommendations,
		&rec.AssessedAt,
		&rec.CreatedAt,
	); scanErr != nil {
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return AssessmentRecord{}, ErrNoAssessment
		}
		return AssessmentRecord{}, fmt.Errorf("latest risk assessment: %w", scanErr)
	}
	rec.RiskLevel = vitals.RiskLevel(level)
	return rec, nil
}

// InsertAlert persists an alert emission.
func (s *Store) InsertAlert(ctx context.Context, alert AlertRecord) (AlertRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return AlertRecord{}, err
	}

	var rec AlertRecord
	var level string
	row := pool.QueryRow(ctx, insertAlertSQL,
		alert.SubjectID,
		string(alert.RiskLevel),
		alert.RiskFactors,
		alert.HealthScore,
		alert.Channels,
	)
	if scanErr := row.Scan(
		&rec.ID,
		&rec.SubjectID,
		&level,
		&rec.RiskFactors,
		&rec.HealthScore,
		&rec.Channels,
		&rec.CreatedAt,
	); scanErr != nil {
		return AlertRecord{}, fmt.Errorf("insert alert: %w", scanErr)
	}
	rec.RiskLevel = vitals.RiskLevel(level)
	return rec, nil
}

// ListRecentAlerts lists most recent alerts for a subject.
func (s *Store) ListRecentAlerts(ctx context.Context, subjectID string, limit int) ([]AlertRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentAlertsSQL, subjectID, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent alerts: %w", queryErr)
	}
	defer rows.Close()

	alerts := make([]AlertRecord, 0, limit)
	for rows.Next() {
		var rec AlertRecord
		var level string
		if err := rows.Scan(
			&rec.ID,
			&rec.SubjectID,
			&level,
			&rec.RiskFactors,
			&rec.HealthScore,
			&rec.Channels,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		rec.RiskLevel = vitals.RiskLevel(level)
		alerts = append(alerts, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return alerts, nil
}

// DeleteAlertsBefore deletes historical alerts.
func (s *Store) DeleteAlertsBefore(ctx context.Context, olderThan time.Time) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, deleteAlertsBeforeSQL, olderThan); execErr != nil {
		return fmt.Errorf("delete alerts before: %w", execErr)
	}
	return nil
}

func collectReadings(rows pgx.Rows, sizeHint int) ([]ReadingRecord, error) {
	records := make([]ReadingRecord, 0, sizeHint)
	for rows.Next() {
		record, scanErr := scanReading(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, record)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

func scanReading(rows pgx.Rows) (ReadingRecord, error) {
	var (
		rec      ReadingRecord
		tempStr  string
		unit     string
		metadata []byte
	)

	if err := rows.Scan(
		&rec.ID,
		&rec.SubjectID,
		&rec.Reading.Timestamp,
		&rec.Reading.HeartRate,
		&rec.Reading.BloodPressureSystolic,
		&rec.Reading.BloodPressureDiastolic,
		&tempStr,
		&unit,
		&rec.Reading.OxygenSaturation,
		&metadata,
		&rec.CreatedAt,
	); err != nil {
		return ReadingRecord{}, err
	}

	temp, err := decimal.NewFromString(tempStr)
	if err != nil {
		return ReadingRecord{}, fmt.Errorf("parse temperature: %w", err)
	}
	rec.Reading.Temperature = temp
	rec.Reading.TemperatureUnit = vitals.TemperatureUnit(unit)

	if len(metadata) > 0 {
		var meta vitals.Metadata
		if err := json.Unmarshal(metadata, &meta); err != nil {
			return ReadingRecord{}, fmt.Errorf("parse reading metadata: %w", err)
		}
		rec.Reading.Metadata = &meta
	}

	return rec, nil
}
