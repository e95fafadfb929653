package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthchain/internal/alerting"
	"healthchain/internal/config"
	"healthchain/internal/feed"
	"healthchain/internal/storage"
	"healthchain/internal/vitals"
)

type fakeStore struct {
	appended    []storage.ReadingRecord
	assessments []storage.AssessmentRecord
	alerts      []storage.AlertRecord
	listErr     error
}

func (f *fakeStore) AppendReading(ctx context.Context, subjectID string, reading vitals.Reading) (storage.ReadingRecord, error) {
	rec := storage.ReadingRecord{ID: int64(len(f.appended) + 1), SubjectID: subjectID, Reading: reading}
	f.appended = append(f.appended, rec)
	return rec, nil
}

func (f *fakeStore) ListRecentReadings(ctx context.Context, subjectID string, limit int) ([]storage.ReadingRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.appended) > limit {
		return f.appended[len(f.appended)-limit:], nil
	}
	return f.appended, nil
}

func (f *fakeStore) ListReadingsBetween(ctx context.Context, subjectID string, from, to time.Time) ([]storage.ReadingRecord, error) {
	return f.appended, nil
}

func (f *fakeStore) CountReadings(ctx context.Context, subjectID string) (int64, error) {
	return int64(len(f.appended)), nil
}

func (f *fakeStore) UpsertRiskAssessment(ctx context.Context, subjectID string, assessment vitals.RiskAssessment) (storage.AssessmentRecord, error) {
	rec := storage.AssessmentRecord{
		SubjectID:       subjectID,
		RiskLevel:       assessment.RiskLevel,
		RiskFactors:     assessment.RiskFactors,
		Recommendations: assessment.Recommendations,
		AssessedAt:      assessment.AssessedAt,
	}
	f.assessments = append(f.assessments, rec)
	return rec, nil
}

func (f *fakeStore) LatestRiskAssessment(ctx context.Context, subjectID string) (storage.AssessmentRecord, error) {
	if len(f.assessments) == 0 {
		return storage.AssessmentRecord{}, storage.ErrNoAssessment
	}
	return f.assessments[len(f.assessments)-1], nil
}

func (f *fakeStore) InsertAlert(ctx context.Context, alert storage.AlertRecord) (storage.AlertRecord, error) {
	alert.ID = int64(len(f.alerts) + 1)
	f.alerts = append(f.alerts, alert)
	return alert, nil
}

func (f *fakeStore) ListRecentAlerts(ctx context.Context, subjectID string, limit int) ([]storage.AlertRecord, error) {
	return f.alerts, nil
}

func (f *fakeStore) DeleteAlertsBefore(ctx context.Context, olderThan time.Time) error {
	return nil
}

type fakeNotifier struct {
	notes []alerting.Notification
	err   error
}

func (f *fakeNotifier) Notify(ctx context.Context, note alerting.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.notes = append(f.notes, note)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:        config.AppConfig{SubjectID: "demo"},
		Assessment: config.AssessmentConfig{WindowSize: 10},
		Alerting: config.AlertingConfig{
			Enabled:      true,
			MinRiskLevel: "high",
			Cooldown:     time.Minute,
			Channels:     []string{"telegram"},
		},
	}
}

func riskyReading(ts time.Time) vitals.Reading {
	return vitals.Reading{
		HeartRate:              120,
		BloodPressureSystolic:  150,
		BloodPressureDiastolic: 95,
		OxygenSaturation:       90,
		Temperature:            decimal.RequireFromString("98.6"),
		TemperatureUnit:        vitals.UnitFahrenheit,
		Timestamp:              ts,
	}
}

func TestProcessTickPersistsAndAssesses(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	at := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	source := feed.NewStatic([]vitals.Reading{riskyReading(at)}, true)

	svc := New(testConfig(), nil, source, store, store, store, notifier, zerolog.Nop())

	require.NoError(t, svc.ProcessTick(context.Background(), at))

	require.Len(t, store.appended, 1)
	require.Len(t, store.assessments, 1)
	assert.Equal(t, vitals.RiskHigh, store.assessments[0].RiskLevel)
	assert.Equal(t, []string{"Abnormal Heart Rate", "Low Oxygen Saturation", "High Blood Pressure"}, store.assessments[0].RiskFactors)

	require.Len(t, notifier.notes, 1)
	assert.Equal(t, "demo", notifier.notes[0].SubjectID)
	assert.Equal(t, vitals.RiskHigh, notifier.notes[0].RiskLevel)
	require.Len(t, store.alerts, 1)
	assert.Equal(t, 83, store.alerts[0].HealthScore)
}

func TestProcessTickCooldownSuppressesSecondAlert(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	at := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	source := feed.NewStatic([]vitals.Reading{riskyReading(at), riskyReading(at.Add(3 * time.Second))}, false)

	svc := New(testConfig(), nil, source, store, store, store, notifier, zerolog.Nop())

	require.NoError(t, svc.ProcessTick(context.Background(), at))
	require.NoError(t, svc.ProcessTick(context.Background(), at.Add(3*time.Second)))

	assert.Len(t, notifier.notes, 1)
	assert.Len(t, store.alerts, 1)
}

func TestProcessTickBelowThresholdDoesNotAlert(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	at := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	healthy := vitals.Reading{
		HeartRate:             72,
		BloodPressureSystolic: 118,
		OxygenSaturation:      98,
		Temperature:           decimal.RequireFromString("98.6"),
		TemperatureUnit:       vitals.UnitFahrenheit,
		Timestamp:             at,
	}
	source := feed.NewStatic([]vitals.Reading{healthy}, true)

	svc := New(testConfig(), nil, source, store, store, store, notifier, zerolog.Nop())

	require.NoError(t, svc.ProcessTick(context.Background(), at))

	require.Len(t, store.assessments, 1)
	assert.Equal(t, vitals.RiskLow, store.assessments[0].RiskLevel)
	assert.Empty(t, notifier.notes)
	assert.Empty(t, store.alerts)
}

func TestProcessTickSurfacesHistoryIOFailure(t *testing.T) {
	store := &fakeStore{listErr: errors.New("connection refused")}
	at := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	source := feed.NewStatic([]vitals.Reading{riskyReading(at)}, true)

	svc := New(testConfig(), nil, source, store, store, store, &fakeNotifier{}, zerolog.Nop())

	err := svc.ProcessTick(context.Background(), at)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list recent readings")
	assert.Empty(t, store.assessments)
}

func TestProcessTickRejectsUnknownTemperatureUnit(t *testing.T) {
	at := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	bad := riskyReading(at)
	bad.TemperatureUnit = "K"
	source := feed.NewStatic([]vitals.Reading{bad}, true)

	svc := New(testConfig(), nil, source, nil, nil, nil, nil, zerolog.Nop())

	err := svc.ProcessTick(context.Background(), at)
	assert.ErrorIs(t, err, vitals.ErrUnknownTemperatureUnit)
}

func TestProcessTickWithoutPersistenceStillAssesses(t *testing.T) {
	notifier := &fakeNotifier{}
	at := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	source := feed.NewStatic([]vitals.Reading{riskyReading(at)}, true)

	svc := New(testConfig(), nil, source, nil, nil, nil, notifier, zerolog.Nop())

	require.NoError(t, svc.ProcessTick(context.Background(), at))
	require.Len(t, notifier.notes, 1)
}
