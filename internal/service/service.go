package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"healthchain/internal/alerting"
	"healthchain/internal/config"
	"healthchain/internal/feed"
	"healthchain/internal/scheduler"
	"healthchain/internal/storage"
	"healthchain/internal/vitals"
)

// Service orchestrates sampling, classification, persistence, risk
// assessment, and alerting.
type Service struct {
	scheduler   *scheduler.Scheduler
	source      feed.Source
	readings    storage.ReadingStore
	assessments storage.AssessmentStore
	alertStore  storage.AlertStore
	notifier    alerting.Notifier
	logger      zerolog.Logger

	subjectID  string
	windowSize int
	minLevel   vitals.RiskLevel
	cooldown   time.Duration
	channels   []string
	alertsOn   bool
	locker     storage.AdvisoryLocker
	lockKey    int64

	// lastAlert is touched only from the single sampling loop.
	lastAlert time.Time
}

// New constructs the monitoring service.
func New(cfg *config.Config, sched *scheduler.Scheduler, source feed.Source, readings storage.ReadingStore, assessments storage.AssessmentStore, alertStore storage.AlertStore, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	var locker storage.AdvisoryLocker
	if l, ok := readings.(storage.AdvisoryLocker); ok {
		locker = l
	}

	return &Service{
		scheduler:   sched,
		source:      source,
		readings:    readings,
		assessments: assessments,
		alertStore:  alertStore,
		notifier:    notifier,
		logger:      logger.With().Str("component", "service").Logger(),
		subjectID:   cfg.App.SubjectID,
		windowSize:  cfg.Assessment.WindowSize,
		minLevel:    cfg.Alerting.MinLevel(),
		cooldown:    cfg.Alerting.Cooldown,
		channels:    cfg.Alerting.Channels,
		alertsOn:    cfg.Alerting.Enabled,
		locker:      locker,
		lockKey:     cfg.Scheduler.AdvisoryLockKey,
	}
}

// Run begins the sampling loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.ProcessTick)
}

// ProcessTick executes one sampling instant.
func (s *Service) ProcessTick(ctx context.Context, at time.Time) error {
	unlock, proceed, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	if !proceed {
		s.logger.Debug().Time("sample", at).Msg("skip sample because advisory lock held elsewhere")
		return nil
	}
	if unlock != nil {
		defer unlock()
	}

	return s.executeTick(ctx, at)
}

func (s *Service) executeTick(ctx context.Context, at time.Time) error {
	reading, err := s.source.Next(ctx)
	if err != nil {
		return fmt.Errorf("next reading: %w", err)
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = at
	}

	status, err := vitals.ClassifyReading(reading)
	if err != nil {
		return fmt.Errorf("classify reading: %w", err)
	}

	if s.readings != nil {
		if _, err := s.readings.AppendReading(ctx, s.subjectID, reading); err != nil {
			s.logger.Error().Err(err).Time("sample", at).Msg("failed to append reading")
		}
	}

	s.logger.Info().Time("sample", at).
		Int("heart_rate", reading.HeartRate).
		Str("heart_rate_status", string(status.HeartRate)).
		Int("oxygen", reading.OxygenSaturation).
		Str("oxygen_status", string(status.Oxygen)).
		Int("systolic", reading.BloodPressureSystolic).
		Str("bp_status", string(status.BloodPressure)).
		Str("temperature_status", string(status.Temperature)).
		Msg("reading recorded")

	history, err := s.history(ctx, reading)
	if err != nil {
		// An I/O failure is surfaced as an error and never papered over
		// with fabricated history.
		return err
	}

	assessment := vitals.AssessRisk(history, at)
	if assessment == nil {
		s.logger.Debug().Time("sample", at).Msg("no history to assess")
		return nil
	}
	score := vitals.HealthScore(history)

	if s.assessments != nil {
		if _, err := s.assessments.UpsertRiskAssessment(ctx, s.subjectID, *assessment); err != nil {
			s.logger.Error().Err(err).Time("sample", at).Msg("failed to upsert assessment")
		}
	}

	s.maybeAlert(ctx, at, assessment, score)
	return nil
}

// history loads the assessment window, falling back to the current reading
// alone when persistence is disabled.
func (s *Service) history(ctx context.Context, current vitals.Reading) ([]vitals.Reading, error) {
	if s.readings == nil {
		return []vitals.Reading{current}, nil
	}

	records, err := s.readings.ListRecentReadings(ctx, s.subjectID, s.windowSize)
	if err != nil {
		return nil, fmt.Errorf("list recent readings: %w", err)
	}

	history := make([]vitals.Reading, 0, len(records))
	for _, rec := range records {
		history = append(history, rec.Reading)
	}
	if len(history) == 0 {
		history = append(history, current)
	}
	return history, nil
}

func (s *Service) maybeAlert(ctx context.Context, at time.Time, assessment *vitals.RiskAssessment, score int) {
	if !s.alertsOn || s.notifier == nil {
		return
	}
	if assessment.RiskLevel.Rank() < s.minLevel.Rank() {
		return
	}
	if !s.lastAlert.IsZero() && at.Sub(s.lastAlert) < s.cooldown {
		s.logger.Debug().Time("sample", at).Msg("alert suppressed by cooldown")
		return
	}

	if s.alertStore != nil {
		record := storage.AlertRecord{
			SubjectID:   s.subjectID,
			RiskLevel:   assessment.RiskLevel,
			RiskFactors: assessment.RiskFactors,
			HealthScore: score,
			Channels:    s.channels,
		}
		if _, err := s.alertStore.InsertAlert(ctx, record); err != nil {
			s.logger.Error().Err(err).Time("sample", at).Msg("failed to persist alert record")
		}
	}

	note := alerting.Notification{
		SubjectID:       s.subjectID,
		AssessedAt:      assessment.AssessedAt,
		RiskLevel:       assessment.RiskLevel,
		RiskFactors:     assessment.RiskFactors,
		Recommendations: assessment.Recommendations,
		HealthScore:     score,
		Channels:        s.channels,
	}
	if err := s.notifier.Notify(ctx, note); err != nil {
		s.logger.Error().Err(err).Time("sample", at).Msg("failed to dispatch alert")
		return
	}
	s.lastAlert = at
}

func (s *Service) acquireLock(ctx context.Context) (func(), bool, error) {
	if s.lockKey == 0 || s.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := s.locker.TryAdvisoryLock(ctx, s.lockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
