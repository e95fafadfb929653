package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"healthchain/internal/alerting"
	"healthchain/internal/config"
	"healthchain/internal/feed"
	"healthchain/internal/scheduler"
	"healthchain/internal/service"
	"healthchain/internal/storage"
	"healthchain/internal/vitals"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newSource() (feed.Source, error) {
	switch a.Config.Feed.Mode {
	case "simulated":
		return feed.NewSimulated(a.simulatedOptions(), nil, a.Logger)
	case "static":
		return feed.NewStatic(demoReadings(a.Config.Feed.Unit()), true), nil
	default:
		return nil, fmt.Errorf("unsupported feed mode %q", a.Config.Feed.Mode)
	}
}

func (a *App) simulatedOptions() feed.SimulatedOptions {
	f := a.Config.Feed
	return feed.SimulatedOptions{
		HeartRateMin:   f.HeartRateMin,
		HeartRateMax:   f.HeartRateMax,
		SystolicMin:    f.SystolicMin,
		SystolicMax:    f.SystolicMax,
		DiastolicMin:   f.DiastolicMin,
		DiastolicMax:   f.DiastolicMax,
		OxygenMin:      f.OxygenMin,
		OxygenMax:      f.OxygenMax,
		TemperatureMin: f.TemperatureMin,
		TemperatureMax: f.TemperatureMax,
		Unit:           f.Unit(),
	}
}

// demoReadings is the fixed reading set behind feed.mode=static.
func demoReadings(unit vitals.TemperatureUnit) []vitals.Reading {
	temp := decimal.RequireFromString("98.6")
	if unit == vitals.UnitCelsius {
		temp = decimal.RequireFromString("37.0")
	}
	return []vitals.Reading{
		{HeartRate: 72, BloodPressureSystolic: 120, BloodPressureDiastolic: 80, OxygenSaturation: 98, Temperature: temp, TemperatureUnit: unit},
		{HeartRate: 68, BloodPressureSystolic: 118, BloodPressureDiastolic: 78, OxygenSaturation: 97, Temperature: temp, TemperatureUnit: unit},
		{HeartRate: 76, BloodPressureSystolic: 124, BloodPressureDiastolic: 82, OxygenSaturation: 99, Temperature: temp, TemperatureUnit: unit},
	}
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// Run executes the long-running monitoring service.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; persistence disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		AlignToStart: a.Config.Scheduler.AlignToInterval,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	source, err := a.newSource()
	if err != nil {
		return err
	}
	notifier := a.newNotifier()

	var readingStore storage.ReadingStore
	var assessmentStore storage.AssessmentStore
	var alertStore storage.AlertStore
	if store != nil {
		readingStore = store
		assessmentStore = store
		alertStore = store
	}

	svc := service.New(a.Config, sched, source, readingStore, assessmentStore, alertStore, notifier, a.Logger)

	a.Logger.Info().Str("feed_mode", a.Config.Feed.Mode).Msg("starting monitoring service")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("monitoring service stopped")
	return nil
}

// ExportOptions hold parameters for exporting historical readings.
type ExportOptions struct {
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
}

// SeedOptions configure the demo-data seeding job.
type SeedOptions struct {
	From   time.Time
	To     time.Time
	Seed   int64
	DryRun bool
}
