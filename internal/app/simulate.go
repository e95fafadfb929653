package app

import (
	"context"
	"errors"
	"time"

	"healthchain/internal/feed"
	"healthchain/internal/service"
	"healthchain/internal/vitals"
)

// SimulateAlert pushes a single crafted reading through the full assessment
// and notification path, without touching the database.
func (a *App) SimulateAlert(ctx context.Context, reading vitals.Reading) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting is disabled")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("no alert channel configured")
	}

	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now().UTC()
	}
	source := feed.NewStatic([]vitals.Reading{reading}, false)

	svc := service.New(a.Config, nil, source, nil, nil, nil, notifier, a.Logger)

	return svc.ProcessTick(ctx, reading.Timestamp)
}
