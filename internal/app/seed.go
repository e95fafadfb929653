package app

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"healthchain/internal/feed"
	"healthchain/internal/storage"
)

// Seed backfills historical simulated readings at the configured sampling
// interval, one reading per interval bucket between --from and --to.
func (a *App) Seed(ctx context.Context, opts SeedOptions) error {
	interval := a.Config.Scheduler.Interval
	if interval <= 0 {
		return errors.New("scheduler interval must be positive")
	}

	start := alignForward(opts.From.UTC(), interval)
	end := opts.To.UTC()
	if !start.Before(end) {
		return errors.New("empty seed window; check --from/--to")
	}

	var store *storage.Store
	var closeStore func()
	var err error
	var readings storage.ReadingStore

	if opts.DryRun {
		a.Logger.Warn().Msg("seed dry-run: nothing will be written")
	} else {
		store, closeStore, err = a.openStore(ctx)
		if err != nil {
			return err
		}
		if store == nil {
			return errors.New("database not configured; cannot seed")
		}
		if closeStore != nil {
			defer closeStore()
		}
		readings = store
	}

	var rng *rand.Rand
	if opts.Seed != 0 {
		rng = rand.New(rand.NewSource(opts.Seed))
	}
	source, err := feed.NewSimulated(a.simulatedOptions(), rng, a.Logger)
	if err != nil {
		return err
	}

	subject := a.Config.App.SubjectID
	processed := 0
	failed := 0
	for bucket := start; bucket.Before(end); bucket = bucket.Add(interval) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		reading, err := source.Next(ctx)
		if err != nil {
			return err
		}
		reading.Timestamp = bucket

		if readings == nil {
			processed++
			continue
		}
		if _, err := readings.AppendReading(ctx, subject, reading); err != nil {
			failed++
			a.Logger.Error().Err(err).Time("bucket", bucket).Msg("seed insert failed")
			continue
		}
		processed++
	}

	a.Logger.Info().Int("processed", processed).Int("failed", failed).Msg("seed finished")
	if failed > 0 {
		return errors.New("some buckets failed to seed; check the logs")
	}
	return nil
}

func alignForward(t time.Time, interval time.Duration) time.Time {
	truncated := t.Truncate(interval)
	if truncated.Before(t) {
		return truncated.Add(interval)
	}
	return truncated
}
