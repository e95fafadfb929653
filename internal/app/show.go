package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"healthchain/internal/storage"
	"healthchain/internal/vitals"
)

// Show prints recent readings and the current risk assessment.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show readings")
	}
	if closeStore != nil {
		defer closeStore()
	}

	subject := a.Config.App.SubjectID
	records, err := store.ListRecentReadings(ctx, subject, opts.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stdout, "no readings found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tHR\tHR status\tBP\tBP status\tTemp\tSpO2\tSpO2 status")

	for _, rec := range records {
		r := rec.Reading
		status, err := vitals.ClassifyReading(r)
		if err != nil {
			return fmt.Errorf("classify stored reading %d: %w", rec.ID, err)
		}
		fmt.Fprintf(
			writer,
			"%s\t%d\t%s\t%d/%d\t%s\t%s%s\t%d%%\t%s\n",
			r.Timestamp.UTC().Format(time.RFC3339),
			r.HeartRate,
			status.HeartRate,
			r.BloodPressureSystolic,
			r.BloodPressureDiastolic,
			status.BloodPressure,
			r.Temperature.StringFixed(1),
			r.TemperatureUnit,
			r.OxygenSaturation,
			status.Oxygen,
		)
	}
	writer.Flush()

	assessment, err := store.LatestRiskAssessment(ctx, subject)
	if err != nil {
		if errors.Is(err, storage.ErrNoAssessment) {
			fmt.Fprintln(os.Stdout, "\nno assessment yet; run the assess command")
			return nil
		}
		return err
	}

	fmt.Fprintf(os.Stdout, "\nCurrent assessment (%s): %s risk\n",
		assessment.AssessedAt.UTC().Format(time.RFC3339), assessment.RiskLevel)
	fmt.Fprintf(os.Stdout, "Factors: %s\n", joinOrDash(assessment.RiskFactors))
	return nil
}
