package app

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"healthchain/internal/storage"
)

// Export renders historical readings as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot export")
	}
	if closeStore != nil {
		defer closeStore()
	}

	to := time.Now().UTC()
	if opts.To != nil {
		to = opts.To.UTC()
	}

	from := to.Add(-time.Duration(opts.MaxPoints) * a.Config.Scheduler.Interval)
	if opts.From != nil {
		from = opts.From.UTC()
	}

	if !from.Before(to) {
		return errors.New("from must be before to")
	}

	records, err := store.ListReadingsBetween(ctx, a.Config.App.SubjectID, from, to)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		a.Logger.Info().Msg("no readings found for export window")
		return nil
	}

	downsampled := downsampleReadings(records, opts.MaxPoints)
	a.Logger.Info().Int("total", len(records)).Int("exported", len(downsampled)).Msg("exporting readings")

	if opts.CSVPath != "" {
		if err := writeReadingsCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeReadingsPNG(opts.PNGPath, downsampled); err != nil {
			return err
		}
	}

	return nil
}

func downsampleReadings(records []storage.ReadingRecord, max int) []storage.ReadingRecord {
	if max <= 0 || len(records) <= max {
		return records
	}

	result := make([]storage.ReadingRecord, 0, max)
	step := float64(len(records)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(records) {
			idx = len(records) - 1
		}
		result = append(result, records[idx])
	}
	return result
}

func writeReadingsCSV(path string, records []storage.ReadingRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"recorded_at", "heart_rate", "bp_systolic", "bp_diastolic", "temperature", "temperature_unit", "oxygen_saturation"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		r := rec.Reading
		row := []string{
			r.Timestamp.Format(time.RFC3339),
			strconv.Itoa(r.HeartRate),
			strconv.Itoa(r.BloodPressureSystolic),
			strconv.Itoa(r.BloodPressureDiastolic),
			r.Temperature.String(),
			string(r.TemperatureUnit),
			strconv.Itoa(r.OxygenSaturation),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeReadingsPNG(path string, records []storage.ReadingRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(records))
	heartRate := make([]float64, len(records))
	oxygen := make([]float64, len(records))
	systolic := make([]float64, len(records))

	for i, rec := range records {
		x[i] = rec.Reading.Timestamp
		heartRate[i] = float64(rec.Reading.HeartRate)
		oxygen[i] = float64(rec.Reading.OxygenSaturation)
		systolic[i] = float64(rec.Reading.BloodPressureSystolic)
	}

	valueFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.0f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Heart rate (BPM) / Systolic (mmHg)",
			ValueFormatter: valueFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name:           "SpO2 (%)",
			ValueFormatter: valueFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Heart rate",
				XValues: x,
				YValues: heartRate,
			},
			chart.TimeSeries{
				Name:    "Systolic",
				XValues: x,
				YValues: systolic,
			},
			chart.TimeSeries{
				Name:    "SpO2",
				XValues: x,
				YValues: oxygen,
				YAxis:   chart.YAxisSecondary,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
