package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"healthchain/internal/insights"
	"healthchain/internal/vitals"
)

// Assess runs a one-shot risk assessment over the stored history, persists
// it, and prints the result with derived insights and trends.
func (a *App) Assess(ctx context.Context) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot assess")
	}
	if closeStore != nil {
		defer closeStore()
	}

	subject := a.Config.App.SubjectID
	records, err := store.ListRecentReadings(ctx, subject, a.Config.Assessment.WindowSize)
	if err != nil {
		return err
	}

	// Recent-first from storage; trends want oldest-first.
	history := make([]vitals.Reading, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		history = append(history, records[i].Reading)
	}

	assessment := vitals.AssessRisk(history, time.Now().UTC())
	if assessment == nil {
		fmt.Fprintln(os.Stdout, "no readings available for assessment")
		return nil
	}

	if _, err := store.UpsertRiskAssessment(ctx, subject, *assessment); err != nil {
		return err
	}

	score := vitals.HealthScore(history)
	summary := vitals.Summarize(history)

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Subject\t%s\n", subject)
	fmt.Fprintf(writer, "Assessed (UTC)\t%s\n", assessment.AssessedAt.Format(time.RFC3339))
	fmt.Fprintf(writer, "Readings\t%d\n", summary.Count)
	fmt.Fprintf(writer, "Risk level\t%s\n", assessment.RiskLevel)
	fmt.Fprintf(writer, "Risk factors\t%s\n", joinOrDash(assessment.RiskFactors))
	fmt.Fprintf(writer, "Health score\t%d/100\n", score)
	writer.Flush()

	fmt.Fprintln(os.Stdout, "\nRecommendations:")
	for _, rec := range assessment.Recommendations {
		fmt.Fprintf(os.Stdout, "  - %s\n", rec)
	}

	fmt.Fprintln(os.Stdout, "\nInsights:")
	for _, insight := range insights.ForSummary(summary) {
		fmt.Fprintf(os.Stdout, "  [%s] %s: %s\n", insight.Kind, insight.Title, insight.Description)
	}

	fmt.Fprintln(os.Stdout, "\nTrends:")
	trendWriter := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, trend := range insights.Trends(history) {
		fmt.Fprintf(trendWriter, "  %s\t%s\t%s%%\n", trend.Metric, trend.Direction, trend.ChangePct.StringFixed(1))
	}
	trendWriter.Flush()

	return nil
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
