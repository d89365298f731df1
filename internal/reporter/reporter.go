package reporter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shahmeerahmad1435/tracker-app/internal/database"
	"github.com/shahmeerahmad1435/tracker-app/internal/models"
)

// Reporter generates local usage reports from the delivered history.
type Reporter struct {
	repo *database.Repository
}

// New creates a new reporter
func New(repo *database.Repository) *Reporter {
	return &Reporter{repo: repo}
}

// GenerateReport generates a report for the specified period
func (r *Reporter) GenerateReport(periodType string) (*models.Report, error) {
	period, err := getPeriod(periodType)
	if err != nil {
		return nil, err
	}

	// Raw summaries come pre-summed from SQLite
	summaries, err := r.repo.GetAppSummarySince(period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to get app summary: %w", err)
	}

	sites, err := r.repo.GetSiteSummarySince(period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to get site summary: %w", err)
	}

	var totalSeconds int64
	for i := range summaries {
		summaries[i].TotalMinutes = float64(summaries[i].TotalSeconds) / 60.0
		summaries[i].TotalHours = float64(summaries[i].TotalSeconds) / 3600.0
		totalSeconds += summaries[i].TotalSeconds
	}

	if totalSeconds > 0 {
		for i := range summaries {
			summaries[i].Percentage = (float64(summaries[i].TotalSeconds) / float64(totalSeconds)) * 100.0
		}
	}

	for i := range sites {
		sites[i].TotalMinutes = float64(sites[i].TotalSeconds) / 60.0
		sites[i].TotalHours = float64(sites[i].TotalSeconds) / 3600.0
	}

	report := &models.Report{
		Period:       *period,
		Apps:         summaries,
		Sites:        sites,
		TotalSeconds: totalSeconds,
		TotalMinutes: float64(totalSeconds) / 60.0,
		TotalHours:   float64(totalSeconds) / 3600.0,
		GeneratedAt:  time.Now(),
	}

	return report, nil
}

// History returns the raw usage records for the period, delivered or not,
// in the order they were flushed.
func (r *Reporter) History(periodType string) ([]*models.UsageRecord, error) {
	period, err := getPeriod(periodType)
	if err != nil {
		return nil, err
	}

	records, err := r.repo.GetRecordsSince(period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage records: %w", err)
	}

	return records, nil
}

// getPeriod calculates the time range for the report
func getPeriod(periodType string) (*models.ReportPeriod, error) {
	now := time.Now()
	var start time.Time

	switch periodType {
	case "day", "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return &models.ReportPeriod{Start: start, End: start.Add(24 * time.Hour), Type: periodType}, nil

	case "week":
		// Week starts on Monday
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(weekday - 1))
		return &models.ReportPeriod{Start: start, End: start.AddDate(0, 0, 7), Type: periodType}, nil

	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return &models.ReportPeriod{Start: start, End: start.AddDate(0, 1, 0), Type: periodType}, nil

	default:
		return nil, fmt.Errorf("invalid period type: %s (valid: day, week, month)", periodType)
	}
}

// FormatReportText formats the report as human-readable text
func FormatReportText(report *models.Report) string {
	output := fmt.Sprintf("Usage Report - %s\n", report.Period.Type)
	output += fmt.Sprintf("Period: %s to %s\n",
		report.Period.Start.Format("2006-01-02 15:04"),
		report.Period.End.Format("2006-01-02 15:04"))
	output += fmt.Sprintf("Total Time: %.2fh (%.0fm)\n\n", report.TotalHours, report.TotalMinutes)

	if len(report.Apps) == 0 {
		output += "No usage recorded for this period.\n"
		return output
	}

	output += fmt.Sprintf("%-30s %10s %10s %10s\n", "Application", "Hours", "Minutes", "Percent")
	output += fmt.Sprintf("%s\n", "--------------------------------------------------------------------------------")

	for _, app := range report.Apps {
		output += fmt.Sprintf("%-30s %10.2f %10.0f %9.1f%%\n",
			truncate(app.AppName, 30),
			app.TotalHours,
			app.TotalMinutes,
			app.Percentage)
	}

	if len(report.Sites) > 0 {
		output += fmt.Sprintf("\n%-20s %-40s %10s\n", "Browser", "Site", "Minutes")
		output += fmt.Sprintf("%s\n", "--------------------------------------------------------------------------------")
		for _, site := range report.Sites {
			output += fmt.Sprintf("%-20s %-40s %10.0f\n",
				truncate(site.AppName, 20),
				truncate(site.SiteURL, 40),
				site.TotalMinutes)
		}
	}

	return output
}

// FormatReportJSON formats the report as JSON
func FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
