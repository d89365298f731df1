package database

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/shahmeerahmad1435/tracker-app/internal/models"
	"github.com/shahmeerahmad1435/tracker-app/internal/usage"
)

// Repository handles all database operations for the local usage history
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// RecordFlush stores the local copy of one flush attempt. Implements
// usage.Recorder; failures are swallowed by callers, history is best-effort.
func (r *Repository) RecordFlush(entries []usage.Entry, delivered bool) {
	if len(entries) == 0 {
		return
	}

	now := time.Now()
	records := make([]*models.UsageRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, &models.UsageRecord{
			ReportedAt:      now,
			AppName:         strings.ToLower(entry.AppName),
			SiteURL:         entry.SiteURL,
			DurationSeconds: entry.DurationSeconds,
			Delivered:       delivered,
		})
	}
	r.db.Create(records)

	if !delivered {
		_ = r.CreateErrorLog("usage-reporter", errors.New("usage report delivery failed, entries retained for resend"))
	}
}

// GetRecordsSince retrieves all usage records since a given time
func (r *Repository) GetRecordsSince(since time.Time) ([]*models.UsageRecord, error) {
	var records []*models.UsageRecord
	result := r.db.Where("reported_at >= ?", since).Order("reported_at ASC").Find(&records)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query usage records")
	}

	return records, nil
}

// GetAppSummarySince returns delivered usage aggregated per application
// since a given time. SQL does the SUM; the reporter derives percentages.
func (r *Repository) GetAppSummarySince(since time.Time) ([]models.AppSummary, error) {
	var summaries []models.AppSummary

	result := r.db.Model(&models.UsageRecord{}).
		Select("app_name, SUM(duration_seconds) as total_seconds, COUNT(*) as entry_count").
		Where("reported_at >= ? AND delivered = ?", since, true).
		Group("app_name").
		Order("total_seconds DESC").
		Scan(&summaries)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query app summary")
	}

	return summaries, nil
}

// GetSiteSummarySince returns delivered browser usage aggregated per site
func (r *Repository) GetSiteSummarySince(since time.Time) ([]models.AppSummary, error) {
	var summaries []models.AppSummary

	result := r.db.Model(&models.UsageRecord{}).
		Select("app_name, site_url, SUM(duration_seconds) as total_seconds, COUNT(*) as entry_count").
		Where("reported_at >= ? AND delivered = ? AND site_url <> ''", since, true).
		Group("app_name, site_url").
		Order("total_seconds DESC").
		Scan(&summaries)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query site summary")
	}

	return summaries, nil
}

// DeleteOldRecords deletes records older than a specified date (soft delete)
func (r *Repository) DeleteOldRecords(before time.Time) (int64, error) {
	result := r.db.Where("reported_at < ?", before).Delete(&models.UsageRecord{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old records")
	}
	return result.RowsAffected, nil
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(component string, err error) error {
	errorLog := &models.ErrorLog{
		Timestamp: time.Now(),
		Component: component,
		ErrorMsg:  err.Error(),
	}
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// Clear removes all usage records from the database
func (r *Repository) Clear() error {
	result := r.db.Exec("DELETE FROM usage_records")
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear usage records")
	}
	return nil
}
