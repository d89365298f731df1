package models

import (
	"time"

	"gorm.io/gorm"
)

// UsageRecord is the local copy of one reported usage entry, kept for the
// report command and post-hoc diagnostics. Delivered is false for entries
// that were part of a failed flush; the same counts reappear as a later
// delivered record once the resend succeeds.
type UsageRecord struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	ReportedAt      time.Time      `gorm:"not null;index" json:"reported_at"`
	AppName         string         `gorm:"not null;index" json:"app_name"`
	SiteURL         string         `gorm:"not null;default:''" json:"site_url"`
	DurationSeconds int64          `gorm:"not null;default:0" json:"duration_seconds"`
	Delivered       bool           `gorm:"not null;default:false;index" json:"delivered"`
	CreatedAt       time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// AppSummary is an aggregated per-application row for reports.
type AppSummary struct {
	AppName      string  `json:"app_name"`
	SiteURL      string  `json:"site_url,omitempty"`
	TotalSeconds int64   `json:"total_seconds"`
	TotalMinutes float64 `json:"total_minutes"`
	TotalHours   float64 `json:"total_hours"`
	EntryCount   int     `json:"entry_count"`
	Percentage   float64 `json:"percentage,omitempty"`
}

// ReportPeriod is the time range a report covers.
type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"` // "day", "week", "month"
}

// Report is the aggregation over one period.
type Report struct {
	Period       ReportPeriod `json:"period"`
	Apps         []AppSummary `json:"apps"`
	Sites        []AppSummary `json:"sites,omitempty"`
	TotalSeconds int64        `json:"total_seconds"`
	TotalMinutes float64      `json:"total_minutes"`
	TotalHours   float64      `json:"total_hours"`
	GeneratedAt  time.Time    `json:"generated_at"`
}
