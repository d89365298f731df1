package api

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FlexBool accepts the loose boolean encodings the backend emits:
// true/false, "yes"/"no", "true"/"false", 1/0.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = FlexBool(v)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "yes", "true", "1":
			*b = true
		default:
			*b = false
		}
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*b = n != 0
		return nil
	}

	*b = false
	return nil
}

// StaffSettings is the per-staff policy block returned by login and
// dashboard sync.
type StaffSettings struct {
	UsagePolicyEnabled FlexBool `json:"usage_policy_enabled"`
	AllowScreenshot    FlexBool `json:"allow_screenshot"`
	ForceBreakTime     int      `json:"force_break_time"` // minutes
	ShiftStart         string   `json:"shift_start"`
	ShiftEnd           string   `json:"shift_end"`
	Timezone           string   `json:"timezone"`
	GracePeriod        int      `json:"grace_period"`
	Department         string   `json:"department"`
}

// CompanyRules holds the company-wide idle reporting thresholds, in minutes.
type CompanyRules struct {
	Idle1Time int `json:"idle1_time"`
	Idle2Time int `json:"idle2_time"`
	Idle3Time int `json:"idle3_time"`
}

// LoginResponse is returned by POST /auth/login.
type LoginResponse struct {
	SessionToken  string        `json:"session_token"`
	Name          string        `json:"name"`
	StaffSettings StaffSettings `json:"staff_settings"`
	CompanyRules  CompanyRules  `json:"company_rules"`
}

// UserInfo is returned by GET /auth/me.
type UserInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// BreakRecord is one break inside an attendance record.
type BreakRecord struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AttendanceRecord is today's attendance inside dashboard stats.
type AttendanceRecord struct {
	CheckIn  string        `json:"check_in"`
	CheckOut string        `json:"check_out"`
	LateBy   float64       `json:"late_by"` // seconds
	Breaks   []BreakRecord `json:"breaks"`
}

// DashboardStaff is the staff block inside dashboard stats; pointer fields
// distinguish "absent" from zero values when merging settings.
type DashboardStaff struct {
	Name               string    `json:"name"`
	Timezone           string    `json:"timezone"`
	ShiftStart         string    `json:"shift_start"`
	ShiftEnd           string    `json:"shift_end"`
	Department         string    `json:"department"`
	GracePeriod        *int      `json:"grace_period"`
	ForceBreakTime     *int      `json:"force_break_time"`
	AllowScreenshot    *FlexBool `json:"allow_screenshot"`
	UsagePolicyEnabled *FlexBool `json:"usage_policy_enabled"`
}

// DashboardStats is returned by GET /staff/dashboard/stats.
type DashboardStats struct {
	Staff           *DashboardStaff   `json:"staff"`
	TodayAttendance *AttendanceRecord `json:"today_attendance"`
	IsCheckedIn     bool              `json:"is_checked_in"`
	IsCheckedOut    bool              `json:"is_checked_out"`
	OnBreak         bool              `json:"on_break"`
	CurrentBreak    *BreakRecord      `json:"current_break"`
}
