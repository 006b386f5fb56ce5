package alert

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
)

type Kind string

const (
	KindLowAttendance  Kind = "low-attendance"
	KindLowPerformance Kind = "low-performance"
	KindInactivity     Kind = "inactivity"
)

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// ScoreSource selects which figure of the latest performance record is
// compared with the performance threshold.
type ScoreSource string

const (
	ScoreQuality      ScoreSource = "quality"
	ScoreProductivity ScoreSource = "productivity"
	ScoreOverall      ScoreSource = "overall"
)

// Alert is a threshold breach for one employee.
type Alert struct {
	EmployeeID  string    `json:"employee_id"`
	Kind        Kind      `json:"kind"`
	Severity    Severity  `json:"severity"`
	TriggeredAt time.Time `json:"triggered_at"`
	Detail      string    `json:"detail"`
	Value       float64   `json:"value"`
	Threshold   float64   `json:"threshold"`
}

// Key identifies the alert for notification cooldowns.
func (a Alert) Key() string {
	return a.EmployeeID + "|" + string(a.Kind)
}

// Thresholds is the alert configuration. Values are immutable; an update
// replaces the whole value.
type Thresholds struct {
	// AttendancePct is a ratio in (0, 1].
	AttendancePct    float64     `json:"attendance_pct_threshold" yaml:"attendance_pct"`
	PerformanceScore float64     `json:"performance_score_threshold" yaml:"performance_score"`
	InactivityDays   int         `json:"inactivity_days_threshold" yaml:"inactivity_days"`
	WindowDays       int         `json:"window_days" yaml:"window_days"`
	ScoreSource      ScoreSource `json:"score_source" yaml:"score_source"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		AttendancePct:    0.8,
		PerformanceScore: 5,
		InactivityDays:   7,
		WindowDays:       30,
		ScoreSource:      ScoreQuality,
	}
}

// Validate returns ErrInvalidThreshold describing every out-of-range field.
func (t Thresholds) Validate() error {
	var errs []error
	if math.IsNaN(t.AttendancePct) || t.AttendancePct <= 0 || t.AttendancePct > 1 {
		errs = append(errs, fmt.Errorf("attendance_pct_threshold must be in (0, 1], got %v", t.AttendancePct))
	}
	if math.IsNaN(t.PerformanceScore) || t.PerformanceScore < 0 || t.PerformanceScore > 10 {
		errs = append(errs, fmt.Errorf("performance_score_threshold must be in [0, 10], got %v", t.PerformanceScore))
	}
	if t.InactivityDays < 1 {
		errs = append(errs, fmt.Errorf("inactivity_days_threshold must be at least 1, got %d", t.InactivityDays))
	}
	if t.WindowDays < 1 || t.WindowDays > 366 {
		errs = append(errs, fmt.Errorf("window_days must be in [1, 366], got %d", t.WindowDays))
	}
	switch t.ScoreSource {
	case ScoreQuality, ScoreProductivity, ScoreOverall:
	default:
		errs = append(errs, fmt.Errorf("unknown score_source %q", t.ScoreSource))
	}

	if len(errs) > 0 {
		return domain.ErrInvalidThreshold.WithError(errors.Join(errs...))
	}
	return nil
}

// History is everything Evaluate needs about one employee.
type History struct {
	EmployeeID string
	// HireDate starts the inactivity clock of employees who never checked in.
	HireDate    time.Time
	Attendance  []domain.AttendanceEvent
	Performance []domain.PerformanceRecord
}
