package domain

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// AttendanceMethod identifies how an attendance event was produced.
type AttendanceMethod string

const (
	MethodManual    AttendanceMethod = "manual"
	MethodFaceMatch AttendanceMethod = "face-match"
)

// ParseAttendanceMethod validates a stored or submitted method string.
func ParseAttendanceMethod(s string) (AttendanceMethod, error) {
	switch AttendanceMethod(s) {
	case MethodManual, MethodFaceMatch:
		return AttendanceMethod(s), nil
	default:
		return "", fmt.Errorf("unknown attendance method %q", s)
	}
}

// AttendanceEvent is an append-only attendance log entry. Corrections are new
// events, never edits.
type AttendanceEvent struct {
	ID         uuid.UUID        `json:"id"`
	EmployeeID string           `json:"employee_id"`
	Timestamp  time.Time        `json:"timestamp"`
	Method     AttendanceMethod `json:"method"`
	Confidence *float64         `json:"confidence,omitempty"`
}

// Validate rejects malformed events. Loaders skip events that fail here.
func (e *AttendanceEvent) Validate() error {
	if err := ValidateEmployeeID(e.EmployeeID); err != nil {
		return err
	}
	if e.Timestamp.IsZero() {
		return errors.New("timestamp is required")
	}
	if _, err := ParseAttendanceMethod(string(e.Method)); err != nil {
		return err
	}
	if e.Confidence != nil {
		c := *e.Confidence
		if math.IsNaN(c) || c < 0 || c > 1 {
			return fmt.Errorf("confidence %v out of range [0,1]", c)
		}
	}
	return nil
}

// PerformanceRecord holds one employee's scores for one period (YYYY-MM-DD).
type PerformanceRecord struct {
	ID                uuid.UUID `json:"id"`
	EmployeeID        string    `json:"employee_id"`
	Period            time.Time `json:"period"`
	TasksCompleted    int       `json:"tasks_completed"`
	QualityScore      float64   `json:"quality_score"`
	ProductivityScore float64   `json:"productivity_score"`
	Comments          string    `json:"comments,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// PeriodLayout is the canonical date layout for performance periods.
const PeriodLayout = "2006-01-02"

// Validate rejects malformed performance records.
func (p *PerformanceRecord) Validate() error {
	if err := ValidateEmployeeID(p.EmployeeID); err != nil {
		return err
	}
	if p.Period.IsZero() {
		return errors.New("period is required")
	}
	if p.TasksCompleted < 0 {
		return errors.New("tasks_completed must not be negative")
	}
	if math.IsNaN(p.QualityScore) || p.QualityScore < 0 || p.QualityScore > 10 {
		return fmt.Errorf("quality_score %v out of range [0,10]", p.QualityScore)
	}
	if math.IsNaN(p.ProductivityScore) || p.ProductivityScore < 0 {
		return fmt.Errorf("productivity_score %v must not be negative", p.ProductivityScore)
	}
	return nil
}
