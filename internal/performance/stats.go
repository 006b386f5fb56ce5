package performance

import (
	"time"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
)

// Stats summarizes one employee over [From, To).
type Stats struct {
	EmployeeID        string     `json:"employee_id"`
	From              time.Time  `json:"from"`
	To                time.Time  `json:"to"`
	PresentDays       int        `json:"present_days"`
	WeekendDays       int        `json:"weekend_days"`
	WorkingDays       int        `json:"working_days"`
	AttendanceRate    float64    `json:"attendance_rate"`
	Records           int        `json:"performance_records"`
	AvgTasksCompleted float64    `json:"avg_tasks_completed"`
	AvgQualityScore   float64    `json:"avg_quality_score"`
	AvgProductivity   float64    `json:"avg_productivity_score"`
	TrendSlope        float64    `json:"productivity_trend_slope"`
	Trend             string     `json:"productivity_trend"`
	LastAttendance    *time.Time `json:"last_attendance,omitempty"`
}

// Summarize computes Stats from histories already narrowed to the range.
// Records are expected in period order.
// Present days count distinct working days in UTC; weekend check-ins are
// reported separately so the rate never exceeds 1.
func Summarize(employeeID string, from, to time.Time, events []domain.AttendanceEvent, records []domain.PerformanceRecord) Stats {
	st := Stats{
		EmployeeID:  employeeID,
		From:        from,
		To:          to,
		WorkingDays: WorkingDays(from, to),
	}

	days := make(map[string]struct{})
	weekend := make(map[string]struct{})
	for i := range events {
		ts := events[i].Timestamp.UTC()
		if IsWorkingDay(ts) {
			days[ts.Format(domain.PeriodLayout)] = struct{}{}
		} else {
			weekend[ts.Format(domain.PeriodLayout)] = struct{}{}
		}
		if st.LastAttendance == nil || ts.After(*st.LastAttendance) {
			last := ts
			st.LastAttendance = &last
		}
	}
	st.PresentDays = len(days)
	st.WeekendDays = len(weekend)
	if st.WorkingDays > 0 {
		st.AttendanceRate = round2(float64(st.PresentDays) / float64(st.WorkingDays))
	}

	st.Records = len(records)
	st.Trend = TrendStable
	if st.Records > 0 {
		var tasks, quality, productivity float64
		for _, r := range records {
			tasks += float64(r.TasksCompleted)
			quality += r.QualityScore
			productivity += r.ProductivityScore
		}
		n := float64(st.Records)
		st.AvgTasksCompleted = round2(tasks / n)
		st.AvgQualityScore = round2(quality / n)
		st.AvgProductivity = round2(productivity / n)

		scores := make([]float64, len(records))
		for i, r := range records {
			scores[i] = r.ProductivityScore
		}
		st.TrendSlope, st.Trend = Trend(scores)
	}
	return st
}
