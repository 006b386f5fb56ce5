// Package alert evaluates attendance and performance histories against the
// configured thresholds and notifies about breaches.
package alert

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/performance"
)

const day = 24 * time.Hour

// Evaluate checks one employee's history. It is pure: the same inputs always
// yield the same sorted alerts, and it never mutates history.
func Evaluate(h History, t Thresholds, now time.Time) []Alert {
	now = now.UTC()
	var alerts []Alert

	if a, ok := checkAttendance(h, t, now); ok {
		alerts = append(alerts, a)
	}
	if a, ok := checkPerformance(h, t, now); ok {
		alerts = append(alerts, a)
	}
	if a, ok := checkInactivity(h, t, now); ok {
		alerts = append(alerts, a)
	}

	Sort(alerts)
	return alerts
}

// Sort orders alerts danger first, then by kind, then by employee.
func Sort(alerts []Alert) {
	slices.SortStableFunc(alerts, func(a, b Alert) int {
		return cmp.Or(
			cmp.Compare(severityRank(a.Severity), severityRank(b.Severity)),
			cmp.Compare(a.Kind, b.Kind),
			cmp.Compare(a.EmployeeID, b.EmployeeID),
		)
	})
}

func severityRank(s Severity) int {
	if s == SeverityDanger {
		return 0
	}
	return 1
}

// Window returns the evaluation window [from, to) ending with the day of now.
func Window(t Thresholds, now time.Time) (time.Time, time.Time) {
	y, m, d := now.UTC().Date()
	to := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return to.AddDate(0, 0, -t.WindowDays), to
}

func checkAttendance(h History, t Thresholds, now time.Time) (Alert, bool) {
	from, to := Window(t, now)
	if !h.HireDate.IsZero() && h.HireDate.UTC().After(from) {
		y, m, d := h.HireDate.UTC().Date()
		from = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	working := performance.WorkingDays(from, to)
	if working == 0 {
		return Alert{}, false
	}

	present := make(map[string]struct{})
	for _, e := range h.Attendance {
		ts := e.Timestamp.UTC()
		if ts.Before(from) || !ts.Before(to) || !performance.IsWorkingDay(ts) {
			continue
		}
		present[ts.Format(domain.PeriodLayout)] = struct{}{}
	}

	pct := float64(len(present)) / float64(working)
	if pct >= t.AttendancePct {
		return Alert{}, false
	}

	severity := SeverityWarning
	if pct < t.AttendancePct-0.10 {
		severity = SeverityDanger
	}
	return Alert{
		EmployeeID:  h.EmployeeID,
		Kind:        KindLowAttendance,
		Severity:    severity,
		TriggeredAt: now,
		Value:       pct,
		Threshold:   t.AttendancePct,
		Detail: fmt.Sprintf("attendance %.1f%% below %.1f%% (%d of %d working days)",
			pct*100, t.AttendancePct*100, len(present), working),
	}, true
}

func checkPerformance(h History, t Thresholds, now time.Time) (Alert, bool) {
	var latest *domain.PerformanceRecord
	for i := range h.Performance {
		r := &h.Performance[i]
		if r.Period.After(now) {
			continue
		}
		if latest == nil || r.Period.After(latest.Period) {
			latest = r
		}
	}
	if latest == nil {
		return Alert{}, false
	}

	score := Score(*latest, t.ScoreSource)
	if score >= t.PerformanceScore {
		return Alert{}, false
	}

	severity := SeverityWarning
	if score < t.PerformanceScore-1 {
		severity = SeverityDanger
	}
	return Alert{
		EmployeeID:  h.EmployeeID,
		Kind:        KindLowPerformance,
		Severity:    severity,
		TriggeredAt: now,
		Value:       score,
		Threshold:   t.PerformanceScore,
		Detail: fmt.Sprintf("%s score %.2f below %.2f for period %s",
			t.ScoreSource, score, t.PerformanceScore, latest.Period.Format(domain.PeriodLayout)),
	}, true
}

// Score extracts the figure selected by source from a record.
func Score(r domain.PerformanceRecord, source ScoreSource) float64 {
	switch source {
	case ScoreProductivity:
		return r.ProductivityScore
	case ScoreOverall:
		return performance.OverallScore(r.TasksCompleted, r.QualityScore, r.ProductivityScore)
	default:
		return r.QualityScore
	}
}

func checkInactivity(h History, t Thresholds, now time.Time) (Alert, bool) {
	var last time.Time
	for _, e := range h.Attendance {
		if e.Timestamp.After(now) {
			continue
		}
		if e.Timestamp.After(last) {
			last = e.Timestamp
		}
	}

	since := "last check-in"
	if last.IsZero() {
		if h.HireDate.IsZero() {
			return Alert{}, false
		}
		last = h.HireDate
		since = "hire date, never checked in"
	}

	days := int(now.Sub(last.UTC()) / day)
	if days <= t.InactivityDays {
		return Alert{}, false
	}

	severity := SeverityWarning
	if days > 2*t.InactivityDays {
		severity = SeverityDanger
	}
	return Alert{
		EmployeeID:  h.EmployeeID,
		Kind:        KindInactivity,
		Severity:    severity,
		TriggeredAt: now,
		Value:       float64(days),
		Threshold:   float64(t.InactivityDays),
		Detail:      fmt.Sprintf("%d days since %s (threshold %d)", days, since, t.InactivityDays),
	}, true
}
