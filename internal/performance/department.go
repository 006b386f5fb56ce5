package performance

import (
	"sort"
	"time"
)

// DepartmentStats aggregates the members of one department over [From, To).
type DepartmentStats struct {
	Department        string          `json:"department"`
	From              time.Time       `json:"from"`
	To                time.Time       `json:"to"`
	Headcount         int             `json:"headcount"`
	AvgAttendanceRate float64         `json:"avg_attendance_rate"`
	Records           int             `json:"performance_records"`
	AvgTasksCompleted float64         `json:"avg_tasks_completed"`
	AvgQualityScore   float64         `json:"avg_quality_score"`
	AvgProductivity   float64         `json:"avg_productivity_score"`
	Members           []MemberSummary `json:"members"`
}

// MemberSummary places one employee against the department averages.
// Deltas are the member's figure minus the department average.
type MemberSummary struct {
	EmployeeID        string  `json:"employee_id"`
	Name              string  `json:"name"`
	Role              string  `json:"role,omitempty"`
	AttendanceRate    float64 `json:"attendance_rate"`
	AvgProductivity   float64 `json:"avg_productivity_score"`
	AttendanceDelta   float64 `json:"attendance_delta"`
	ProductivityDelta float64 `json:"productivity_delta"`
	Rank              int     `json:"productivity_rank"`
}

// SummarizeDepartment folds per-member Stats into department figures.
// Attendance is averaged per member and scores per record.
func SummarizeDepartment(department string, from, to time.Time, members []MemberSummary, stats []Stats) DepartmentStats {
	ds := DepartmentStats{
		Department: department,
		From:       from,
		To:         to,
		Headcount:  len(stats),
		Members:    members,
	}
	if ds.Headcount == 0 {
		ds.Members = []MemberSummary{}
		return ds
	}

	var rate, tasks, quality, productivity float64
	for _, st := range stats {
		rate += st.AttendanceRate
		n := float64(st.Records)
		tasks += st.AvgTasksCompleted * n
		quality += st.AvgQualityScore * n
		productivity += st.AvgProductivity * n
		ds.Records += st.Records
	}
	ds.AvgAttendanceRate = round2(rate / float64(ds.Headcount))
	if ds.Records > 0 {
		n := float64(ds.Records)
		ds.AvgTasksCompleted = round2(tasks / n)
		ds.AvgQualityScore = round2(quality / n)
		ds.AvgProductivity = round2(productivity / n)
	}

	for i := range ds.Members {
		m := &ds.Members[i]
		m.AttendanceRate = stats[i].AttendanceRate
		m.AvgProductivity = stats[i].AvgProductivity
		m.AttendanceDelta = round2(m.AttendanceRate - ds.AvgAttendanceRate)
		m.ProductivityDelta = round2(m.AvgProductivity - ds.AvgProductivity)
	}

	order := make([]int, len(ds.Members))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return ds.Members[order[a]].AvgProductivity > ds.Members[order[b]].AvgProductivity
	})
	for rank, i := range order {
		ds.Members[i].Rank = rank + 1
	}
	return ds
}
