package performance

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/repository"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/repository/csvstore"
)

func TestProductivityScore(t *testing.T) {
	tests := []struct {
		name       string
		tasks      int
		quality    float64
		efficiency float64
		want       float64
	}{
		{"perfect", 10, 10, 1, 10},
		{"tasks capped", 25, 10, 1, 10},
		{"efficiency capped", 10, 10, 3, 10},
		{"mixed", 5, 7.5, 1, 7},
		{"zero", 0, 0, 0, 0},
		{"rounds to two decimals", 3, 6.66, 0.5, 4.86},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ProductivityScore(tt.tasks, tt.quality, tt.efficiency), 1e-9)
		})
	}
}

func TestOverallScore(t *testing.T) {
	assert.InDelta(t, 0.3*8+0.4*6+0.3*7, OverallScore(8, 6, 7), 1e-9)
}

func TestWorkingDays(t *testing.T) {
	// 2025-03-10 is a Monday
	mon := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 5, WorkingDays(mon, mon.AddDate(0, 0, 7)))
	assert.Equal(t, 0, WorkingDays(mon.AddDate(0, 0, 5), mon.AddDate(0, 0, 7)), "weekend only")
	assert.Equal(t, 21, WorkingDays(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, WorkingDays(mon, mon))
}

func TestTrend(t *testing.T) {
	slope, dir := Trend([]float64{5, 6, 7})
	assert.InDelta(t, 1, slope, 1e-9)
	assert.Equal(t, TrendImproving, dir)

	_, dir = Trend([]float64{8, 6})
	assert.Equal(t, TrendDeclining, dir)

	_, dir = Trend([]float64{4})
	assert.Equal(t, TrendStable, dir)

	_, dir = Trend([]float64{4, 4, 4})
	assert.Equal(t, TrendStable, dir)
}

func TestSummarize(t *testing.T) {
	mon := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	events := []domain.AttendanceEvent{
		{EmployeeID: "EMP001", Timestamp: mon.Add(9 * time.Hour)},
		{EmployeeID: "EMP001", Timestamp: mon.Add(13 * time.Hour)},
		{EmployeeID: "EMP001", Timestamp: mon.AddDate(0, 0, 2).Add(9 * time.Hour)},
	}
	records := []domain.PerformanceRecord{
		{EmployeeID: "EMP001", Period: mon, TasksCompleted: 4, QualityScore: 6, ProductivityScore: 5},
		{EmployeeID: "EMP001", Period: mon.AddDate(0, 0, 1), TasksCompleted: 6, QualityScore: 8, ProductivityScore: 7},
	}

	st := Summarize("EMP001", mon, mon.AddDate(0, 0, 7), events, records)

	assert.Equal(t, 2, st.PresentDays)
	assert.Equal(t, 5, st.WorkingDays)
	assert.InDelta(t, 0.4, st.AttendanceRate, 1e-9)
	assert.Equal(t, 2, st.Records)
	assert.InDelta(t, 5, st.AvgTasksCompleted, 1e-9)
	assert.InDelta(t, 7, st.AvgQualityScore, 1e-9)
	assert.InDelta(t, 6, st.AvgProductivity, 1e-9)
	assert.Equal(t, TrendImproving, st.Trend)
	require.NotNil(t, st.LastAttendance)
	assert.True(t, mon.AddDate(0, 0, 2).Add(9*time.Hour).Equal(*st.LastAttendance))
}

func TestSummarize_WeekendCheckInsStayOutOfRate(t *testing.T) {
	sat := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	var events []domain.AttendanceEvent
	for d := 0; d < 3; d++ {
		events = append(events, domain.AttendanceEvent{EmployeeID: "EMP001", Timestamp: sat.AddDate(0, 0, d).Add(9 * time.Hour)})
	}

	st := Summarize("EMP001", sat, sat.AddDate(0, 0, 3), events, nil)

	assert.Equal(t, 1, st.WorkingDays)
	assert.Equal(t, 1, st.PresentDays)
	assert.Equal(t, 2, st.WeekendDays)
	assert.InDelta(t, 1.0, st.AttendanceRate, 1e-9)
	require.NotNil(t, st.LastAttendance)
	assert.Equal(t, time.Monday, st.LastAttendance.Weekday())
}

func newService(t *testing.T) (*Service, *repository.Repositories) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := csvstore.Open(t.TempDir(), logger)
	require.NoError(t, err)
	repos := store.Repositories()
	require.NoError(t, repos.Employees.Create(context.Background(), &domain.Employee{EmployeeID: "EMP001", Name: "Ana"}))

	svc := NewService(repos.Employees, repos.Performance, repos.Attendance, logger)
	svc.now = func() time.Time { return time.Date(2025, 3, 14, 17, 0, 0, 0, time.UTC) }
	return svc, repos
}

func TestService_Record(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	rec, err := svc.Record(ctx, RecordInput{
		EmployeeID:     "EMP001",
		Period:         time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC),
		TasksCompleted: 5,
		QualityScore:   7.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", rec.Period.Format(domain.PeriodLayout))
	assert.InDelta(t, 7, rec.ProductivityScore, 1e-9, "derived with efficiency 1")

	_, err = svc.Record(ctx, RecordInput{EmployeeID: "EMP001", Period: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC), QualityScore: 3})
	assert.ErrorIs(t, err, domain.ErrPerformanceExists)

	explicit := 4.2
	rec, err = svc.Record(ctx, RecordInput{EmployeeID: "EMP001", QualityScore: 3, ProductivityScore: &explicit})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14", rec.Period.Format(domain.PeriodLayout))
	assert.Equal(t, 4.2, rec.ProductivityScore)

	_, err = svc.Record(ctx, RecordInput{EmployeeID: "EMP001", Period: time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), QualityScore: 12})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	_, err = svc.Record(ctx, RecordInput{EmployeeID: "EMP404", QualityScore: 5})
	assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)
}

func TestService_Stats(t *testing.T) {
	svc, repos := newService(t)
	ctx := context.Background()

	require.NoError(t, repos.Attendance.Append(ctx, &domain.AttendanceEvent{
		EmployeeID: "EMP001", Timestamp: time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC), Method: domain.MethodManual,
	}))
	_, err := svc.Record(ctx, RecordInput{EmployeeID: "EMP001", Period: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), TasksCompleted: 10, QualityScore: 10})
	require.NoError(t, err)

	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	st, err := svc.Stats(ctx, "EMP001", from, from.AddDate(0, 0, 5))
	require.NoError(t, err)
	assert.Equal(t, 1, st.PresentDays)
	assert.Equal(t, 5, st.WorkingDays)
	assert.InDelta(t, 0.2, st.AttendanceRate, 1e-9)
	assert.InDelta(t, 10, st.AvgProductivity, 1e-9)

	st, err = svc.Stats(ctx, "EMP001", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-15", st.To.Format(domain.PeriodLayout))
	assert.Equal(t, 1, st.PresentDays)

	_, err = svc.Stats(ctx, "EMP001", from, from)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}
