package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
)

// Friday 2025-03-14, evaluating the Mon-Fri week with a 7 day window.
var friday = time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)

func weekThresholds() Thresholds {
	t := DefaultThresholds()
	t.WindowDays = 7
	return t
}

func checkIns(id string, days ...int) []domain.AttendanceEvent {
	events := make([]domain.AttendanceEvent, 0, len(days))
	for _, d := range days {
		events = append(events, domain.AttendanceEvent{
			EmployeeID: id,
			Timestamp:  time.Date(2025, 3, d, 9, 0, 0, 0, time.UTC),
			Method:     domain.MethodManual,
		})
	}
	return events
}

func kinds(alerts []Alert) []Kind {
	out := make([]Kind, len(alerts))
	for i, a := range alerts {
		out[i] = a.Kind
	}
	return out
}

func find(alerts []Alert, kind Kind) *Alert {
	for i := range alerts {
		if alerts[i].Kind == kind {
			return &alerts[i]
		}
	}
	return nil
}

func TestEvaluate_LowAttendance(t *testing.T) {
	h := History{EmployeeID: "EMP001", Attendance: checkIns("EMP001", 10, 12, 14)}

	alerts := Evaluate(h, weekThresholds(), friday)

	require.Len(t, alerts, 1)
	a := alerts[0]
	assert.Equal(t, KindLowAttendance, a.Kind)
	assert.InDelta(t, 0.6, a.Value, 1e-9)
	assert.Equal(t, 0.8, a.Threshold)
	assert.Equal(t, SeverityDanger, a.Severity, "0.6 is more than 10 points under 0.8")
	assert.Contains(t, a.Detail, "3 of 5 working days")
}

func TestEvaluate_AttendanceSeverity(t *testing.T) {
	th := weekThresholds()
	th.AttendancePct = 0.85

	alerts := Evaluate(History{EmployeeID: "EMP001", Attendance: checkIns("EMP001", 10, 11, 12, 13)}, th, friday)

	require.Len(t, alerts, 1)
	assert.InDelta(t, 0.8, alerts[0].Value, 1e-9)
	assert.Equal(t, SeverityWarning, alerts[0].Severity)
}

func TestEvaluate_FullAttendanceNoAlert(t *testing.T) {
	h := History{EmployeeID: "EMP001", Attendance: checkIns("EMP001", 10, 11, 12, 13, 14)}
	assert.Empty(t, Evaluate(h, weekThresholds(), friday))
}

func TestEvaluate_WeekendAndDuplicatesIgnored(t *testing.T) {
	events := checkIns("EMP001", 10, 11, 12, 13, 14)
	events = append(events, domain.AttendanceEvent{
		EmployeeID: "EMP001", Timestamp: time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC), Method: domain.MethodManual,
	})
	events = append(events, checkIns("EMP001", 8, 9)...)

	alerts := Evaluate(History{EmployeeID: "EMP001", Attendance: events}, weekThresholds(), friday)
	assert.Empty(t, alerts)
}

func TestEvaluate_LowPerformance(t *testing.T) {
	base := History{
		EmployeeID: "EMP001",
		Attendance: checkIns("EMP001", 10, 11, 12, 13, 14),
	}

	tests := []struct {
		name       string
		records    []domain.PerformanceRecord
		source     ScoreSource
		wantAlert  bool
		wantDanger bool
	}{
		{
			name:      "quality 4 under threshold 5",
			records:   []domain.PerformanceRecord{{Period: friday.AddDate(0, 0, -1), QualityScore: 4}},
			source:    ScoreQuality,
			wantAlert: true,
		},
		{
			name:    "quality 6 above threshold 5",
			records: []domain.PerformanceRecord{{Period: friday.AddDate(0, 0, -1), QualityScore: 6}},
			source:  ScoreQuality,
		},
		{
			name: "only the latest period counts",
			records: []domain.PerformanceRecord{
				{Period: friday.AddDate(0, 0, -1), QualityScore: 8},
				{Period: friday.AddDate(0, 0, -4), QualityScore: 1},
			},
			source: ScoreQuality,
		},
		{
			name:       "danger more than one point under",
			records:    []domain.PerformanceRecord{{Period: friday.AddDate(0, 0, -1), QualityScore: 3.5}},
			source:     ScoreQuality,
			wantAlert:  true,
			wantDanger: true,
		},
		{
			name:      "productivity source",
			records:   []domain.PerformanceRecord{{Period: friday.AddDate(0, 0, -1), QualityScore: 9, ProductivityScore: 4.5}},
			source:    ScoreProductivity,
			wantAlert: true,
		},
		{
			name:    "overall source blends figures",
			records: []domain.PerformanceRecord{{Period: friday.AddDate(0, 0, -1), TasksCompleted: 6, QualityScore: 5, ProductivityScore: 5}},
			source:  ScoreOverall,
		},
		{
			name:    "future period ignored",
			records: []domain.PerformanceRecord{{Period: friday.AddDate(0, 0, 3), QualityScore: 1}},
			source:  ScoreQuality,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := weekThresholds()
			th.ScoreSource = tt.source
			h := base
			h.Performance = tt.records

			alerts := Evaluate(h, th, friday)

			if !tt.wantAlert {
				assert.Empty(t, alerts)
				return
			}
			require.Len(t, alerts, 1)
			assert.Equal(t, KindLowPerformance, alerts[0].Kind)
			if tt.wantDanger {
				assert.Equal(t, SeverityDanger, alerts[0].Severity)
			} else {
				assert.Equal(t, SeverityWarning, alerts[0].Severity)
			}
		})
	}
}

func TestEvaluate_Inactivity(t *testing.T) {
	th := DefaultThresholds()
	th.WindowDays = 1
	th.AttendancePct = 0.01

	t.Run("no check-ins and no hire date", func(t *testing.T) {
		alerts := Evaluate(History{EmployeeID: "EMP001"}, th, friday)
		assert.NotContains(t, kinds(alerts), KindInactivity)
	})

	t.Run("since hire date", func(t *testing.T) {
		h := History{EmployeeID: "EMP001", HireDate: friday.AddDate(0, 0, -10)}
		alerts := Evaluate(h, th, friday)
		require.Contains(t, kinds(alerts), KindInactivity)
	})

	t.Run("recent hire not inactive", func(t *testing.T) {
		h := History{EmployeeID: "EMP001", HireDate: friday.AddDate(0, 0, -3)}
		assert.NotContains(t, kinds(Evaluate(h, th, friday)), KindInactivity)
	})

	t.Run("exactly threshold days is not inactive", func(t *testing.T) {
		h := History{EmployeeID: "EMP001", Attendance: []domain.AttendanceEvent{
			{EmployeeID: "EMP001", Timestamp: friday.AddDate(0, 0, -7), Method: domain.MethodManual},
		}}
		assert.NotContains(t, kinds(Evaluate(h, th, friday)), KindInactivity)
	})

	t.Run("warning then danger", func(t *testing.T) {
		h := History{EmployeeID: "EMP001", Attendance: []domain.AttendanceEvent{
			{EmployeeID: "EMP001", Timestamp: friday.AddDate(0, 0, -8), Method: domain.MethodManual},
		}}
		a := find(Evaluate(h, th, friday), KindInactivity)
		require.NotNil(t, a)
		assert.Equal(t, SeverityWarning, a.Severity)
		assert.Equal(t, float64(8), a.Value)

		h.Attendance[0].Timestamp = friday.AddDate(0, 0, -15)
		a = find(Evaluate(h, th, friday), KindInactivity)
		require.NotNil(t, a)
		assert.Equal(t, SeverityDanger, a.Severity)
	})
}

func TestEvaluate_IndependentChecksSorted(t *testing.T) {
	h := History{
		EmployeeID:  "EMP001",
		HireDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Performance: []domain.PerformanceRecord{{Period: friday.AddDate(0, 0, -20), QualityScore: 4.5}},
	}

	alerts := Evaluate(h, DefaultThresholds(), friday)

	require.Len(t, alerts, 3)
	assert.Equal(t, []Kind{KindInactivity, KindLowAttendance, KindLowPerformance}, kinds(alerts))
	assert.Equal(t, SeverityDanger, alerts[0].Severity)
	assert.Equal(t, SeverityDanger, alerts[1].Severity)
	assert.Equal(t, SeverityWarning, alerts[2].Severity)
}

func TestEvaluate_Idempotent(t *testing.T) {
	h := History{
		EmployeeID:  "EMP001",
		HireDate:    time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		Attendance:  checkIns("EMP001", 3, 4),
		Performance: []domain.PerformanceRecord{{Period: friday.AddDate(0, 0, -2), QualityScore: 2}},
	}
	snapshot := append([]domain.AttendanceEvent(nil), h.Attendance...)

	first := Evaluate(h, DefaultThresholds(), friday)
	second := Evaluate(h, DefaultThresholds(), friday)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, h.Attendance)
}

func TestSort(t *testing.T) {
	alerts := []Alert{
		{EmployeeID: "B", Kind: KindLowAttendance, Severity: SeverityWarning},
		{EmployeeID: "A", Kind: KindLowPerformance, Severity: SeverityDanger},
		{EmployeeID: "A", Kind: KindLowAttendance, Severity: SeverityWarning},
		{EmployeeID: "C", Kind: KindInactivity, Severity: SeverityDanger},
	}

	Sort(alerts)

	assert.Equal(t, "C", alerts[0].EmployeeID)
	assert.Equal(t, "A", alerts[1].EmployeeID)
	assert.Equal(t, KindLowAttendance, alerts[2].Kind)
	assert.Equal(t, "A", alerts[2].EmployeeID)
	assert.Equal(t, "B", alerts[3].EmployeeID)
}

func TestThresholds_Validate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())

	bad := Thresholds{AttendancePct: 1.5, PerformanceScore: -1, InactivityDays: 0, WindowDays: 0, ScoreSource: "mood"}
	err := bad.Validate()
	require.ErrorIs(t, err, domain.ErrInvalidThreshold)
	assert.Contains(t, err.Error(), "attendance_pct_threshold")
	assert.Contains(t, err.Error(), "score_source")
}

func TestConfigHolder(t *testing.T) {
	h, err := NewConfigHolder(DefaultThresholds())
	require.NoError(t, err)

	snapshot := h.Get()
	updated := DefaultThresholds()
	updated.InactivityDays = 3
	require.NoError(t, h.Set(updated))

	assert.Equal(t, 7, snapshot.InactivityDays, "earlier snapshots are unaffected")
	assert.Equal(t, 3, h.Get().InactivityDays)

	assert.ErrorIs(t, h.Set(Thresholds{}), domain.ErrInvalidThreshold)
	assert.Equal(t, 3, h.Get().InactivityDays)

	_, err = NewConfigHolder(Thresholds{})
	assert.Error(t, err)
}
