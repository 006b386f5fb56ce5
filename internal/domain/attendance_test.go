package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func TestAttendanceEvent_Validate(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		event   AttendanceEvent
		wantErr bool
	}{
		{
			name:  "valid manual event",
			event: AttendanceEvent{EmployeeID: "EMP001", Timestamp: now, Method: MethodManual},
		},
		{
			name:  "valid face match with confidence",
			event: AttendanceEvent{EmployeeID: "EMP001", Timestamp: now, Method: MethodFaceMatch, Confidence: floatPtr(0.73)},
		},
		{
			name:    "missing employee",
			event:   AttendanceEvent{Timestamp: now, Method: MethodManual},
			wantErr: true,
		},
		{
			name:    "zero timestamp",
			event:   AttendanceEvent{EmployeeID: "EMP001", Method: MethodManual},
			wantErr: true,
		},
		{
			name:    "unknown method",
			event:   AttendanceEvent{EmployeeID: "EMP001", Timestamp: now, Method: "badge"},
			wantErr: true,
		},
		{
			name:    "confidence above one",
			event:   AttendanceEvent{EmployeeID: "EMP001", Timestamp: now, Method: MethodFaceMatch, Confidence: floatPtr(1.2)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPerformanceRecord_Validate(t *testing.T) {
	period := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		record  PerformanceRecord
		wantErr bool
	}{
		{"valid", PerformanceRecord{EmployeeID: "EMP001", Period: period, TasksCompleted: 8, QualityScore: 7.5, ProductivityScore: 6}, false},
		{"quality above ten", PerformanceRecord{EmployeeID: "EMP001", Period: period, QualityScore: 11}, true},
		{"negative quality", PerformanceRecord{EmployeeID: "EMP001", Period: period, QualityScore: -1}, true},
		{"negative tasks", PerformanceRecord{EmployeeID: "EMP001", Period: period, TasksCompleted: -3}, true},
		{"missing period", PerformanceRecord{EmployeeID: "EMP001", QualityScore: 5}, true},
		{"bad employee id", PerformanceRecord{EmployeeID: "has space", Period: period}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() error = %v", err)
		})
	}
}

func TestEmployee_Validate(t *testing.T) {
	assert.NoError(t, (&Employee{EmployeeID: "EMP-01", Name: "Ana"}).Validate())
	assert.Error(t, (&Employee{EmployeeID: "EMP-01"}).Validate())
	assert.Error(t, (&Employee{EmployeeID: "", Name: "Ana"}).Validate())
	assert.Error(t, (&Employee{EmployeeID: "EMP-01", Name: "Ana", Email: "not-an-email"}).Validate())
}
