package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/metrics"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/repository"
)

type EmployeeLister interface {
	List(ctx context.Context) ([]domain.Employee, error)
	GetByID(ctx context.Context, employeeID string) (*domain.Employee, error)
}

type AttendanceLister interface {
	List(ctx context.Context, filter repository.AttendanceFilter) ([]domain.AttendanceEvent, error)
}

type PerformanceLister interface {
	List(ctx context.Context, filter repository.PerformanceFilter) ([]domain.PerformanceRecord, error)
}

// Service loads histories from the stores and runs Evaluate over them.
type Service struct {
	employees   EmployeeLister
	attendance  AttendanceLister
	performance PerformanceLister
	config      *ConfigHolder
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewService(
	employees EmployeeLister,
	attendance AttendanceLister,
	performance PerformanceLister,
	config *ConfigHolder,
	logger *slog.Logger,
) *Service {
	return &Service{
		employees:   employees,
		attendance:  attendance,
		performance: performance,
		config:      config,
		logger:      logger,
	}
}

func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

// Thresholds returns the current configuration.
func (s *Service) Thresholds() Thresholds {
	return s.config.Get()
}

// UpdateThresholds validates and swaps the configuration used by later
// evaluations.
func (s *Service) UpdateThresholds(t Thresholds) error {
	if err := s.config.Set(t); err != nil {
		return err
	}
	s.logger.Info("alert thresholds updated",
		"attendance_pct", t.AttendancePct,
		"performance_score", t.PerformanceScore,
		"inactivity_days", t.InactivityDays,
		"window_days", t.WindowDays,
		"score_source", t.ScoreSource,
	)
	return nil
}

// EvaluateAll evaluates every employee against one thresholds snapshot.
func (s *Service) EvaluateAll(ctx context.Context, now time.Time) ([]Alert, error) {
	start := time.Now()
	thresholds := s.config.Get()

	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	events, err := s.attendance.List(ctx, repository.AttendanceFilter{})
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	records, err := s.performance.List(ctx, repository.PerformanceFilter{})
	if err != nil {
		return nil, fmt.Errorf("list performance: %w", err)
	}

	byEmployee := make(map[string]*History, len(employees))
	for _, e := range employees {
		byEmployee[e.EmployeeID] = &History{EmployeeID: e.EmployeeID, HireDate: e.HireDate}
	}
	for _, ev := range events {
		if h, ok := byEmployee[ev.EmployeeID]; ok {
			h.Attendance = append(h.Attendance, ev)
		}
	}
	for _, r := range records {
		if h, ok := byEmployee[r.EmployeeID]; ok {
			h.Performance = append(h.Performance, r)
		}
	}

	var alerts []Alert
	for _, e := range employees {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		alerts = append(alerts, Evaluate(*byEmployee[e.EmployeeID], thresholds, now)...)
	}
	Sort(alerts)

	counts := make(map[[2]string]int)
	for _, a := range alerts {
		counts[[2]string{string(a.Kind), string(a.Severity)}]++
	}
	s.metrics.RecordEvaluation(time.Since(start), counts)

	s.logger.Debug("alert evaluation finished",
		"employees", len(employees),
		"alerts", len(alerts),
		"duration", time.Since(start),
	)
	return alerts, nil
}

// EvaluateEmployee evaluates a single employee.
func (s *Service) EvaluateEmployee(ctx context.Context, employeeID string, now time.Time) ([]Alert, error) {
	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	events, err := s.attendance.List(ctx, repository.AttendanceFilter{EmployeeID: employeeID})
	if err != nil {
		return nil, fmt.Errorf("list attendance for %s: %w", employeeID, err)
	}
	records, err := s.performance.List(ctx, repository.PerformanceFilter{EmployeeID: employeeID})
	if err != nil {
		return nil, fmt.Errorf("list performance for %s: %w", employeeID, err)
	}

	return Evaluate(History{
		EmployeeID:  emp.EmployeeID,
		HireDate:    emp.HireDate,
		Attendance:  events,
		Performance: records,
	}, s.config.Get(), now), nil
}
