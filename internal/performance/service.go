package performance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/repository"
)

type EmployeeReader interface {
	GetByID(ctx context.Context, employeeID string) (*domain.Employee, error)
	List(ctx context.Context) ([]domain.Employee, error)
}

type AttendanceLister interface {
	List(ctx context.Context, filter repository.AttendanceFilter) ([]domain.AttendanceEvent, error)
}

// RecordInput is a performance submission. A nil ProductivityScore is derived
// from the other figures and Efficiency (default 1).
type RecordInput struct {
	EmployeeID        string    `json:"employee_id"`
	Period            time.Time `json:"period"`
	TasksCompleted    int       `json:"tasks_completed"`
	QualityScore      float64   `json:"quality_score"`
	ProductivityScore *float64  `json:"productivity_score,omitempty"`
	Efficiency        *float64  `json:"efficiency,omitempty"`
	Comments          string    `json:"comments,omitempty"`
}

type Service struct {
	employees  EmployeeReader
	records    repository.PerformanceRepositoryInterface
	attendance AttendanceLister
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(
	employees EmployeeReader,
	records repository.PerformanceRepositoryInterface,
	attendance AttendanceLister,
	logger *slog.Logger,
) *Service {
	return &Service{
		employees:  employees,
		records:    records,
		attendance: attendance,
		logger:     logger,
		now:        time.Now,
	}
}

// Record appends one performance record. A second record for the same
// employee and period returns ErrPerformanceExists.
func (s *Service) Record(ctx context.Context, in RecordInput) (*domain.PerformanceRecord, error) {
	if _, err := s.employees.GetByID(ctx, in.EmployeeID); err != nil {
		return nil, err
	}

	period := in.Period
	if period.IsZero() {
		period = s.now()
	}

	rec := &domain.PerformanceRecord{
		EmployeeID:     in.EmployeeID,
		Period:         truncateDay(period.UTC()),
		TasksCompleted: in.TasksCompleted,
		QualityScore:   in.QualityScore,
		Comments:       in.Comments,
	}
	if in.ProductivityScore != nil {
		rec.ProductivityScore = *in.ProductivityScore
	} else {
		efficiency := 1.0
		if in.Efficiency != nil {
			efficiency = *in.Efficiency
		}
		rec.ProductivityScore = ProductivityScore(in.TasksCompleted, in.QualityScore, efficiency)
	}

	if err := rec.Validate(); err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}
	if err := s.records.Append(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("performance recorded",
		"employee_id", rec.EmployeeID,
		"period", rec.Period.Format(domain.PeriodLayout),
		"productivity_score", rec.ProductivityScore,
	)
	return rec, nil
}

// List returns records matching the filter in period order.
func (s *Service) List(ctx context.Context, filter repository.PerformanceFilter) ([]domain.PerformanceRecord, error) {
	return s.records.List(ctx, filter)
}

// Stats summarizes an employee over [from, to). Zero bounds default to the
// last 30 days ending today.
func (s *Service) Stats(ctx context.Context, employeeID string, from, to time.Time) (*Stats, error) {
	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}

	from, to, err := s.window(from, to)
	if err != nil {
		return nil, err
	}
	st, err := s.summarize(ctx, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// DepartmentStats aggregates every employee whose department matches name,
// ignoring case, over [from, to). A department with no employees returns
// ErrDepartmentEmpty.
func (s *Service) DepartmentStats(ctx context.Context, name string, from, to time.Time) (*DepartmentStats, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrValidationFailed.WithError(errors.New("department is required"))
	}
	from, to, err := s.window(from, to)
	if err != nil {
		return nil, err
	}

	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	var (
		members []MemberSummary
		stats   []Stats
	)
	for _, e := range employees {
		if !strings.EqualFold(strings.TrimSpace(e.Department), name) {
			continue
		}
		st, err := s.summarize(ctx, e.EmployeeID, from, to)
		if err != nil {
			return nil, err
		}
		members = append(members, MemberSummary{EmployeeID: e.EmployeeID, Name: e.Name, Role: e.Role})
		stats = append(stats, st)
	}
	if len(stats) == 0 {
		return nil, domain.ErrDepartmentEmpty
	}

	ds := SummarizeDepartment(name, from, to, members, stats)
	s.logger.Debug("department summarized",
		"department", name,
		"headcount", ds.Headcount,
		"avg_attendance_rate", ds.AvgAttendanceRate,
	)
	return &ds, nil
}

func (s *Service) window(from, to time.Time) (time.Time, time.Time, error) {
	if to.IsZero() {
		to = truncateDay(s.now().UTC()).AddDate(0, 0, 1)
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	if !from.Before(to) {
		return from, to, domain.ErrValidationFailed.WithError(errors.New("from must be before to"))
	}
	return from, to, nil
}

func (s *Service) summarize(ctx context.Context, employeeID string, from, to time.Time) (Stats, error) {
	events, err := s.attendance.List(ctx, repository.AttendanceFilter{EmployeeID: employeeID, From: from, To: to})
	if err != nil {
		return Stats{}, fmt.Errorf("list attendance for %s: %w", employeeID, err)
	}
	records, err := s.records.List(ctx, repository.PerformanceFilter{EmployeeID: employeeID, From: from, To: to})
	if err != nil {
		return Stats{}, fmt.Errorf("list performance for %s: %w", employeeID, err)
	}
	return Summarize(employeeID, from, to, events, records), nil
}
