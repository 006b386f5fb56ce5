package repository

import (
	"context"
	"time"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
)

// EmployeeRepositoryInterface defines operations for the employee directory
type EmployeeRepositoryInterface interface {
	Create(ctx context.Context, employee *domain.Employee) error
	Update(ctx context.Context, employee *domain.Employee) error
	GetByID(ctx context.Context, employeeID string) (*domain.Employee, error)
	List(ctx context.Context) ([]domain.Employee, error)
	Delete(ctx context.Context, employeeID string) error
}

// FaceRepositoryInterface defines operations for the face registry.
// Upsert replaces an employee's previous record.
type FaceRepositoryInterface interface {
	Upsert(ctx context.Context, record *domain.EmployeeFaceRecord) error
	GetByEmployeeID(ctx context.Context, employeeID string) (*domain.EmployeeFaceRecord, error)
	List(ctx context.Context) ([]domain.EmployeeFaceRecord, error)
	Delete(ctx context.Context, employeeID string) error
}

// AttendanceFilter narrows an attendance listing. Zero values match all.
// From is inclusive, To is exclusive.
type AttendanceFilter struct {
	EmployeeID string
	From       time.Time
	To         time.Time
}

// Match reports whether the event passes the filter.
func (f AttendanceFilter) Match(e *domain.AttendanceEvent) bool {
	if f.EmployeeID != "" && e.EmployeeID != f.EmployeeID {
		return false
	}
	if !f.From.IsZero() && e.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !e.Timestamp.Before(f.To) {
		return false
	}
	return true
}

// AttendanceRepositoryInterface defines operations for the append-only attendance log
type AttendanceRepositoryInterface interface {
	Append(ctx context.Context, event *domain.AttendanceEvent) error
	List(ctx context.Context, filter AttendanceFilter) ([]domain.AttendanceEvent, error)
}

// PerformanceFilter narrows a performance listing by employee and period range.
type PerformanceFilter struct {
	EmployeeID string
	From       time.Time
	To         time.Time
}

// Match reports whether the record passes the filter.
func (f PerformanceFilter) Match(p *domain.PerformanceRecord) bool {
	if f.EmployeeID != "" && p.EmployeeID != f.EmployeeID {
		return false
	}
	if !f.From.IsZero() && p.Period.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !p.Period.Before(f.To) {
		return false
	}
	return true
}

// PerformanceRepositoryInterface defines operations for the append-only performance log.
// Append returns domain.ErrPerformanceExists for a second record in the same period.
type PerformanceRepositoryInterface interface {
	Append(ctx context.Context, record *domain.PerformanceRecord) error
	List(ctx context.Context, filter PerformanceFilter) ([]domain.PerformanceRecord, error)
}

// Repositories bundles one implementation of every store.
type Repositories struct {
	Employees   EmployeeRepositoryInterface
	Faces       FaceRepositoryInterface
	Attendance  AttendanceRepositoryInterface
	Performance PerformanceRepositoryInterface

	// Ping reports storage health for the readiness probe.
	Ping func(ctx context.Context) error
}

// NewPostgres wires the Postgres implementations on a shared pool.
func NewPostgres(pool PgxPool) *Repositories {
	return &Repositories{
		Employees:   NewEmployeeRepository(pool),
		Faces:       NewFaceRepository(pool),
		Attendance:  NewAttendanceRepository(pool),
		Performance: NewPerformanceRepository(pool),
		Ping:        pool.Ping,
	}
}
