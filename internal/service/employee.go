// Package service holds the employee directory and face enrollment use cases.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/repository"
)

type EmployeeService struct {
	repo   repository.EmployeeRepositoryInterface
	logger *slog.Logger
}

func NewEmployeeService(repo repository.EmployeeRepositoryInterface, logger *slog.Logger) *EmployeeService {
	return &EmployeeService{repo: repo, logger: logger}
}

// Create adds an employee. Duplicate IDs return ErrEmployeeExists.
func (s *EmployeeService) Create(ctx context.Context, e *domain.Employee) error {
	normalize(e)
	if err := e.Validate(); err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return err
	}
	s.logger.Info("employee created", "employee_id", e.EmployeeID)
	return nil
}

func (s *EmployeeService) Update(ctx context.Context, e *domain.Employee) error {
	normalize(e)
	if err := e.Validate(); err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return err
	}
	s.logger.Info("employee updated", "employee_id", e.EmployeeID)
	return nil
}

func (s *EmployeeService) Get(ctx context.Context, employeeID string) (*domain.Employee, error) {
	return s.repo.GetByID(ctx, employeeID)
}

func (s *EmployeeService) List(ctx context.Context) ([]domain.Employee, error) {
	return s.repo.List(ctx)
}

// Delete removes the employee and their face. Attendance and performance
// history stay in the logs.
func (s *EmployeeService) Delete(ctx context.Context, employeeID string) error {
	if err := s.repo.Delete(ctx, employeeID); err != nil {
		return err
	}
	s.logger.Info("employee deleted", "employee_id", employeeID)
	return nil
}

func normalize(e *domain.Employee) {
	e.EmployeeID = strings.TrimSpace(e.EmployeeID)
	e.Name = strings.TrimSpace(e.Name)
	e.Email = strings.TrimSpace(e.Email)
	e.Department = strings.TrimSpace(e.Department)
	e.Role = strings.TrimSpace(e.Role)
	if !e.HireDate.IsZero() {
		y, m, d := e.HireDate.UTC().Date()
		e.HireDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
}
