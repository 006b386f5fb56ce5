package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/audit"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/performance"
)

// EmployeeService is the directory behind the employee routes.
type EmployeeService interface {
	Create(ctx context.Context, e *domain.Employee) error
	Update(ctx context.Context, e *domain.Employee) error
	Get(ctx context.Context, employeeID string) (*domain.Employee, error)
	List(ctx context.Context) ([]domain.Employee, error)
	Delete(ctx context.Context, employeeID string) error
}

// StatsProvider summarizes an employee over a date range.
type StatsProvider interface {
	Stats(ctx context.Context, employeeID string, from, to time.Time) (*performance.Stats, error)
}

// EmployeeHandler handles the employee directory
type EmployeeHandler struct {
	service EmployeeService
	stats   StatsProvider
	audit   audit.Logger
	logger  *slog.Logger
}

func NewEmployeeHandler(service EmployeeService, stats StatsProvider, auditLogger audit.Logger, logger *slog.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		service: service,
		stats:   stats,
		audit:   auditLogger,
		logger:  logger,
	}
}

// EmployeeRequest is the body of create and update calls.
type EmployeeRequest struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Role       string `json:"role"`
	HireDate   string `json:"hire_date"`
}

// EmployeeResponse is an employee as returned by the API.
type EmployeeResponse struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
	Role       string `json:"role,omitempty"`
	HireDate   string `json:"hire_date,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type EmployeeListResponse struct {
	Employees []EmployeeResponse `json:"employees"`
	Total     int                `json:"total"`
}

func toEmployeeResponse(e *domain.Employee) EmployeeResponse {
	resp := EmployeeResponse{
		EmployeeID: e.EmployeeID,
		Name:       e.Name,
		Email:      e.Email,
		Department: e.Department,
		Role:       e.Role,
		CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  e.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if !e.HireDate.IsZero() {
		resp.HireDate = e.HireDate.Format(dateLayout)
	}
	return resp
}

func (r EmployeeRequest) toEmployee() (*domain.Employee, error) {
	hireDate, err := parseDate(r.HireDate, "hire_date")
	if err != nil {
		return nil, err
	}
	return &domain.Employee{
		EmployeeID: r.EmployeeID,
		Name:       r.Name,
		Email:      r.Email,
		Department: r.Department,
		Role:       r.Role,
		HireDate:   hireDate,
	}, nil
}

// Create POST /v1/employees
func (h *EmployeeHandler) Create(c *fiber.Ctx) error {
	var req EmployeeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	employee, err := req.toEmployee()
	if err != nil {
		return err
	}

	err = h.service.Create(c.Context(), employee)
	recordAudit(c, h.audit, audit.Event{Action: audit.ActionEmployeeCreated, EmployeeID: employee.EmployeeID}, err)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(toEmployeeResponse(employee))
}

// List GET /v1/employees
func (h *EmployeeHandler) List(c *fiber.Ctx) error {
	employees, err := h.service.List(c.Context())
	if err != nil {
		return err
	}

	resp := EmployeeListResponse{
		Employees: make([]EmployeeResponse, 0, len(employees)),
		Total:     len(employees),
	}
	for i := range employees {
		resp.Employees = append(resp.Employees, toEmployeeResponse(&employees[i]))
	}
	return c.JSON(resp)
}

// Get GET /v1/employees/:id
func (h *EmployeeHandler) Get(c *fiber.Ctx) error {
	id, err := employeeParam(c)
	if err != nil {
		return err
	}

	employee, err := h.service.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(toEmployeeResponse(employee))
}

// Update PUT /v1/employees/:id - the path id wins over the body
func (h *EmployeeHandler) Update(c *fiber.Ctx) error {
	id, err := employeeParam(c)
	if err != nil {
		return err
	}

	var req EmployeeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	req.EmployeeID = id
	employee, err := req.toEmployee()
	if err != nil {
		return err
	}

	err = h.service.Update(c.Context(), employee)
	recordAudit(c, h.audit, audit.Event{Action: audit.ActionEmployeeUpdated, EmployeeID: id}, err)
	if err != nil {
		return err
	}

	updated, err := h.service.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(toEmployeeResponse(updated))
}

// Delete DELETE /v1/employees/:id
func (h *EmployeeHandler) Delete(c *fiber.Ctx) error {
	id, err := employeeParam(c)
	if err != nil {
		return err
	}

	err = h.service.Delete(c.Context(), id)
	recordAudit(c, h.audit, audit.Event{Action: audit.ActionEmployeeDeleted, EmployeeID: id}, err)
	if err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Stats GET /v1/employees/:id/stats?from=&to=
func (h *EmployeeHandler) Stats(c *fiber.Ctx) error {
	id, err := employeeParam(c)
	if err != nil {
		return err
	}
	from, to, err := parseRange(c)
	if err != nil {
		return err
	}

	stats, err := h.stats.Stats(c.Context(), id, from, to)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
