package domain

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"time"
)

var employeeIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

// Employee representa um funcionário do diretório
type Employee struct {
	EmployeeID string    `json:"employee_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Department string    `json:"department,omitempty"`
	Role       string    `json:"role,omitempty"`
	HireDate   time.Time `json:"hire_date,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ValidateEmployeeID checks the identifier format used across every store.
func ValidateEmployeeID(id string) error {
	if !employeeIDRegex.MatchString(id) {
		return errors.New("employee_id must be 1-64 chars of letters, digits, '_', '.' or '-'")
	}
	return nil
}

// Validate checks required fields before persisting.
func (e *Employee) Validate() error {
	if err := ValidateEmployeeID(e.EmployeeID); err != nil {
		return err
	}
	if strings.TrimSpace(e.Name) == "" {
		return errors.New("name is required")
	}
	if e.Email != "" {
		if _, err := mail.ParseAddress(e.Email); err != nil {
			return errors.New("email is invalid")
		}
	}
	return nil
}
