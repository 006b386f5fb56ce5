package domain

import (
	"time"
)

// EmployeeFaceRecord é o embedding cadastrado de um funcionário.
// Re-registration replaces the record; nothing deletes it implicitly.
type EmployeeFaceRecord struct {
	EmployeeID   string    `json:"employee_id"`
	Embedding    []float64 `json:"-"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Dimension returns the embedding length.
func (r EmployeeFaceRecord) Dimension() int {
	return len(r.Embedding)
}

// DetectionSample is a single face embedding captured from one frame.
// Samples are ephemeral and never persisted.
type DetectionSample struct {
	Embedding  []float64 `json:"embedding"`
	CapturedAt time.Time `json:"captured_at"`
}
