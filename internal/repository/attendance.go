package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
)

type AttendanceRepository struct {
	pool PgxPool
}

func NewAttendanceRepository(pool PgxPool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

func (r *AttendanceRepository) Append(ctx context.Context, e *domain.AttendanceEvent) error {
	query := `
		INSERT INTO attendance_events (id, employee_id, ts, method, confidence)
		VALUES ($1, $2, $3, $4, $5)
	`

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	_, err := r.pool.Exec(ctx, query, e.ID, e.EmployeeID, e.Timestamp, string(e.Method), e.Confidence)
	if err != nil {
		return fmt.Errorf("append attendance: %w", err)
	}

	return nil
}

// List returns matching events ordered by timestamp.
func (r *AttendanceRepository) List(ctx context.Context, f AttendanceFilter) ([]domain.AttendanceEvent, error) {
	var (
		conds []string
		args  []any
	)
	if f.EmployeeID != "" {
		args = append(args, f.EmployeeID)
		conds = append(conds, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		conds = append(conds, fmt.Sprintf("ts >= $%d", len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		conds = append(conds, fmt.Sprintf("ts < $%d", len(args)))
	}

	query := `SELECT id, employee_id, ts, method, confidence FROM attendance_events`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY ts, id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	events := make([]domain.AttendanceEvent, 0)
	for rows.Next() {
		var e domain.AttendanceEvent
		var method string
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.Timestamp, &method, &e.Confidence); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		e.Method = domain.AttendanceMethod(method)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance: %w", err)
	}

	return events, nil
}
