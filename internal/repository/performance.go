package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
)

type PerformanceRepository struct {
	pool PgxPool
}

func NewPerformanceRepository(pool PgxPool) *PerformanceRepository {
	return &PerformanceRepository{pool: pool}
}

func (r *PerformanceRepository) Append(ctx context.Context, p *domain.PerformanceRecord) error {
	query := `
		INSERT INTO performance_records (id, employee_id, period, tasks_completed, quality_score, productivity_score, comments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		p.ID,
		p.EmployeeID,
		p.Period,
		p.TasksCompleted,
		p.QualityScore,
		p.ProductivityScore,
		p.Comments,
	).Scan(&p.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrPerformanceExists
		}
		return fmt.Errorf("append performance: %w", err)
	}

	return nil
}

// List returns matching records ordered by period.
func (r *PerformanceRepository) List(ctx context.Context, f PerformanceFilter) ([]domain.PerformanceRecord, error) {
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
		conds = append(conds, fmt.Sprintf("period >= $%d", len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		conds = append(conds, fmt.Sprintf("period < $%d", len(args)))
	}

	query := `SELECT id, employee_id, period, tasks_completed, quality_score, productivity_score, comments, created_at FROM performance_records`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY period, employee_id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list performance: %w", err)
	}
	defer rows.Close()

	records := make([]domain.PerformanceRecord, 0)
	for rows.Next() {
		var p domain.PerformanceRecord
		if err := rows.Scan(
			&p.ID,
			&p.EmployeeID,
			&p.Period,
			&p.TasksCompleted,
			&p.QualityScore,
			&p.ProductivityScore,
			&p.Comments,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan performance: %w", err)
		}
		records = append(records, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate performance: %w", err)
	}

	return records, nil
}
