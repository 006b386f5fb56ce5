package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
)

type FaceRepository struct {
	pool PgxPool
}

func NewFaceRepository(pool PgxPool) *FaceRepository {
	return &FaceRepository{pool: pool}
}

// Upsert stores the employee's embedding, replacing any previous registration.
func (r *FaceRepository) Upsert(ctx context.Context, rec *domain.EmployeeFaceRecord) error {
	query := `
		INSERT INTO face_records (employee_id, embedding, registered_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (employee_id)
		DO UPDATE SET embedding = EXCLUDED.embedding, registered_at = EXCLUDED.registered_at
	`

	if len(rec.Embedding) == 0 {
		return domain.ErrInvalidEmbedding
	}

	embedding := toVector(rec.Embedding)
	_, err := r.pool.Exec(ctx, query, rec.EmployeeID, &embedding, rec.RegisteredAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrEmployeeNotFound
		}
		return fmt.Errorf("upsert face record: %w", err)
	}

	return nil
}

func (r *FaceRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*domain.EmployeeFaceRecord, error) {
	query := `
		SELECT employee_id, embedding, registered_at
		FROM face_records
		WHERE employee_id = $1
	`

	var rec domain.EmployeeFaceRecord
	var embedding *pgvector.Vector

	err := r.pool.QueryRow(ctx, query, employeeID).Scan(&rec.EmployeeID, &embedding, &rec.RegisteredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get face record: %w", err)
	}

	rec.Embedding = fromVector(embedding)
	return &rec, nil
}

// List returns the whole registry for brute-force matching.
func (r *FaceRepository) List(ctx context.Context) ([]domain.EmployeeFaceRecord, error) {
	query := `
		SELECT employee_id, embedding, registered_at
		FROM face_records
		ORDER BY employee_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list face records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.EmployeeFaceRecord, 0)
	for rows.Next() {
		var rec domain.EmployeeFaceRecord
		var embedding *pgvector.Vector
		if err := rows.Scan(&rec.EmployeeID, &embedding, &rec.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan face record: %w", err)
		}
		rec.Embedding = fromVector(embedding)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate face records: %w", err)
	}

	return records, nil
}

func (r *FaceRepository) Delete(ctx context.Context, employeeID string) error {
	query := `DELETE FROM face_records WHERE employee_id = $1`

	result, err := r.pool.Exec(ctx, query, employeeID)
	if err != nil {
		return fmt.Errorf("delete face record: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrFaceNotFound
	}

	return nil
}
