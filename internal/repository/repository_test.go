package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
)

var employeeColumns = []string{
	"employee_id", "name", "email", "department", "role", "hire_date", "created_at", "updated_at",
}

func q(s string) string { return regexp.QuoteMeta(s) }

// EmployeeRepository Tests

func TestEmployeeRepository_Create(t *testing.T) {
	now := time.Now()
	hire := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		employee  *domain.Employee
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name:     "successful creation",
			employee: &domain.Employee{EmployeeID: "EMP001", Name: "Ana Souza", HireDate: hire},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(q("INSERT INTO employees")).
					WithArgs("EMP001", "Ana Souza", "", "", "", &hire).
					WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
			},
		},
		{
			name:     "duplicate employee id",
			employee: &domain.Employee{EmployeeID: "EMP001", Name: "Ana Souza"},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(q("INSERT INTO employees")).
					WithArgs("EMP001", "Ana Souza", "", "", "", pgxmock.AnyArg()).
					WillReturnError(&pgconn.PgError{Code: "23505"})
			},
			wantErr: domain.ErrEmployeeExists,
		},
		{
			name:     "database error",
			employee: &domain.Employee{EmployeeID: "EMP002", Name: "Bruno"},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(q("INSERT INTO employees")).
					WithArgs("EMP002", "Bruno", "", "", "", pgxmock.AnyArg()).
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: errors.New("create employee: connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewEmployeeRepository(mock)
			err = repo.Create(context.Background(), tt.employee)

			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, domain.ErrEmployeeExists) {
					assert.ErrorIs(t, err, domain.ErrEmployeeExists)
				} else {
					assert.Contains(t, err.Error(), "create employee")
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, now, tt.employee.CreatedAt)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEmployeeRepository_GetByID(t *testing.T) {
	now := time.Now()
	hire := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		want      *domain.Employee
		wantErr   error
	}{
		{
			name: "found with hire date",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(employeeColumns).
					AddRow("EMP001", "Ana Souza", "ana@example.com", "Ops", "Analyst", &hire, now, now)
				mock.ExpectQuery(q("FROM employees WHERE employee_id = $1")).
					WithArgs("EMP001").
					WillReturnRows(rows)
			},
			want: &domain.Employee{
				EmployeeID: "EMP001", Name: "Ana Souza", Email: "ana@example.com",
				Department: "Ops", Role: "Analyst", HireDate: hire, CreatedAt: now, UpdatedAt: now,
			},
		},
		{
			name: "not found",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(q("FROM employees WHERE employee_id = $1")).
					WithArgs("EMP001").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrEmployeeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			got, err := NewEmployeeRepository(mock).GetByID(context.Background(), "EMP001")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEmployeeRepository_UpdateAndDeleteNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(q("UPDATE employees")).
		WithArgs("EMP404", "Ghost", "", "", "", pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(q("DELETE FROM employees WHERE employee_id = $1")).
		WithArgs("EMP404").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewEmployeeRepository(mock)

	err = repo.Update(context.Background(), &domain.Employee{EmployeeID: "EMP404", Name: "Ghost"})
	assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)

	err = repo.Delete(context.Background(), "EMP404")
	assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	rows := pgxmock.NewRows(employeeColumns).
		AddRow("EMP001", "Ana", "", "", "", nil, now, now).
		AddRow("EMP002", "Bruno", "", "", "", nil, now, now)
	mock.ExpectQuery(q("FROM employees ORDER BY employee_id")).WillReturnRows(rows)

	got, err := NewEmployeeRepository(mock).List(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "EMP002", got[1].EmployeeID)
	assert.True(t, got[0].HireDate.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// FaceRepository Tests

func TestFaceRepository_Upsert(t *testing.T) {
	registered := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		record    *domain.EmployeeFaceRecord
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name:   "insert or replace",
			record: &domain.EmployeeFaceRecord{EmployeeID: "EMP001", Embedding: []float64{0.1, 0.2, 0.3}, RegisteredAt: registered},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(q("ON CONFLICT (employee_id)")).
					WithArgs("EMP001", pgxmock.AnyArg(), registered).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name:   "unknown employee",
			record: &domain.EmployeeFaceRecord{EmployeeID: "EMP404", Embedding: []float64{0.1}, RegisteredAt: registered},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(q("INSERT INTO face_records")).
					WithArgs("EMP404", pgxmock.AnyArg(), registered).
					WillReturnError(&pgconn.PgError{Code: "23503"})
			},
			wantErr: domain.ErrEmployeeNotFound,
		},
		{
			name:      "empty embedding",
			record:    &domain.EmployeeFaceRecord{EmployeeID: "EMP001", RegisteredAt: registered},
			mockSetup: func(mock pgxmock.PgxPoolIface) {},
			wantErr:   domain.ErrInvalidEmbedding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			err = NewFaceRepository(mock).Upsert(context.Background(), tt.record)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFaceRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	t1 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	v1 := pgvector.NewVector([]float32{0.1, 0.2, 0.3})
	v2 := pgvector.NewVector([]float32{0.4, 0.5, 0.6})
	rows := pgxmock.NewRows([]string{"employee_id", "embedding", "registered_at"}).
		AddRow("EMP001", &v1, t1).
		AddRow("EMP002", &v2, t1.Add(time.Hour))
	mock.ExpectQuery(q("SELECT employee_id, embedding, registered_at FROM face_records ORDER BY employee_id")).
		WillReturnRows(rows)

	got, err := NewFaceRepository(mock).List(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.InDeltaSlice(t, []float64{0.4, 0.5, 0.6}, got[1].Embedding, 0.0001)
	assert.Equal(t, t1.Add(time.Hour), got[1].RegisteredAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFaceRepository_GetAndDelete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(q("FROM face_records WHERE employee_id = $1")).
		WithArgs("EMP009").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(q("DELETE FROM face_records")).
		WithArgs("EMP001").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	repo := NewFaceRepository(mock)

	_, err = repo.GetByEmployeeID(context.Background(), "EMP009")
	assert.ErrorIs(t, err, domain.ErrFaceNotFound)

	assert.NoError(t, repo.Delete(context.Background(), "EMP001"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// AttendanceRepository Tests

func TestAttendanceRepository_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ts := time.Date(2025, 3, 10, 8, 55, 0, 0, time.UTC)
	conf := 0.82
	event := &domain.AttendanceEvent{EmployeeID: "EMP001", Timestamp: ts, Method: domain.MethodFaceMatch, Confidence: &conf}

	mock.ExpectExec(q("INSERT INTO attendance_events")).
		WithArgs(pgxmock.AnyArg(), "EMP001", ts, "face-match", &conf).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = NewAttendanceRepository(mock).Append(context.Background(), event)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepository_List(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	ts := from.Add(9 * time.Hour)
	id := uuid.New()

	tests := []struct {
		name      string
		filter    AttendanceFilter
		mockSetup func(mock pgxmock.PgxPoolIface)
	}{
		{
			name:   "no filter",
			filter: AttendanceFilter{},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(q("SELECT id, employee_id, ts, method, confidence FROM attendance_events ORDER BY ts, id")).
					WillReturnRows(pgxmock.NewRows([]string{"id", "employee_id", "ts", "method", "confidence"}).
						AddRow(id, "EMP001", ts, "manual", nil))
			},
		},
		{
			name:   "employee and range",
			filter: AttendanceFilter{EmployeeID: "EMP001", From: from, To: to},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(q("WHERE employee_id = $1 AND ts >= $2 AND ts < $3 ORDER BY ts, id")).
					WithArgs("EMP001", from, to).
					WillReturnRows(pgxmock.NewRows([]string{"id", "employee_id", "ts", "method", "confidence"}).
						AddRow(id, "EMP001", ts, "manual", nil))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			got, err := NewAttendanceRepository(mock).List(context.Background(), tt.filter)

			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, domain.MethodManual, got[0].Method)
			assert.Nil(t, got[0].Confidence)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// PerformanceRepository Tests

func TestPerformanceRepository_Append(t *testing.T) {
	period := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "first record in period",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(q("INSERT INTO performance_records")).
					WithArgs(pgxmock.AnyArg(), "EMP001", period, 8, 7.5, 6.2, "").
					WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))
			},
		},
		{
			name: "second record in same period",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(q("INSERT INTO performance_records")).
					WithArgs(pgxmock.AnyArg(), "EMP001", period, 8, 7.5, 6.2, "").
					WillReturnError(&pgconn.PgError{Code: "23505"})
			},
			wantErr: domain.ErrPerformanceExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			rec := &domain.PerformanceRecord{
				EmployeeID: "EMP001", Period: period, TasksCompleted: 8, QualityScore: 7.5, ProductivityScore: 6.2,
			}
			err = NewPerformanceRepository(mock).Append(context.Background(), rec)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, now, rec.CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPerformanceRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	period := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	mock.ExpectQuery(q("FROM performance_records WHERE employee_id = $1 ORDER BY period, employee_id")).
		WithArgs("EMP001").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "employee_id", "period", "tasks_completed", "quality_score", "productivity_score", "comments", "created_at",
		}).AddRow(uuid.New(), "EMP001", period, 5, 4.0, 5.5, "slow week", now))

	got, err := NewPerformanceRepository(mock).List(context.Background(), PerformanceFilter{EmployeeID: "EMP001"})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 4.0, got[0].QualityScore)
	assert.Equal(t, "slow week", got[0].Comments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilters_Match(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	f := AttendanceFilter{EmployeeID: "EMP001", From: from, To: to}

	assert.True(t, f.Match(&domain.AttendanceEvent{EmployeeID: "EMP001", Timestamp: from}))
	assert.False(t, f.Match(&domain.AttendanceEvent{EmployeeID: "EMP001", Timestamp: to}))
	assert.False(t, f.Match(&domain.AttendanceEvent{EmployeeID: "EMP002", Timestamp: from}))

	pf := PerformanceFilter{From: from}
	assert.True(t, pf.Match(&domain.PerformanceRecord{Period: to}))
	assert.False(t, pf.Match(&domain.PerformanceRecord{Period: from.AddDate(0, 0, -1)}))
}
