package csvstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/repository"
)

type employeeStore struct{ s *Store }

func (r *employeeStore) Create(_ context.Context, e *domain.Employee) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[e.EmployeeID]; ok {
		return domain.ErrEmployeeExists
	}

	now := s.now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	s.employees[e.EmployeeID] = *e

	if err := s.flushEmployees(); err != nil {
		delete(s.employees, e.EmployeeID)
		return err
	}
	return nil
}

func (r *employeeStore) Update(_ context.Context, e *domain.Employee) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.employees[e.EmployeeID]
	if !ok {
		return domain.ErrEmployeeNotFound
	}

	e.CreatedAt = prev.CreatedAt
	e.UpdatedAt = s.now().UTC()
	s.employees[e.EmployeeID] = *e

	if err := s.flushEmployees(); err != nil {
		s.employees[e.EmployeeID] = prev
		return err
	}
	return nil
}

func (r *employeeStore) GetByID(_ context.Context, employeeID string) (*domain.Employee, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.employees[employeeID]
	if !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	return &e, nil
}

func (r *employeeStore) List(_ context.Context) ([]domain.Employee, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

// Delete removes the employee and their face record. Attendance and
// performance history is kept.
func (r *employeeStore) Delete(_ context.Context, employeeID string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.employees[employeeID]
	if !ok {
		return domain.ErrEmployeeNotFound
	}
	delete(s.employees, employeeID)
	if err := s.flushEmployees(); err != nil {
		s.employees[employeeID] = prev
		return err
	}

	if face, ok := s.faces[employeeID]; ok {
		delete(s.faces, employeeID)
		if err := s.flushFaces(); err != nil {
			s.faces[employeeID] = face
			return err
		}
	}
	return nil
}

type faceStore struct{ s *Store }

func (r *faceStore) Upsert(_ context.Context, rec *domain.EmployeeFaceRecord) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(rec.Embedding) == 0 {
		return domain.ErrInvalidEmbedding
	}
	if _, ok := s.employees[rec.EmployeeID]; !ok {
		return domain.ErrEmployeeNotFound
	}

	prev, hadPrev := s.faces[rec.EmployeeID]
	stored := *rec
	stored.Embedding = append([]float64(nil), rec.Embedding...)
	s.faces[rec.EmployeeID] = stored

	if err := s.flushFaces(); err != nil {
		if hadPrev {
			s.faces[rec.EmployeeID] = prev
		} else {
			delete(s.faces, rec.EmployeeID)
		}
		return err
	}
	return nil
}

func (r *faceStore) GetByEmployeeID(_ context.Context, employeeID string) (*domain.EmployeeFaceRecord, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.faces[employeeID]
	if !ok {
		return nil, domain.ErrFaceNotFound
	}
	return &rec, nil
}

func (r *faceStore) List(_ context.Context) ([]domain.EmployeeFaceRecord, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.EmployeeFaceRecord, 0, len(s.faces))
	for _, rec := range s.faces {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (r *faceStore) Delete(_ context.Context, employeeID string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.faces[employeeID]
	if !ok {
		return domain.ErrFaceNotFound
	}
	delete(s.faces, employeeID)
	if err := s.flushFaces(); err != nil {
		s.faces[employeeID] = prev
		return err
	}
	return nil
}

type attendanceStore struct{ s *Store }

func (r *attendanceStore) Append(_ context.Context, e *domain.AttendanceEvent) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if err := s.appendRow(attendanceFile, attendanceHeader, attendanceRow(*e)); err != nil {
		return err
	}

	// keep the slice ordered by timestamp; appends are almost always newest
	i := sort.Search(len(s.attendance), func(i int) bool {
		return s.attendance[i].Timestamp.After(e.Timestamp)
	})
	s.attendance = append(s.attendance, domain.AttendanceEvent{})
	copy(s.attendance[i+1:], s.attendance[i:])
	s.attendance[i] = *e
	return nil
}

func (r *attendanceStore) List(_ context.Context, f repository.AttendanceFilter) ([]domain.AttendanceEvent, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.AttendanceEvent, 0)
	for i := range s.attendance {
		if f.Match(&s.attendance[i]) {
			out = append(out, s.attendance[i])
		}
	}
	return out, nil
}

type performanceStore struct{ s *Store }

func (r *performanceStore) Append(_ context.Context, p *domain.PerformanceRecord) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	key := periodKey(p.EmployeeID, p.Period)
	if _, dup := s.periods[key]; dup {
		return domain.ErrPerformanceExists
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = s.now().UTC()

	if err := s.appendRow(performanceFile, performanceHeader, performanceRow(*p)); err != nil {
		return err
	}
	s.periods[key] = struct{}{}
	s.performance = append(s.performance, *p)
	return nil
}

func (r *performanceStore) List(_ context.Context, f repository.PerformanceFilter) ([]domain.PerformanceRecord, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.PerformanceRecord, 0)
	for i := range s.performance {
		if f.Match(&s.performance[i]) {
			out = append(out, s.performance[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Period.Equal(out[j].Period) {
			return out[i].Period.Before(out[j].Period)
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out, nil
}

// flushEmployees rewrites employees.csv; callers hold s.mu.
func (s *Store) flushEmployees() error {
	ids := make([]string, 0, len(s.employees))
	for id := range s.employees {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, employeeRow(s.employees[id]))
	}
	return s.rewrite(employeesFile, employeesHeader, rows)
}

// flushFaces rewrites faces.csv; callers hold s.mu.
func (s *Store) flushFaces() error {
	ids := make([]string, 0, len(s.faces))
	for id := range s.faces {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, faceRow(s.faces[id]))
	}
	return s.rewrite(facesFile, facesHeader, rows)
}

var (
	_ repository.EmployeeRepositoryInterface    = (*employeeStore)(nil)
	_ repository.FaceRepositoryInterface        = (*faceStore)(nil)
	_ repository.AttendanceRepositoryInterface  = (*attendanceStore)(nil)
	_ repository.PerformanceRepositoryInterface = (*performanceStore)(nil)
)
