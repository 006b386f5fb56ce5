// Package csvstore keeps the directory, face registry, attendance log and
// performance log as flat CSV files in one data directory.
//
// The store loads every file on Open and serves reads from memory. Append-only
// logs are appended to; the directory and registry are rewritten through a
// temporary file and rename. Writes are serialized inside the process only.
package csvstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/repository"
)

const (
	employeesFile   = "employees.csv"
	facesFile       = "faces.csv"
	attendanceFile  = "attendance.csv"
	performanceFile = "performance.csv"
)

var (
	employeesHeader   = []string{"employee_id", "name", "email", "department", "role", "hire_date", "created_at", "updated_at"}
	facesHeader       = []string{"employee_id", "registered_at", "embedding"}
	attendanceHeader  = []string{"id", "employee_id", "timestamp", "method", "confidence"}
	performanceHeader = []string{"id", "employee_id", "period", "tasks_completed", "quality_score", "productivity_score", "comments", "created_at"}
)

// Store is the CSV-backed implementation of every repository.
type Store struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time

	mu          sync.RWMutex
	employees   map[string]domain.Employee
	faces       map[string]domain.EmployeeFaceRecord
	attendance  []domain.AttendanceEvent
	performance []domain.PerformanceRecord
	periods     map[string]struct{}
}

// Open loads the store from dir, creating the directory when missing.
// Malformed rows are skipped with a warning.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Store{
		dir:       dir,
		logger:    logger.With("component", "csvstore"),
		now:       time.Now,
		employees: make(map[string]domain.Employee),
		faces:     make(map[string]domain.EmployeeFaceRecord),
		periods:   make(map[string]struct{}),
	}

	loaders := []struct {
		file string
		load func(row []string) error
	}{
		{employeesFile, s.loadEmployee},
		{facesFile, s.loadFace},
		{attendanceFile, s.loadAttendance},
		{performanceFile, s.loadPerformance},
	}
	for _, l := range loaders {
		if err := s.readFile(l.file, l.load); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(s.attendance, func(i, j int) bool {
		return s.attendance[i].Timestamp.Before(s.attendance[j].Timestamp)
	})

	s.logger.Info("csv store loaded",
		"dir", dir,
		"employees", len(s.employees),
		"faces", len(s.faces),
		"attendance", len(s.attendance),
		"performance", len(s.performance),
	)
	return s, nil
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Employees:   &employeeStore{s},
		Faces:       &faceStore{s},
		Attendance:  &attendanceStore{s},
		Performance: &performanceStore{s},
		Ping:        s.Ping,
	}
}

// Ping checks that the data directory is still reachable.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := os.Stat(s.dir); err != nil {
		return fmt.Errorf("data dir unavailable: %w", err)
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// readFile feeds every data row of name to load. Only the first row may be a
// header. A missing file is empty.
func (s *Store) readFile(name string, load func(row []string) error) error {
	f, err := os.Open(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	for first := true; ; first = false {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				s.skip(name, perr.Line, err)
				continue
			}
			return fmt.Errorf("read %s: %w", name, err)
		}
		if first && isHeader(row) {
			continue
		}
		line, _ := r.FieldPos(0)
		if err := load(row); err != nil {
			s.skip(name, line, err)
		}
	}
}

func (s *Store) skip(file string, line int, err error) {
	s.logger.Warn("skipping invalid record",
		"file", file,
		"line", line,
		"error", domain.ErrInvalidRecord.WithError(err),
	)
}

func isHeader(row []string) bool {
	return len(row) > 0 && (row[0] == "employee_id" || row[0] == "id")
}

// appendRow appends one row to name, writing the header on a new file.
func (s *Store) appendRow(name string, header, row []string) error {
	path := s.path(name)
	_, statErr := os.Stat(path)
	isNew := errors.Is(statErr, os.ErrNotExist)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write %s header: %w", name, err)
		}
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", name, err)
	}
	return f.Sync()
}

// rewrite replaces name with header plus rows through a temporary file.
func (s *Store) rewrite(name string, header []string, rows [][]string) error {
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s header: %w", name, err)
	}
	if err := w.WriteAll(rows); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

// loaders

func (s *Store) loadEmployee(row []string) error {
	if len(row) != len(employeesHeader) {
		return fmt.Errorf("expected %d fields, got %d", len(employeesHeader), len(row))
	}
	e := domain.Employee{
		EmployeeID: row[0],
		Name:       row[1],
		Email:      row[2],
		Department: row[3],
		Role:       row[4],
	}
	var err error
	if e.HireDate, err = parseOptionalDate(row[5]); err != nil {
		return fmt.Errorf("hire_date: %w", err)
	}
	if e.CreatedAt, err = parseOptionalTime(row[6]); err != nil {
		return fmt.Errorf("created_at: %w", err)
	}
	if e.UpdatedAt, err = parseOptionalTime(row[7]); err != nil {
		return fmt.Errorf("updated_at: %w", err)
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if _, dup := s.employees[e.EmployeeID]; dup {
		return fmt.Errorf("duplicate employee_id %q", e.EmployeeID)
	}
	s.employees[e.EmployeeID] = e
	return nil
}

func (s *Store) loadFace(row []string) error {
	if len(row) != len(facesHeader) {
		return fmt.Errorf("expected %d fields, got %d", len(facesHeader), len(row))
	}
	if err := domain.ValidateEmployeeID(row[0]); err != nil {
		return err
	}
	registered, err := time.Parse(time.RFC3339Nano, row[1])
	if err != nil {
		return fmt.Errorf("registered_at: %w", err)
	}
	embedding, err := parseEmbedding(row[2])
	if err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	// the file is rewritten whole, so a repeated id is a hand edit; keep the newest
	if prev, ok := s.faces[row[0]]; ok && prev.RegisteredAt.After(registered) {
		return fmt.Errorf("older duplicate face record for %q", row[0])
	}
	s.faces[row[0]] = domain.EmployeeFaceRecord{
		EmployeeID:   row[0],
		Embedding:    embedding,
		RegisteredAt: registered,
	}
	return nil
}

func (s *Store) loadAttendance(row []string) error {
	if len(row) != len(attendanceHeader) {
		return fmt.Errorf("expected %d fields, got %d", len(attendanceHeader), len(row))
	}
	id, err := uuid.Parse(row[0])
	if err != nil {
		return fmt.Errorf("id: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, row[2])
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	e := domain.AttendanceEvent{
		ID:         id,
		EmployeeID: row[1],
		Timestamp:  ts,
		Method:     domain.AttendanceMethod(row[3]),
	}
	if row[4] != "" {
		c, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return fmt.Errorf("confidence: %w", err)
		}
		e.Confidence = &c
	}
	if err := e.Validate(); err != nil {
		return err
	}
	s.attendance = append(s.attendance, e)
	return nil
}

func (s *Store) loadPerformance(row []string) error {
	if len(row) != len(performanceHeader) {
		return fmt.Errorf("expected %d fields, got %d", len(performanceHeader), len(row))
	}
	id, err := uuid.Parse(row[0])
	if err != nil {
		return fmt.Errorf("id: %w", err)
	}
	p := domain.PerformanceRecord{ID: id, EmployeeID: row[1], Comments: row[6]}
	if p.Period, err = time.Parse(domain.PeriodLayout, row[2]); err != nil {
		return fmt.Errorf("period: %w", err)
	}
	if p.TasksCompleted, err = strconv.Atoi(row[3]); err != nil {
		return fmt.Errorf("tasks_completed: %w", err)
	}
	if p.QualityScore, err = strconv.ParseFloat(row[4], 64); err != nil {
		return fmt.Errorf("quality_score: %w", err)
	}
	if p.ProductivityScore, err = strconv.ParseFloat(row[5], 64); err != nil {
		return fmt.Errorf("productivity_score: %w", err)
	}
	if p.CreatedAt, err = parseOptionalTime(row[7]); err != nil {
		return fmt.Errorf("created_at: %w", err)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	key := periodKey(p.EmployeeID, p.Period)
	if _, dup := s.periods[key]; dup {
		return fmt.Errorf("second record for %s in period %s", p.EmployeeID, row[2])
	}
	s.periods[key] = struct{}{}
	s.performance = append(s.performance, p)
	return nil
}

// encoders

func employeeRow(e domain.Employee) []string {
	return []string{
		e.EmployeeID, e.Name, e.Email, e.Department, e.Role,
		formatOptionalDate(e.HireDate),
		formatTime(e.CreatedAt),
		formatTime(e.UpdatedAt),
	}
}

func faceRow(r domain.EmployeeFaceRecord) []string {
	return []string{r.EmployeeID, formatTime(r.RegisteredAt), formatEmbedding(r.Embedding)}
}

func attendanceRow(e domain.AttendanceEvent) []string {
	conf := ""
	if e.Confidence != nil {
		conf = strconv.FormatFloat(*e.Confidence, 'f', -1, 64)
	}
	return []string{e.ID.String(), e.EmployeeID, formatTime(e.Timestamp), string(e.Method), conf}
}

func performanceRow(p domain.PerformanceRecord) []string {
	return []string{
		p.ID.String(),
		p.EmployeeID,
		p.Period.Format(domain.PeriodLayout),
		strconv.Itoa(p.TasksCompleted),
		strconv.FormatFloat(p.QualityScore, 'f', -1, 64),
		strconv.FormatFloat(p.ProductivityScore, 'f', -1, 64),
		p.Comments,
		formatTime(p.CreatedAt),
	}
}

func periodKey(employeeID string, period time.Time) string {
	return employeeID + "|" + period.Format(domain.PeriodLayout)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseOptionalTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func formatOptionalDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.PeriodLayout)
}

func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(domain.PeriodLayout, s)
}

func formatEmbedding(v []float64) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

func parseEmbedding(s string) ([]float64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, errors.New("empty embedding")
	}
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
