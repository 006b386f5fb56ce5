package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/admin"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/alert"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/attendance"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/audit"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/performance"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/repository"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/ws"
)

// testLogger returns a logger that discards all output
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockEmployeeService struct {
	mock.Mock
}

func (m *MockEmployeeService) Create(ctx context.Context, e *domain.Employee) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockEmployeeService) Update(ctx context.Context, e *domain.Employee) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockEmployeeService) Get(ctx context.Context, employeeID string) (*domain.Employee, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func (m *MockEmployeeService) List(ctx context.Context) ([]domain.Employee, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Employee), args.Error(1)
}

func (m *MockEmployeeService) Delete(ctx context.Context, employeeID string) error {
	return m.Called(ctx, employeeID).Error(0)
}

type MockStatsProvider struct {
	mock.Mock
}

func (m *MockStatsProvider) Stats(ctx context.Context, employeeID string, from, to time.Time) (*performance.Stats, error) {
	args := m.Called(ctx, employeeID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*performance.Stats), args.Error(1)
}

type MockFaceService struct {
	mock.Mock
}

func (m *MockFaceService) Enroll(ctx context.Context, employeeID string, embedding []float64) (*domain.EmployeeFaceRecord, error) {
	args := m.Called(ctx, employeeID, embedding)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmployeeFaceRecord), args.Error(1)
}

func (m *MockFaceService) EnrollImage(ctx context.Context, employeeID string, imageBytes []byte) (*domain.EmployeeFaceRecord, error) {
	args := m.Called(ctx, employeeID, imageBytes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmployeeFaceRecord), args.Error(1)
}

func (m *MockFaceService) Remove(ctx context.Context, employeeID string) error {
	return m.Called(ctx, employeeID).Error(0)
}

type MockAttendanceService struct {
	mock.Mock
}

func (m *MockAttendanceService) CheckInManual(ctx context.Context, employeeID string, at time.Time) (attendance.Outcome, error) {
	args := m.Called(ctx, employeeID, at)
	return args.Get(0).(attendance.Outcome), args.Error(1)
}

func (m *MockAttendanceService) CheckInSamples(ctx context.Context, samples []domain.DetectionSample) ([]attendance.Outcome, error) {
	args := m.Called(ctx, samples)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]attendance.Outcome), args.Error(1)
}

func (m *MockAttendanceService) CheckInImage(ctx context.Context, image []byte) ([]attendance.Outcome, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]attendance.Outcome), args.Error(1)
}

func (m *MockAttendanceService) List(ctx context.Context, filter repository.AttendanceFilter) ([]domain.AttendanceEvent, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttendanceEvent), args.Error(1)
}

type MockPerformanceService struct {
	mock.Mock
}

func (m *MockPerformanceService) Record(ctx context.Context, in performance.RecordInput) (*domain.PerformanceRecord, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PerformanceRecord), args.Error(1)
}

func (m *MockPerformanceService) List(ctx context.Context, filter repository.PerformanceFilter) ([]domain.PerformanceRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PerformanceRecord), args.Error(1)
}

func (m *MockPerformanceService) DepartmentStats(ctx context.Context, name string, from, to time.Time) (*performance.DepartmentStats, error) {
	args := m.Called(ctx, name, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*performance.DepartmentStats), args.Error(1)
}

type MockAlertService struct {
	mock.Mock
}

func (m *MockAlertService) EvaluateAll(ctx context.Context, now time.Time) ([]alert.Alert, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]alert.Alert), args.Error(1)
}

func (m *MockAlertService) EvaluateEmployee(ctx context.Context, employeeID string, now time.Time) ([]alert.Alert, error) {
	args := m.Called(ctx, employeeID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]alert.Alert), args.Error(1)
}

func (m *MockAlertService) Thresholds() alert.Thresholds {
	return m.Called().Get(0).(alert.Thresholds)
}

func (m *MockAlertService) UpdateThresholds(t alert.Thresholds) error {
	return m.Called(t).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(eventType ws.EventType, data any) {
	m.Called(eventType, data)
}

// recordingAudit keeps every logged event.
type recordingAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAudit) Log(_ context.Context, e audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingAudit) last(t *testing.T) audit.Event {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.events)
	return r.events[len(r.events)-1]
}

// newTestApp mimics an authenticated request with the given role.
func newTestApp(role admin.Role) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(testLogger())})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalSubject, "tester")
		c.Locals(middleware.LocalRole, role)
		return c.Next()
	})
	return app
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func imageRequest(t *testing.T, method, target string, image []byte, contentType string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="frame.jpg"`)
	h.Set("Content-Type", contentType)
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(image)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body errorBody
	decode(t, resp, &body)
	return body.Error.Code
}
