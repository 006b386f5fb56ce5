package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// EmptyResponse represents no content response (204)
type EmptyResponse struct{}

// Employee directory

type EmployeeRequest struct {
	EmployeeID string `json:"employee_id" example:"EMP001"`
	Name       string `json:"name" example:"Ana Souza"`
	Email      string `json:"email" example:"ana@example.com"`
	Department string `json:"department" example:"Operations"`
	Role       string `json:"role" example:"Analyst"`
	HireDate   string `json:"hire_date" example:"2024-02-01"`
}

type EmployeeResponse struct {
	EmployeeID string `json:"employee_id" example:"EMP001"`
	Name       string `json:"name" example:"Ana Souza"`
	Email      string `json:"email,omitempty" example:"ana@example.com"`
	Department string `json:"department,omitempty" example:"Operations"`
	Role       string `json:"role,omitempty" example:"Analyst"`
	HireDate   string `json:"hire_date,omitempty" example:"2024-02-01"`
	CreatedAt  string `json:"created_at" example:"2024-02-01T09:00:00Z"`
	UpdatedAt  string `json:"updated_at" example:"2024-02-01T09:00:00Z"`
}

type EmployeeListResponse struct {
	Employees []EmployeeResponse `json:"employees"`
	Total     int                `json:"total" example:"1"`
}

type StatsResponse struct {
	EmployeeID           string  `json:"employee_id" example:"EMP001"`
	From                 string  `json:"from" example:"2025-03-01T00:00:00Z"`
	To                   string  `json:"to" example:"2025-04-01T00:00:00Z"`
	PresentDays          int     `json:"present_days" example:"19"`
	WeekendDays          int     `json:"weekend_days" example:"1"`
	WorkingDays          int     `json:"working_days" example:"21"`
	AttendanceRate       float64 `json:"attendance_rate" example:"0.9"`
	AvgTasksCompleted    float64 `json:"avg_tasks_completed" example:"8.5"`
	AvgQualityScore      float64 `json:"avg_quality_score" example:"7.2"`
	AvgProductivityScore float64 `json:"avg_productivity_score" example:"7.9"`
}

type DepartmentMember struct {
	EmployeeID           string  `json:"employee_id" example:"EMP001"`
	Name                 string  `json:"name" example:"Ana Souza"`
	Role                 string  `json:"role,omitempty" example:"Backend"`
	AttendanceRate       float64 `json:"attendance_rate" example:"0.95"`
	AvgProductivityScore float64 `json:"avg_productivity_score" example:"8.1"`
	AttendanceDelta      float64 `json:"attendance_delta" example:"0.05"`
	ProductivityDelta    float64 `json:"productivity_delta" example:"0.6"`
	Rank                 int     `json:"productivity_rank" example:"1"`
}

type DepartmentStatsResponse struct {
	Department           string             `json:"department" example:"Engineering"`
	From                 string             `json:"from" example:"2025-03-01T00:00:00Z"`
	To                   string             `json:"to" example:"2025-04-01T00:00:00Z"`
	Headcount            int                `json:"headcount" example:"4"`
	AvgAttendanceRate    float64            `json:"avg_attendance_rate" example:"0.9"`
	Records              int                `json:"performance_records" example:"12"`
	AvgTasksCompleted    float64            `json:"avg_tasks_completed" example:"7.5"`
	AvgQualityScore      float64            `json:"avg_quality_score" example:"7.4"`
	AvgProductivityScore float64            `json:"avg_productivity_score" example:"7.5"`
	Members              []DepartmentMember `json:"members"`
}

// Face registry

type EnrollEmbeddingRequest struct {
	Embedding []float64 `json:"embedding"`
}

type EnrollResponse struct {
	EmployeeID   string `json:"employee_id" example:"EMP001"`
	Dimension    int    `json:"dimension" example:"128"`
	RegisteredAt string `json:"registered_at" example:"2025-03-10T09:00:00Z"`
}

// Attendance

type ManualCheckInRequest struct {
	EmployeeID string `json:"employee_id" example:"EMP001"`
	Timestamp  string `json:"timestamp,omitempty" example:"2025-03-10T09:00:00Z"`
}

type MatchRequest struct {
	Embeddings [][]float64 `json:"embeddings"`
	CapturedAt string      `json:"captured_at,omitempty" example:"2025-03-10T09:00:00Z"`
}

type MatchResult struct {
	EmployeeID string  `json:"employee_id,omitempty" example:"EMP001"`
	Known      bool    `json:"known" example:"true"`
	Distance   float64 `json:"distance" example:"0.31"`
	Confidence float64 `json:"confidence" example:"0.69"`
	Ambiguous  bool    `json:"ambiguous,omitempty" example:"false"`
}

type AttendanceEvent struct {
	ID         string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	EmployeeID string  `json:"employee_id" example:"EMP001"`
	Timestamp  string  `json:"timestamp" example:"2025-03-10T09:00:00Z"`
	Method     string  `json:"method" example:"face_match"`
	Confidence float64 `json:"confidence,omitempty" example:"0.69"`
}

type CheckInOutcome struct {
	Status         string           `json:"status" example:"recorded"`
	Reason         string           `json:"reason,omitempty" example:""`
	EmployeeID     string           `json:"employee_id,omitempty" example:"EMP001"`
	Match          *MatchResult     `json:"match,omitempty"`
	Event          *AttendanceEvent `json:"event,omitempty"`
	LastRecordedAt string           `json:"last_recorded_at,omitempty" example:"2025-03-10T08:58:00Z"`
}

type CheckInResponse struct {
	Outcomes []CheckInOutcome `json:"outcomes"`
	Recorded int              `json:"recorded" example:"1"`
}

type AttendanceListResponse struct {
	Events []AttendanceEvent `json:"events"`
	Total  int               `json:"total" example:"1"`
}

// Performance

type PerformanceRequest struct {
	EmployeeID        string  `json:"employee_id" example:"EMP001"`
	Period            string  `json:"period" example:"2025-03-10"`
	TasksCompleted    int     `json:"tasks_completed" example:"8"`
	QualityScore      float64 `json:"quality_score" example:"7.5"`
	ProductivityScore float64 `json:"productivity_score,omitempty" example:"7.2"`
	Efficiency        float64 `json:"efficiency,omitempty" example:"0.9"`
	Comments          string  `json:"comments,omitempty" example:"Closed the quarter backlog"`
}

type PerformanceRecord struct {
	EmployeeID        string  `json:"employee_id" example:"EMP001"`
	Period            string  `json:"period" example:"2025-03-10T00:00:00Z"`
	TasksCompleted    int     `json:"tasks_completed" example:"8"`
	QualityScore      float64 `json:"quality_score" example:"7.5"`
	ProductivityScore float64 `json:"productivity_score" example:"7.2"`
	Comments          string  `json:"comments,omitempty" example:"Closed the quarter backlog"`
}

type PerformanceListResponse struct {
	Records []PerformanceRecord `json:"records"`
	Total   int                 `json:"total" example:"1"`
}

// Alerts

type Thresholds struct {
	AttendancePct    float64 `json:"attendance_pct_threshold" example:"0.8"`
	PerformanceScore float64 `json:"performance_score_threshold" example:"5"`
	InactivityDays   int     `json:"inactivity_days_threshold" example:"7"`
	WindowDays       int     `json:"window_days" example:"30"`
	ScoreSource      string  `json:"score_source" example:"quality"`
}

type Alert struct {
	EmployeeID  string  `json:"employee_id" example:"EMP001"`
	Kind        string  `json:"kind" example:"low-attendance"`
	Severity    string  `json:"severity" example:"danger"`
	TriggeredAt string  `json:"triggered_at" example:"2025-03-14T18:00:00Z"`
	Detail      string  `json:"detail" example:"attendance 55% below 80%"`
	Value       float64 `json:"value" example:"0.55"`
	Threshold   float64 `json:"threshold" example:"0.8"`
}

type AlertListResponse struct {
	Alerts      []Alert    `json:"alerts"`
	Total       int        `json:"total" example:"1"`
	Thresholds  Thresholds `json:"thresholds"`
	EvaluatedAt string     `json:"evaluated_at" example:"2025-03-14T18:00:00Z"`
}

var bearer = []map[string][]string{{"BearerAuth": {}}}

var (
	errUnauthorized = response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing token"}, "401", "Unauthorized")
	errForbidden    = response.New(ErrorResponse{Code: "FORBIDDEN", Message: "Admin role required"}, "403", "Forbidden")
	errRateLimit    = response.New(ErrorResponse{Code: "RATE_LIMIT_EXCEEDED", Message: "Too many requests"}, "429", "Too Many Requests")
	errInternal     = response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error")
	errNotFound     = response.New(ErrorResponse{Code: "EMPLOYEE_NOT_FOUND", Message: "Employee not found"}, "404", "Not Found")
	errValidation   = response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity")
	errBadRequest   = response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid request body"}, "400", "Bad Request")
	errNoDepartment = response.New(ErrorResponse{Code: "DEPARTMENT_NOT_FOUND", Message: "No employees in this department"}, "404", "Not Found")
)

func readErrors(extra ...response.Response) []response.Response {
	return append([]response.Response{errUnauthorized, errRateLimit, errInternal}, extra...)
}

func adminErrors(extra ...response.Response) []response.Response {
	return append([]response.Response{errUnauthorized, errForbidden, errRateLimit, errInternal}, extra...)
}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Rollcall API",
		Version:     "v1.0.0",
		Description: "Face-based attendance, employee performance tracking and threshold alerts",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// Employees

		endpoint.New(
			endpoint.GET,
			"/employees",
			endpoint.WithTags("Employees"),
			endpoint.WithSummary("List employees"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmployeeListResponse{}, "200", "Employees ordered by id"),
			}),
			endpoint.WithErrors(readErrors()),
			endpoint.WithSecurity(bearer),
		),

		endpoint.New(
			endpoint.POST,
			"/employees",
			endpoint.WithTags("Employees"),
			endpoint.WithSummary("Add an employee"),
			endpoint.WithDescription("Adds an employee to the directory. A duplicate employee_id is rejected. Requires the admin role."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(EmployeeRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmployeeResponse{}, "201", "Employee created"),
			}),
			endpoint.WithErrors(adminErrors(
				errBadRequest,
				errValidation,
				response.New(ErrorResponse{Code: "EMPLOYEE_ALREADY_EXISTS", Message: "Employee already exists"}, "409", "Conflict"),
			)),
			endpoint.WithSecurity(bearer),
		),

		endpoint.New(
			endpoint.GET,
			"/employees/{id}",
			endpoint.WithTags("Employees"),
			endpoint.WithSummary("Get an employee"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(parameter.StrParam("id", parameter.Path, parameter.WithDescription("Employee identifier"))),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmployeeResponse{}, "200", "Employee found"),
			}),
			endpoint.WithErrors(readErrors(errNotFound)),
			endpoint.WithSecurity(bearer),
		),

		endpoint.New(
			endpoint.PUT,
			"/employees/{id}",
			endpoint.WithTags("Employees"),
			endpoint.WithSummary("Update an employee"),
			endpoint.WithDescription("Replaces the directory fields of an employee. The path id wins over the body. Requires the admin role."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(parameter.StrParam("id", parameter.Path, parameter.WithDescription("Employee identifier"))),
			endpoint.WithBody(EmployeeRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmployeeResponse{}, "200", "Employee updated"),
			}),
			endpoint.WithErrors(adminErrors(errBadRequest, errValidation, errNotFound)),
			endpoint.WithSecurity(bearer),
		),

		endpoint.New(
			endpoint.DELETE,
			"/employees/{id}",
			endpoint.WithTags("Employees"),
			endpoint.WithSummary("Delete an employee"),
			endpoint.WithDescription("Removes the employee and their enrolled face. Attendance and performance history is kept. Requires the admin role."),
			endpoint.WithParams(parameter.StrParam("id", parameter.Path, parameter.WithDescription("Employee identifier"))),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Employee deleted"),
			}),
			endpoint.WithErrors(adminErrors(errNotFound)),
			endpoint.WithSecurity(bearer),
		),

		endpoint.New(
			endpoint.GET,
			"/employees/{id}/stats",
			endpoint.WithTags("Employees"),
			endpoint.WithSummary("Employee statistics"),
			endpoint.WithDescription("Attendance rate over Monday to Friday working days and performance averages for a date range. Defaults to the last 30 days."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Employee identifier")),
				parameter.StrParam("from", parameter.Query, parameter.WithDescription("Start (RFC3339 or YYYY-MM-DD)")),
				parameter.StrParam("to", parameter.Query, parameter.WithDescription("End (RFC3339 or YYYY-MM-DD, a date is inclusive)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StatsResponse{}, "200", "Statistics computed"),
			}),
			endpoint.WithErrors(readErrors(errNotFound, errValidation)),
			endpoint.WithSecurity(bearer),
		),

		// Faces

		endpoint.New(
			endpoint.PUT,
			"/employees/{id}/face",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Enroll a face"),
			endpoint.WithDescription("Registers the employee's face from an embedding (JSON) or an image (multipart field 'image'). Re-registration replaces the previous embedding. Requires the admin role."),
			endpoint.WithConsume([]mime.MIME{mime.JSON, mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(parameter.StrParam("id", parameter.Path, parameter.WithDescription("Employee identifier"))),
			endpoint.WithBody(EnrollEmbeddingRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EnrollResponse{}, "200", "Face enrolled"),
			}),
			endpoint.WithErrors(adminErrors(
				errNotFound,
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in image"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "MULTIPLE_FACES", Message: "More than one face detected"}, "422", "Unprocessable Entity"),
			)),
			endpoint.WithSecurity(bearer),
		),

		endpoint.New(
			endpoint.DELETE,
			"/employees/{id}/face",
			endpoint.WithTags("Faces"),
			endpoint.WithSummary("Remove a face"),
			endpoint.WithParams(parameter.StrParam("id", parameter.Path, parameter.WithDescription("Employee identifier"))),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "204", "Face removed"),
			}),
			endpoint.WithErrors(adminErrors(
				response.New(ErrorResponse{Code: "FACE_NOT_FOUND", Message: "Face not found"}, "404", "Not Found"),
			)),
			endpoint.WithSecurity(bearer),
		),

		// Attendance

		endpoint.New(
			endpoint.POST,
			"/attendance/manual",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Manual check-in"),
			endpoint.WithDescription("Records a check-in for the employee unless one was recorded within the cooldown. Returns 201 when recorded, 200 when suppressed."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(ManualCheckInRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CheckInResponse{}, "201", "Check-in recorded"),
				response.New(CheckInResponse{}, "200", "Check-in suppressed by cooldown"),
			}),
			endpoint.WithErrors(readErrors(errBadRequest, errNotFound)),
			endpoint.WithSecurity(bearer),
		),

		endpoint.New(
			endpoint.POST,
			"/attendance/match",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Check in from embeddings"),
			endpoint.WithDescription("Resolves every embedding against the face registry and records a check-in for each known employee."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(MatchRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CheckInResponse{}, "200", "Samples resolved"),
			}),
			endpoint.WithErrors(readErrors(
				errBadRequest,
				response.New(ErrorResponse{Code: "NO_ENROLLED_FACES", Message: "No faces are enrolled"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "INVALID_EMBEDDING", Message: "Embedding is empty or has the wrong dimension"}, "422", "Unprocessable Entity"),
			)),
			endpoint.WithSecurity(bearer),
		),

		endpoint.New(
			endpoint.POST,
			"/attendance/image",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Check in from an image"),
			endpoint.WithDescription("Detects every face in the uploaded image (multipart field 'image') and resolves each one."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CheckInResponse{}, "200", "Faces resolved"),
			}),
			endpoint.WithErrors(readErrors(
				response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Invalid image"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in image"}, "422", "Unprocessable Entity"),
			)),
			endpoint.WithSecurity(bearer),
		),

		endpoint.New(
			endpoint.GET,
			"/attendance",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("List check-ins"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("employee_id", parameter.Query, parameter.WithDescription("Only this employee")),
				parameter.StrParam("from", parameter.Query, parameter.WithDescription("Start (RFC3339 or YYYY-MM-DD)")),
				parameter.StrParam("to", parameter.Query, parameter.WithDescription("End (RFC3339 or YYYY-MM-DD, a date is inclusive)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AttendanceListResponse{}, "200", "Events ordered by timestamp"),
			}),
			endpoint.WithErrors(readErrors(errValidation)),
			endpoint.WithSecurity(bearer),
		),

		// Performance

		endpoint.New(
			endpoint.POST,
			"/performance",
			endpoint.WithTags("Performance"),
			endpoint.WithSummary("Record performance"),
			endpoint.WithDescription("Appends a performance record. A missing productivity_score is derived from tasks, quality and efficiency. One record per employee and period. Requires the admin role."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(PerformanceRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(PerformanceRecord{}, "201", "Record stored"),
			}),
			endpoint.WithErrors(adminErrors(
				errBadRequest,
				errValidation,
				errNotFound,
				response.New(ErrorResponse{Code: "PERFORMANCE_ALREADY_EXISTS", Message: "A record exists for this period"}, "409", "Conflict"),
			)),
			endpoint.WithSecurity(bearer),
		),

		endpoint.New(
			endpoint.GET,
			"/performance",
			endpoint.WithTags("Performance"),
			endpoint.WithSummary("List performance records"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("employee_id", parameter.Query, parameter.WithDescription("Only this employee")),
				parameter.StrParam("from", parameter.Query, parameter.WithDescription("First period (YYYY-MM-DD)")),
				parameter.StrParam("to", parameter.Query, parameter.WithDescription("Last period (YYYY-MM-DD)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(PerformanceListResponse{}, "200", "Records ordered by period"),
			}),
			endpoint.WithErrors(readErrors(errValidation)),
			endpoint.WithSecurity(bearer),
		),

		endpoint.New(
			endpoint.GET,
			"/departments/{name}/stats",
			endpoint.WithTags("Performance"),
			endpoint.WithSummary("Department statistics"),
			endpoint.WithDescription("Headcount, average attendance rate and average scores for a department (case-insensitive), with every member compared to the averages. Defaults to the last 30 days."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("name", parameter.Path, parameter.WithDescription("Department name")),
				parameter.StrParam("from", parameter.Query, parameter.WithDescription("Start (RFC3339 or YYYY-MM-DD)")),
				parameter.StrParam("to", parameter.Query, parameter.WithDescription("End (RFC3339 or YYYY-MM-DD, a date is inclusive)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(DepartmentStatsResponse{}, "200", "Statistics computed"),
			}),
			endpoint.WithErrors(readErrors(errNoDepartment, errValidation)),
			endpoint.WithSecurity(bearer),
		),

		// Alerts

		endpoint.New(
			endpoint.GET,
			"/alerts",
			endpoint.WithTags("Alerts"),
			endpoint.WithSummary("Evaluate alerts"),
			endpoint.WithDescription("Evaluates every employee against the current thresholds. Danger alerts come first."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("employee_id", parameter.Query, parameter.WithDescription("Only this employee")),
				parameter.StrParam("kind", parameter.Query, parameter.WithDescription("low-attendance, low-performance or inactivity")),
				parameter.StrParam("severity", parameter.Query, parameter.WithDescription("warning or danger")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AlertListResponse{}, "200", "Current alerts"),
			}),
			endpoint.WithErrors(readErrors(errValidation)),
			endpoint.WithSecurity(bearer),
		),

		endpoint.New(
			endpoint.GET,
			"/alerts/export",
			endpoint.WithTags("Alerts"),
			endpoint.WithSummary("Export alerts as CSV"),
			endpoint.WithProduce([]mime.MIME{mime.MIME("text/csv")}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "200", "CSV attachment"),
			}),
			endpoint.WithErrors(readErrors()),
			endpoint.WithSecurity(bearer),
		),

		endpoint.New(
			endpoint.GET,
			"/alerts/config",
			endpoint.WithTags("Alerts"),
			endpoint.WithSummary("Get alert thresholds"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(Thresholds{}, "200", "Current thresholds"),
			}),
			endpoint.WithErrors(readErrors()),
			endpoint.WithSecurity(bearer),
		),

		endpoint.New(
			endpoint.PUT,
			"/alerts/config",
			endpoint.WithTags("Alerts"),
			endpoint.WithSummary("Update alert thresholds"),
			endpoint.WithDescription("Replaces the thresholds. Omitted fields keep their current value. Connected dashboards receive a thresholds_updated event. Requires the admin role."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(Thresholds{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(Thresholds{}, "200", "Thresholds updated"),
			}),
			endpoint.WithErrors(adminErrors(
				errBadRequest,
				response.New(ErrorResponse{Code: "INVALID_THRESHOLD", Message: "attendance_pct_threshold must be in (0, 1]"}, "422", "Unprocessable Entity"),
			)),
			endpoint.WithSecurity(bearer),
		),

		// Live events

		endpoint.New(
			endpoint.GET,
			"/ws",
			endpoint.WithTags("Live"),
			endpoint.WithSummary("Live event stream"),
			endpoint.WithDescription("WebSocket stream of check-ins, unknown faces, enrollments, alerts and threshold changes. Browsers may pass the token as access_token."),
			endpoint.WithParams(
				parameter.StrParam("access_token", parameter.Query, parameter.WithDescription("JWT when the Authorization header cannot be set")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "101", "Switching protocols"),
			}),
			endpoint.WithErrors([]response.Response{
				errUnauthorized,
				response.New(ErrorResponse{Code: "UPGRADE_REQUIRED", Message: "Upgrade Required"}, "426", "Upgrade Required"),
			}),
			endpoint.WithSecurity(bearer),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
