// Package attendance records check-ins, manual or face-matched, and
// deduplicates them within a cooldown window.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/matcher"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/metrics"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/provider"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/repository"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/ws"
)

// Status is the result of one check-in attempt.
type Status string

const (
	StatusRecorded   Status = "recorded"
	StatusSuppressed Status = "suppressed"
	StatusUnknown    Status = "unknown"
	// StatusInvalid marks a sample that could not be compared with the
	// registry; the rest of the frame is still processed.
	StatusInvalid Status = "invalid"
)

// Outcome describes what happened to one check-in attempt.
type Outcome struct {
	Status     Status                  `json:"status"`
	EmployeeID string                  `json:"employee_id,omitempty"`
	Match      *matcher.Match          `json:"match,omitempty"`
	Event      *domain.AttendanceEvent `json:"event,omitempty"`
	// LastRecordedAt is the check-in that caused a suppression.
	LastRecordedAt *time.Time `json:"last_recorded_at,omitempty"`
	// Reason explains an invalid sample.
	Reason string `json:"reason,omitempty"`

	err error
}

type EmployeeReader interface {
	GetByID(ctx context.Context, employeeID string) (*domain.Employee, error)
}

type FaceLister interface {
	List(ctx context.Context) ([]domain.EmployeeFaceRecord, error)
}

type Service struct {
	employees EmployeeReader
	faces     FaceLister
	events    repository.AttendanceRepositoryInterface
	resolver  *matcher.Resolver
	cooldown  *Cooldown
	detector  provider.Detector
	hub       ws.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(
	employees EmployeeReader,
	faces FaceLister,
	events repository.AttendanceRepositoryInterface,
	resolver *matcher.Resolver,
	cooldown *Cooldown,
	logger *slog.Logger,
) *Service {
	return &Service{
		employees: employees,
		faces:     faces,
		events:    events,
		resolver:  resolver,
		cooldown:  cooldown,
		logger:    logger,
		now:       time.Now,
	}
}

// WithDetector enables image check-ins.
func (s *Service) WithDetector(d provider.Detector) *Service {
	s.detector = d
	return s
}

// WithPublisher streams recorded and unknown check-ins to live clients.
func (s *Service) WithPublisher(p ws.Publisher) *Service {
	s.hub = p
	return s
}

func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

// CheckInManual records a manual check-in. A zero `at` means now.
func (s *Service) CheckInManual(ctx context.Context, employeeID string, at time.Time) (Outcome, error) {
	if err := domain.ValidateEmployeeID(employeeID); err != nil {
		return Outcome{}, domain.ErrValidationFailed.WithError(err)
	}
	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return Outcome{}, err
	}
	if at.IsZero() {
		at = s.now()
	}

	out, err := s.record(ctx, employeeID, domain.MethodManual, nil, at.UTC())
	if err != nil {
		s.metrics.RecordCheckIn(string(domain.MethodManual), metrics.OutcomeError)
		return Outcome{}, err
	}
	s.metrics.RecordCheckIn(string(domain.MethodManual), string(out.Status))
	return out, nil
}

// CheckInSample resolves one detection sample and records a face-match
// check-in when it identifies an employee.
func (s *Service) CheckInSample(ctx context.Context, sample domain.DetectionSample) (Outcome, error) {
	outcomes, err := s.CheckInSamples(ctx, []domain.DetectionSample{sample})
	if err != nil {
		return Outcome{}, err
	}
	if outcomes[0].err != nil {
		return Outcome{}, outcomes[0].err
	}
	return outcomes[0], nil
}

// CheckInSamples resolves every sample of a frame against one registry
// snapshot. A frame without samples yields ErrNoFaceDetected and an empty
// registry ErrNoEnrolledFaces. A sample that cannot be compared is reported
// as StatusInvalid and the remaining samples are still checked in.
func (s *Service) CheckInSamples(ctx context.Context, samples []domain.DetectionSample) ([]Outcome, error) {
	method := string(domain.MethodFaceMatch)
	if len(samples) == 0 {
		s.metrics.RecordCheckIn(method, metrics.OutcomeNoFace)
		return nil, domain.ErrNoFaceDetected
	}

	registry, err := s.faces.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load face registry: %w", err)
	}
	if len(registry) == 0 {
		s.metrics.RecordCheckIn(method, metrics.OutcomeError)
		return nil, domain.ErrNoEnrolledFaces
	}

	outcomes := make([]Outcome, 0, len(samples))
	for i, sample := range samples {
		out, err := s.checkInSample(ctx, sample, registry)
		if errors.Is(err, domain.ErrInvalidEmbedding) {
			s.logger.Warn("sample skipped", "index", i, "dimension", len(sample.Embedding), "error", err)
			s.metrics.RecordCheckIn(method, metrics.OutcomeInvalid)
			outcomes = append(outcomes, Outcome{Status: StatusInvalid, Reason: err.Error(), err: err})
			continue
		}
		if err != nil {
			s.metrics.RecordCheckIn(method, metrics.OutcomeError)
			return outcomes, err
		}
		s.metrics.RecordCheckIn(method, string(out.Status))
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

// CheckInImage detects every face in an image and checks each one in.
func (s *Service) CheckInImage(ctx context.Context, image []byte) ([]Outcome, error) {
	if s.detector == nil {
		return nil, domain.ErrInternal.WithError(errors.New("no face detector configured"))
	}

	capturedAt := s.now().UTC()
	start := time.Now()
	faces, err := s.detector.DetectFaces(ctx, image)
	s.metrics.RecordDetection(s.detector.Model(), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	return s.CheckInSamples(ctx, provider.Samples(faces, capturedAt))
}

// List returns attendance events matching the filter, oldest first.
func (s *Service) List(ctx context.Context, filter repository.AttendanceFilter) ([]domain.AttendanceEvent, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		return nil, domain.ErrValidationFailed.WithError(errors.New("from must be before to"))
	}
	return s.events.List(ctx, filter)
}

func (s *Service) checkInSample(ctx context.Context, sample domain.DetectionSample, registry []domain.EmployeeFaceRecord) (Outcome, error) {
	match, err := s.resolver.Resolve(sample, registry)
	if err != nil {
		return Outcome{}, err
	}
	s.metrics.RecordMatch(match.Distance, match.Confidence, match.Known, match.Ambiguous, len(registry))

	if !match.Known {
		s.logger.Debug("unknown face", "distance", match.Distance)
		if s.hub != nil {
			s.hub.Publish(ws.EventUnknownFace, match)
		}
		return Outcome{Status: StatusUnknown, Match: &match}, nil
	}

	at := sample.CapturedAt
	if at.IsZero() {
		at = s.now()
	}
	confidence := match.Confidence
	out, err := s.record(ctx, match.EmployeeID, domain.MethodFaceMatch, &confidence, at.UTC())
	if err != nil {
		return Outcome{}, err
	}
	out.Match = &match
	return out, nil
}

// record appends an event unless the employee is cooling down. The check and
// the append run under the cooldown lock.
func (s *Service) record(ctx context.Context, employeeID string, method domain.AttendanceMethod, confidence *float64, at time.Time) (Outcome, error) {
	s.cooldown.Lock()
	defer s.cooldown.Unlock()

	prev, err := s.previous(ctx, employeeID, at)
	if err != nil {
		return Outcome{}, err
	}
	if s.cooldown.Suppresses(prev, at) {
		s.logger.Debug("check-in suppressed by cooldown",
			"employee_id", employeeID,
			"method", method,
			"last_recorded_at", prev,
		)
		return Outcome{Status: StatusSuppressed, EmployeeID: employeeID, LastRecordedAt: &prev}, nil
	}

	event := &domain.AttendanceEvent{
		EmployeeID: employeeID,
		Timestamp:  at,
		Method:     method,
		Confidence: confidence,
	}
	if err := event.Validate(); err != nil {
		return Outcome{}, domain.ErrValidationFailed.WithError(err)
	}
	if err := s.events.Append(ctx, event); err != nil {
		return Outcome{}, fmt.Errorf("append attendance for %s: %w", employeeID, err)
	}
	s.cooldown.Mark(employeeID, at)

	s.logger.Info("attendance recorded",
		"employee_id", employeeID,
		"method", method,
		"event_id", event.ID,
	)
	if s.hub != nil {
		s.hub.Publish(ws.EventAttendanceRecorded, event)
	}
	return Outcome{Status: StatusRecorded, EmployeeID: employeeID, Event: event}, nil
}

// previous returns the recorded check-in closest to `at` within the window,
// reading the attendance log when the tracker has nothing cached.
func (s *Service) previous(ctx context.Context, employeeID string, at time.Time) (time.Time, error) {
	if last, ok := s.cooldown.Last(employeeID); ok && s.cooldown.Suppresses(last, at) {
		return last, nil
	}

	window := s.cooldown.Window()
	if window <= 0 {
		return time.Time{}, nil
	}
	events, err := s.events.List(ctx, repository.AttendanceFilter{
		EmployeeID: employeeID,
		From:       at.Add(-window),
		To:         at.Add(window),
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("load recent attendance for %s: %w", employeeID, err)
	}

	var closest time.Time
	for _, e := range events {
		if closest.IsZero() || absDuration(e.Timestamp.Sub(at)) < absDuration(closest.Sub(at)) {
			closest = e.Timestamp
		}
	}
	if !closest.IsZero() {
		s.cooldown.Mark(employeeID, closest)
	}
	return closest, nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
