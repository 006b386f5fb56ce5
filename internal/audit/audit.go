// Package audit keeps the trail of who changed biometric data, the
// directory or the alert configuration.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Action string

const (
	ActionEmployeeCreated   Action = "employee.created"
	ActionEmployeeUpdated   Action = "employee.updated"
	ActionEmployeeDeleted   Action = "employee.deleted"
	ActionFaceEnrolled      Action = "face.enrolled"
	ActionFaceRemoved       Action = "face.removed"
	ActionManualCheckIn     Action = "attendance.manual"
	ActionThresholdsUpdated Action = "alert.thresholds_updated"
)

// Event is one audited action. Error holds the domain error code when the
// action failed.
type Event struct {
	ID         uuid.UUID         `json:"id"`
	At         time.Time         `json:"at"`
	Action     Action            `json:"action"`
	Actor      string            `json:"actor"`
	Role       string            `json:"role,omitempty"`
	EmployeeID string            `json:"employee_id,omitempty"`
	Success    bool              `json:"success"`
	Error      string            `json:"error,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	IPAddress  string            `json:"ip_address,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
}

func (e *Event) stamp() {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
}

type Logger interface {
	Log(ctx context.Context, event Event) error
}

// SlogLogger writes events as log records with an "event" group. Failed
// actions are logged at warn level.
type SlogLogger struct {
	logger *slog.Logger
}

func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{logger: logger.With("component", "audit")}
}

func (l *SlogLogger) Log(ctx context.Context, event Event) error {
	event.stamp()

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}

	attrs := []any{
		slog.String("id", event.ID.String()),
		slog.String("action", string(event.Action)),
		slog.String("actor", event.Actor),
		slog.Bool("success", event.Success),
	}
	if event.Role != "" {
		attrs = append(attrs, slog.String("role", event.Role))
	}
	if event.EmployeeID != "" {
		attrs = append(attrs, slog.String("employee_id", event.EmployeeID))
	}
	if event.Error != "" {
		attrs = append(attrs, slog.String("error", event.Error))
	}
	if event.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", event.RequestID))
	}
	if len(event.Metadata) > 0 {
		attrs = append(attrs, slog.Any("metadata", event.Metadata))
	}

	l.logger.Log(ctx, level, "audit", slog.Group("event", attrs...))
	return nil
}

// FileLogger appends events to a JSON lines file.
type FileLogger struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// OpenFile opens path for appending, creating it and its directory.
func OpenFile(path string) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open audit file: %w", err)
	}
	return &FileLogger{file: f, enc: json.NewEncoder(f)}, nil
}

func (l *FileLogger) Log(_ context.Context, event Event) error {
	event.stamp()

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enc.Encode(event); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// Multi sends every event to each logger. All loggers see the same ID and
// timestamp.
func Multi(loggers ...Logger) Logger {
	return multi(loggers)
}

type multi []Logger

func (m multi) Log(ctx context.Context, event Event) error {
	event.stamp()
	var errs []error
	for _, l := range m {
		if err := l.Log(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every event.
var Discard Logger = discard{}

type discard struct{}

func (discard) Log(context.Context, Event) error { return nil }
