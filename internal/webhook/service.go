// Package webhook delivers signed alert notifications over HTTP.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	SignatureHeader = "X-Rollcall-Signature"
	EventHeader     = "X-Rollcall-Event"

	defaultMaxAttempts = 5
	maxPending         = 1000
)

// ErrQueueFull is returned when a failed delivery cannot be queued for retry.
var ErrQueueFull = errors.New("webhook retry queue is full")

type Service struct {
	endpoint    Endpoint
	client      *http.Client
	logger      *slog.Logger
	maxAttempts int

	mu      sync.Mutex
	pending []*Job
}

func NewService(endpoint Endpoint, logger *slog.Logger) *Service {
	return &Service{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:      logger,
		maxAttempts: defaultMaxAttempts,
	}
}

// Enabled reports whether an endpoint is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.endpoint.URL != ""
}

// Send posts the event once. A failed delivery is queued for the retry worker
// and the delivery error is still returned.
func (s *Service) Send(ctx context.Context, event EventPayload) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := s.deliver(ctx, event.Type, payload); err != nil {
		job := &Job{
			ID:          event.ID,
			EventType:   event.Type,
			Payload:     payload,
			Attempts:    1,
			MaxAttempts: s.maxAttempts,
			NextRetryAt: time.Now().Add(time.Second),
			LastError:   err.Error(),
		}
		if qerr := s.enqueue(job); qerr != nil {
			return errors.Join(err, qerr)
		}
		return err
	}
	return nil
}

func (s *Service) deliver(ctx context.Context, eventType string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, SignPayload(s.endpoint.Secret, time.Now(), payload))
	req.Header.Set(EventHeader, eventType)
	req.Header.Set("User-Agent", "Rollcall-Webhook/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func (s *Service) enqueue(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) >= maxPending {
		return ErrQueueFull
	}
	s.pending = append(s.pending, job)
	return nil
}

// due removes and returns the jobs whose retry time has passed.
func (s *Service) due(now time.Time) []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ready []*Job
	kept := s.pending[:0]
	for _, job := range s.pending {
		if !job.NextRetryAt.After(now) {
			ready = append(ready, job)
		} else {
			kept = append(kept, job)
		}
	}
	s.pending = kept
	return ready
}

// Pending returns the number of deliveries waiting for a retry.
func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.pending)
}
