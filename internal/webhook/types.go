package webhook

import (
	"time"

	"github.com/google/uuid"
)

// Endpoint is the single alert receiver configured for the deployment.
type Endpoint struct {
	URL    string `json:"url"`
	Secret string `json:"-"`
}

// Job is a delivery waiting for a retry.
type Job struct {
	ID          uuid.UUID `json:"id"`
	EventType   string    `json:"event_type"`
	Payload     []byte    `json:"payload"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
	NextRetryAt time.Time `json:"next_retry_at"`
	LastError   string    `json:"last_error,omitempty"`
}

type EventPayload struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}
