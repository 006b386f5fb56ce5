package deepface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config selects the DeepFace server, model and retry policy.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	Model      string
	Detector   string
	RetryCount int
	// BackoffBase is the first retry delay; each retry doubles it.
	BackoffBase time.Duration
	// Normalize scales embeddings to unit length so a Euclidean threshold
	// behaves the same across models.
	Normalize bool
}

func DefaultConfig() Config {
	return Config{
		BaseURL:     "http://localhost:5005",
		Timeout:     30 * time.Second,
		Model:       "Facenet512",
		Detector:    "retinaface",
		RetryCount:  3,
		BackoffBase: time.Second,
		Normalize:   true,
	}
}

// Client talks JSON to a DeepFace API server.
type Client struct {
	http *http.Client
	cfg  Config
}

func NewClient(cfg Config) *Client {
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	return &Client{http: &http.Client{Timeout: cfg.Timeout}, cfg: cfg}
}

// represent calls POST /represent and returns one result per detected face.
func (c *Client) represent(ctx context.Context, imageBase64 string) (*representation, error) {
	call := representCall{
		Img:              imageBase64,
		Model:            c.cfg.Model,
		Detector:         c.cfg.Detector,
		EnforceDetection: false,
		Align:            true,
	}

	var out representation
	if err := c.post(ctx, "/represent", call, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

const maxBackoff = 30 * time.Second

// calculateBackoff returns the delay before retry number attempt, doubling
// from base and capped at maxBackoff.
func calculateBackoff(base time.Duration, attempt int) time.Duration {
	d := base
	for n := 1; n < attempt; n++ {
		if d >= maxBackoff {
			break
		}
		d *= 2
	}
	return min(d, maxBackoff)
}

// statusError is a non-2xx answer from DeepFace.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("deepface returned status %d: %s", e.status, e.body)
}

// permanent reports errors that another attempt cannot fix.
func permanent(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.status < http.StatusInternalServerError
	}
	return errors.Is(err, ErrMalformedResponse)
}

// isNoFaceError reports DeepFace's 400 answer for images without a face,
// returned by servers that ignore enforce_detection.
func isNoFaceError(err error) bool {
	var se *statusError
	if !errors.As(err, &se) || se.status != http.StatusBadRequest {
		return false
	}
	return strings.Contains(strings.ToLower(se.body), "face could not be detected")
}

// post sends body to path, retrying transport failures and 5xx answers.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var last error
	for attempt := 0; attempt <= c.cfg.RetryCount; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(calculateBackoff(c.cfg.BackoffBase, attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		last = c.send(ctx, path, payload, out)
		switch {
		case last == nil:
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		case permanent(last):
			return last
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, last)
}

func (c *Client) send(ctx context.Context, path string, payload []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &statusError{status: resp.StatusCode, body: string(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
