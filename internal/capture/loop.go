package capture

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/attendance"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/metrics"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/provider"
)

// Recorder is the attendance side of the loop.
type Recorder interface {
	CheckInSamples(ctx context.Context, samples []domain.DetectionSample) ([]attendance.Outcome, error)
}

// Summary counts what a capture run did.
type Summary struct {
	Frames     int `json:"frames"`
	NoFace     int `json:"no_face"`
	Recorded   int `json:"recorded"`
	Suppressed int `json:"suppressed"`
	Unknown    int `json:"unknown"`
	Invalid    int `json:"invalid"`
	Errors     int `json:"errors"`
}

type Loop struct {
	detector provider.Detector
	recorder Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewLoop(detector provider.Detector, recorder Recorder, logger *slog.Logger) *Loop {
	return &Loop{detector: detector, recorder: recorder, logger: logger}
}

func (l *Loop) WithMetrics(m *metrics.Metrics) *Loop {
	l.metrics = m
	return l
}

// Samples detects faces in each frame and yields the frame's samples. Frames
// without faces yield ErrNoFaceDetected.
func (l *Loop) Samples(ctx context.Context, frames iter.Seq2[Frame, error]) iter.Seq2[[]domain.DetectionSample, error] {
	return func(yield func([]domain.DetectionSample, error) bool) {
		for frame, err := range frames {
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}

			start := time.Now()
			faces, err := l.detector.DetectFaces(ctx, frame.Data)
			l.metrics.RecordDetection(l.detector.Model(), time.Since(start), err)
			if err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}

			samples := provider.Samples(faces, frame.CapturedAt)
			if len(samples) == 0 {
				if !yield(nil, domain.ErrNoFaceDetected) {
					return
				}
				continue
			}
			if !yield(samples, nil) {
				return
			}
		}
	}
}

// Run checks in every frame until the frames end or ctx is cancelled. Per
// frame failures are logged and counted; only cancellation stops the loop
// early, and it is not reported as an error.
func (l *Loop) Run(ctx context.Context, frames iter.Seq2[Frame, error]) Summary {
	var sum Summary

	for samples, err := range l.Samples(ctx, frames) {
		sum.Frames++
		if err != nil {
			l.countError(&sum, err)
			continue
		}

		outcomes, err := l.recorder.CheckInSamples(ctx, samples)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			l.countError(&sum, err)
			continue
		}
		for _, out := range outcomes {
			switch out.Status {
			case attendance.StatusRecorded:
				sum.Recorded++
			case attendance.StatusSuppressed:
				sum.Suppressed++
			case attendance.StatusUnknown:
				sum.Unknown++
			case attendance.StatusInvalid:
				sum.Invalid++
			}
		}
	}

	l.logger.Info("capture finished",
		"frames", sum.Frames,
		"recorded", sum.Recorded,
		"suppressed", sum.Suppressed,
		"unknown", sum.Unknown,
		"invalid", sum.Invalid,
		"no_face", sum.NoFace,
		"errors", sum.Errors,
	)
	return sum
}

func (l *Loop) countError(sum *Summary, err error) {
	switch {
	case errors.Is(err, domain.ErrNoFaceDetected):
		sum.NoFace++
		l.metrics.RecordCheckIn(string(domain.MethodFaceMatch), metrics.OutcomeNoFace)
	case errors.Is(err, domain.ErrNoEnrolledFaces):
		sum.Errors++
		l.logger.Warn("no enrolled faces, frame skipped")
	default:
		sum.Errors++
		l.logger.Warn("frame skipped", "error", err)
	}
}
