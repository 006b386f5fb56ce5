// Package provider defines the face detectors that turn a captured image into
// per-face embeddings.
package provider

import (
	"context"
	"time"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
)

// Detector detects faces in an image and computes one embedding per face.
type Detector interface {
	// DetectFaces returns every face found in the image. An image with no
	// faces yields an empty slice and no error.
	DetectFaces(ctx context.Context, image []byte) ([]DetectedFace, error)

	// Model identifies the embedding space. Embeddings produced by different
	// models must never be compared.
	Model() string
}

// DetectedFace represents a detected face in the image
type DetectedFace struct {
	BoundingBox  BoundingBox `json:"bounding_box"`
	Confidence   float64     `json:"confidence"`
	QualityScore float64     `json:"quality_score"`
	Embedding    []float64   `json:"-"`
}

// BoundingBox represents the face area in the image
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SingleFace returns the only face of a detection, used at enrollment where
// exactly one face is required.
func SingleFace(faces []DetectedFace) (DetectedFace, error) {
	switch len(faces) {
	case 0:
		return DetectedFace{}, domain.ErrNoFaceDetected
	case 1:
		return faces[0], nil
	default:
		return DetectedFace{}, domain.ErrMultipleFaces
	}
}

// Samples converts detected faces into detection samples stamped with the
// capture time. Faces without an embedding are dropped.
func Samples(faces []DetectedFace, capturedAt time.Time) []domain.DetectionSample {
	samples := make([]domain.DetectionSample, 0, len(faces))
	for _, f := range faces {
		if len(f.Embedding) == 0 {
			continue
		}
		samples = append(samples, domain.DetectionSample{
			Embedding:  f.Embedding,
			CapturedAt: capturedAt,
		})
	}
	return samples
}
