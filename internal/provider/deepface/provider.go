package deepface

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/provider"
)

// Faces below smallFace pixels get fixed low scores; scores grow with area
// up to largeFace.
const (
	smallFace = 50 * 50
	largeFace = 500 * 500
)

// Provider implements provider.Detector using DeepFace API
type Provider struct {
	client *Client
	config Config
}

// NewProvider creates a new DeepFace provider
func NewProvider(config Config) *Provider {
	return &Provider{
		client: NewClient(config),
		config: config,
	}
}

// Model returns the embedding space identifier, e.g. "deepface/Facenet512/retinaface".
func (p *Provider) Model() string {
	return fmt.Sprintf("deepface/%s/%s", p.config.Model, p.config.Detector)
}

// DetectFaces detects faces in the image and returns their embeddings.
func (p *Provider) DetectFaces(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	if len(image) == 0 {
		return nil, domain.ErrInvalidImage
	}
	imageBase64 := base64.StdEncoding.EncodeToString(image)

	resp, err := p.client.represent(ctx, imageBase64)
	if err != nil {
		if isNoFaceError(err) {
			return []provider.DetectedFace{}, nil
		}
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	faces := make([]provider.DetectedFace, 0, len(resp.Results))
	for _, result := range resp.Results {
		if len(result.Embedding) == 0 {
			return nil, fmt.Errorf("detect faces: %w", ErrEmptyEmbedding)
		}
		if result.undetected() {
			continue
		}

		embedding := result.Embedding
		if p.config.Normalize {
			embedding = NormalizeEmbedding(embedding)
		}

		confidence, quality := faceScores(result.Region.area())
		if result.FaceConfidence != nil {
			confidence = *result.FaceConfidence
		}

		faces = append(faces, provider.DetectedFace{
			BoundingBox:  result.Region.box(),
			Confidence:   confidence,
			QualityScore: quality,
			Embedding:    embedding,
		})
	}

	return faces, nil
}

// faceScores estimates detection confidence and crop quality from the face
// area, for DeepFace versions that report no face_confidence.
func faceScores(area float64) (confidence, quality float64) {
	if area < smallFace {
		return 0.5, 0.4
	}
	scale := math.Min(1, (area-smallFace)/(largeFace-smallFace))
	return 0.7 + 0.29*scale, 0.6 + 0.35*scale
}

// NormalizeEmbedding scales v to unit length. Empty and zero vectors are
// returned as is.
func NormalizeEmbedding(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return v
	}

	norm := math.Sqrt(sum)
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

var _ provider.Detector = (*Provider)(nil)
