// Package mock provides a deterministic detector for development and tests.
package mock

import (
	"bytes"
	"context"
	"crypto/sha256"
	"math"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/provider"
)

const (
	embeddingDimension = 512
	minImageSize       = 1000
)

var (
	// NoFaceMarker at the start of an image yields no faces.
	NoFaceMarker = []byte("NOFACE")
	// GroupMarker at the start of an image yields two faces: one for the whole
	// image and one for the bytes after the marker.
	GroupMarker = []byte("GROUP")
)

// Provider hashes image bytes into embeddings, so the same bytes always
// resolve to the same employee.
type Provider struct {
	dimension int
}

func New() *Provider {
	return &Provider{dimension: embeddingDimension}
}

func (p *Provider) Model() string {
	return "mock/sha256"
}

func (p *Provider) DetectFaces(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(image) < minImageSize {
		return nil, domain.ErrInvalidImage
	}

	switch {
	case bytes.HasPrefix(image, NoFaceMarker):
		return []provider.DetectedFace{}, nil
	case bytes.HasPrefix(image, GroupMarker):
		return []provider.DetectedFace{
			p.face(image, provider.BoundingBox{X: 0.05, Y: 0.2, Width: 0.4, Height: 0.6}),
			p.face(image[len(GroupMarker):], provider.BoundingBox{X: 0.55, Y: 0.2, Width: 0.4, Height: 0.6}),
		}, nil
	default:
		return []provider.DetectedFace{
			p.face(image, provider.BoundingBox{X: 0.1, Y: 0.1, Width: 0.8, Height: 0.8}),
		}, nil
	}
}

func (p *Provider) face(data []byte, box provider.BoundingBox) provider.DetectedFace {
	return provider.DetectedFace{
		BoundingBox:  box,
		Confidence:   0.99,
		QualityScore: 0.95,
		Embedding:    GenerateEmbedding(data, p.dimension),
	}
}

// GenerateEmbedding spreads the SHA-256 of data over dimension values in
// [-1, 1] and scales the result to unit length.
func GenerateEmbedding(data []byte, dimension int) []float64 {
	sum := sha256.Sum256(data)
	out := make([]float64, dimension)

	var sq float64
	for i := range out {
		v := float64(sum[i%len(sum)])/127.5 - 1
		out[i] = v
		sq += v * v
	}
	if sq == 0 {
		return out
	}

	scale := 1 / math.Sqrt(sq)
	for i := range out {
		out[i] *= scale
	}
	return out
}

var _ provider.Detector = (*Provider)(nil)
