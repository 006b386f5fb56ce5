package deepface

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
	"github.com/saturnino-fabrica-de-software/rollcall/internal/provider"
)

func TestProviderImplementsInterface(t *testing.T) {
	var _ provider.Detector = (*Provider)(nil)
}

func TestProvider_Model(t *testing.T) {
	p := NewProvider(DefaultConfig())
	assert.Equal(t, "deepface/Facenet512/retinaface", p.Model())
}

func TestProvider_DetectFaces(t *testing.T) {
	zero := 0.0

	tests := []struct {
		name         string
		response     any
		status       int
		wantCount    int
		wantErr      bool
		wantFirstLen int
	}{
		{
			name: "single face",
			response: representation{Results: []faceRepresentation{
				{Embedding: []float64{3, 4}, Region: region{X: 10, Y: 20, W: 200, H: 200}},
			}},
			status:       http.StatusOK,
			wantCount:    1,
			wantFirstLen: 2,
		},
		{
			name: "two faces",
			response: representation{Results: []faceRepresentation{
				{Embedding: []float64{1, 0}, Region: region{W: 100, H: 100}},
				{Embedding: []float64{0, 1}, Region: region{X: 200, W: 100, H: 100}},
			}},
			status:       http.StatusOK,
			wantCount:    2,
			wantFirstLen: 2,
		},
		{
			name: "placeholder region with zero confidence",
			response: representation{Results: []faceRepresentation{
				{Embedding: []float64{1, 0}, Region: region{W: 640, H: 480}, FaceConfidence: &zero},
			}},
			status:    http.StatusOK,
			wantCount: 0,
		},
		{
			name:      "legacy no-face answer",
			response:  map[string]string{"error": "Face could not be detected in numpy array."},
			status:    http.StatusBadRequest,
			wantCount: 0,
		},
		{
			name:     "server error",
			response: map[string]string{"error": "boom"},
			status:   http.StatusInternalServerError,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(tt.response)
			}))
			defer server.Close()

			p := NewProvider(testConfig(server.URL))
			faces, err := p.DetectFaces(context.Background(), []byte("test-image"))

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Len(t, faces, tt.wantCount)
			if tt.wantCount > 0 {
				assert.Len(t, faces[0].Embedding, tt.wantFirstLen)
				assert.Greater(t, faces[0].Confidence, 0.0)
				assert.Greater(t, faces[0].QualityScore, 0.0)
			}
		})
	}
}

func TestProvider_DetectFaces_Normalizes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(representation{Results: []faceRepresentation{
			{Embedding: []float64{3, 4}, Region: region{W: 100, H: 100}},
		}})
	}))
	defer server.Close()

	faces, err := NewProvider(testConfig(server.URL)).DetectFaces(context.Background(), []byte("img"))

	require.NoError(t, err)
	require.Len(t, faces, 1)
	assert.InDelta(t, 0.6, faces[0].Embedding[0], 1e-9)
	assert.InDelta(t, 0.8, faces[0].Embedding[1], 1e-9)
}

func TestProvider_DetectFaces_EmptyImage(t *testing.T) {
	p := NewProvider(DefaultConfig())
	_, err := p.DetectFaces(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidImage)
}

func TestNormalizeEmbedding(t *testing.T) {
	got := NormalizeEmbedding([]float64{1, 2, 2})
	var norm float64
	for _, v := range got {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-12)

	assert.Equal(t, []float64{0, 0}, NormalizeEmbedding([]float64{0, 0}))
	assert.Empty(t, NormalizeEmbedding(nil))
}

func TestFaceScores(t *testing.T) {
	confidence, quality := faceScores(100)
	assert.Equal(t, 0.5, confidence)
	assert.Equal(t, 0.4, quality)

	confidence, _ = faceScores(largeFace)
	assert.InDelta(t, 0.99, confidence, 1e-9)
	_, quality = faceScores(largeFace * 2)
	assert.InDelta(t, 0.95, quality, 1e-9)
}

func TestProvider_DetectFaces_PrefersReportedConfidence(t *testing.T) {
	reported := 0.93
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(representation{Results: []faceRepresentation{
			{Embedding: []float64{1, 0}, Region: region{W: 60, H: 60}, FaceConfidence: &reported},
		}})
	}))
	defer server.Close()

	faces, err := NewProvider(testConfig(server.URL)).DetectFaces(context.Background(), []byte("img"))

	require.NoError(t, err)
	require.Len(t, faces, 1)
	assert.Equal(t, 0.93, faces[0].Confidence)
	assert.Equal(t, float64(60), faces[0].BoundingBox.Width)
}
