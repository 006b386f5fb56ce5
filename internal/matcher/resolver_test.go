package matcher

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sample(v ...float64) domain.DetectionSample {
	return domain.DetectionSample{Embedding: v, CapturedAt: time.Now()}
}

func TestResolver_Resolve(t *testing.T) {
	t1 := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	tests := []struct {
		name      string
		cfg       Config
		sample    domain.DetectionSample
		registry  []domain.EmployeeFaceRecord
		wantErr   error
		wantKnown bool
		wantID    string
		wantConf  float64
		wantAmbig bool
		confDelta float64
	}{
		{
			name:    "empty registry",
			cfg:     DefaultConfig(),
			sample:  sample(0.1, 0.2),
			wantErr: domain.ErrNoEnrolledFaces,
		},
		{
			name:   "exact match has confidence one",
			cfg:    DefaultConfig(),
			sample: sample(0.1, 0.2, 0.3),
			registry: []domain.EmployeeFaceRecord{
				{EmployeeID: "EMP001", Embedding: []float64{0.1, 0.2, 0.3}, RegisteredAt: t1},
				{EmployeeID: "EMP002", Embedding: []float64{0.9, 0.9, 0.9}, RegisteredAt: t1},
			},
			wantKnown: true,
			wantID:    "EMP001",
			wantConf:  1.0,
		},
		{
			name:   "closest under threshold",
			cfg:    DefaultConfig(),
			sample: sample(0, 0),
			registry: []domain.EmployeeFaceRecord{
				{EmployeeID: "EMP001", Embedding: []float64{0.3, 0.4}, RegisteredAt: t1},
				{EmployeeID: "EMP002", Embedding: []float64{0.6, 0.8}, RegisteredAt: t1},
			},
			wantKnown: true,
			wantID:    "EMP001",
			wantConf:  0.5,
			confDelta: 1e-9,
		},
		{
			name:   "minimum at threshold is unknown",
			cfg:    Config{Metric: MetricEuclidean, Threshold: 0.5, EuclideanScale: 1},
			sample: sample(0, 0),
			registry: []domain.EmployeeFaceRecord{
				{EmployeeID: "EMP001", Embedding: []float64{0.3, 0.4}, RegisteredAt: t1},
			},
			wantKnown: false,
		},
		{
			name:   "identical distance prefers most recent registration",
			cfg:    DefaultConfig(),
			sample: sample(0, 0),
			registry: []domain.EmployeeFaceRecord{
				{EmployeeID: "EMP001", Embedding: []float64{0.1, 0}, RegisteredAt: t1},
				{EmployeeID: "EMP002", Embedding: []float64{0, 0.1}, RegisteredAt: t2},
			},
			wantKnown: true,
			wantID:    "EMP002",
			wantConf:  0.9,
			wantAmbig: true,
			confDelta: 1e-9,
		},
		{
			name:   "tie-break independent of registry order",
			cfg:    DefaultConfig(),
			sample: sample(0, 0),
			registry: []domain.EmployeeFaceRecord{
				{EmployeeID: "EMP002", Embedding: []float64{0, 0.1}, RegisteredAt: t2},
				{EmployeeID: "EMP001", Embedding: []float64{0.1, 0}, RegisteredAt: t1},
			},
			wantKnown: true,
			wantID:    "EMP002",
			wantConf:  0.9,
			wantAmbig: true,
			confDelta: 1e-9,
		},
		{
			name:   "mismatched record skipped",
			cfg:    DefaultConfig(),
			sample: sample(0.1, 0.2),
			registry: []domain.EmployeeFaceRecord{
				{EmployeeID: "EMP001", Embedding: []float64{0.1, 0.2, 0.3}, RegisteredAt: t1},
				{EmployeeID: "EMP002", Embedding: []float64{0.1, 0.2}, RegisteredAt: t1},
			},
			wantKnown: true,
			wantID:    "EMP002",
			wantConf:  1.0,
		},
		{
			name:   "no comparable record",
			cfg:    DefaultConfig(),
			sample: sample(0.1, 0.2),
			registry: []domain.EmployeeFaceRecord{
				{EmployeeID: "EMP001", Embedding: []float64{0.1, 0.2, 0.3}, RegisteredAt: t1},
			},
			wantErr: domain.ErrInvalidEmbedding,
		},
		{
			name:   "empty sample",
			cfg:    DefaultConfig(),
			sample: sample(),
			registry: []domain.EmployeeFaceRecord{
				{EmployeeID: "EMP001", Embedding: []float64{0.1}, RegisteredAt: t1},
			},
			wantErr: domain.ErrInvalidEmbedding,
		},
		{
			name:   "cosine metric normalizes by two",
			cfg:    Config{Metric: MetricCosine, Threshold: 0.4},
			sample: sample(1, 0),
			registry: []domain.EmployeeFaceRecord{
				{EmployeeID: "EMP001", Embedding: []float64{2, 0}, RegisteredAt: t1},
			},
			wantKnown: true,
			wantID:    "EMP001",
			wantConf:  1.0,
			confDelta: 1e-9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.cfg, testLogger())
			got, err := r.Resolve(tt.sample, tt.registry)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantKnown, got.Known)
			if !tt.wantKnown {
				assert.Empty(t, got.EmployeeID)
				return
			}
			assert.Equal(t, tt.wantID, got.EmployeeID)
			assert.InDelta(t, tt.wantConf, got.Confidence, tt.confDelta)
			assert.Equal(t, tt.wantAmbig, got.Ambiguous)
		})
	}
}

func TestResolver_ExactMatchAlwaysFullConfidence(t *testing.T) {
	r := NewResolver(DefaultConfig(), testLogger())
	registry := []domain.EmployeeFaceRecord{
		{EmployeeID: "A", Embedding: []float64{0.12, -0.4, 0.33, 0.8}, RegisteredAt: time.Unix(100, 0)},
		{EmployeeID: "B", Embedding: []float64{-0.5, 0.2, 0.1, 0.05}, RegisteredAt: time.Unix(200, 0)},
		{EmployeeID: "C", Embedding: []float64{0.9, 0.9, -0.9, 0.1}, RegisteredAt: time.Unix(300, 0)},
	}

	for _, rec := range registry {
		got, err := r.Resolve(domain.DetectionSample{Embedding: rec.Embedding}, registry)
		require.NoError(t, err)
		assert.True(t, got.Known)
		assert.Equal(t, rec.EmployeeID, got.EmployeeID)
		assert.Equal(t, 1.0, got.Confidence)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"cosine", Config{Metric: MetricCosine, Threshold: 0.3}, false},
		{"zero threshold", Config{Metric: MetricEuclidean, Threshold: 0, EuclideanScale: 1}, true},
		{"cosine threshold too large", Config{Metric: MetricCosine, Threshold: 2.5}, true},
		{"negative epsilon", Config{Metric: MetricEuclidean, Threshold: 0.6, TieEpsilon: -1, EuclideanScale: 1}, true},
		{"unknown metric", Config{Metric: "manhattan", Threshold: 0.6, EuclideanScale: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidThreshold)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
