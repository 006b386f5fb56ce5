// Package matcher resolves a captured face embedding against the registry of
// enrolled employees.
package matcher

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/domain"
)

// Config holds the tunable matching parameters.
type Config struct {
	Metric Metric
	// Threshold is the acceptance distance: a candidate matches only when its
	// distance is strictly below it.
	Threshold float64
	// TieEpsilon groups candidates whose distance is within epsilon of the
	// minimum. The most recently registered one wins.
	TieEpsilon float64
	// EuclideanScale normalizes Euclidean distances into a confidence.
	// Cosine distances are always normalized by 2.
	EuclideanScale float64
}

// DefaultConfig mirrors the face_recognition defaults: L2 distance with a 0.6
// acceptance threshold and confidence = 1 - distance.
func DefaultConfig() Config {
	return Config{
		Metric:         MetricEuclidean,
		Threshold:      0.6,
		TieEpsilon:     1e-9,
		EuclideanScale: 1.0,
	}
}

// Validate checks the config for impossible values.
func (c Config) Validate() error {
	if _, err := ParseMetric(string(c.Metric)); err != nil {
		return domain.ErrInvalidThreshold.WithError(err)
	}
	if c.Threshold <= 0 || math.IsNaN(c.Threshold) {
		return domain.ErrInvalidThreshold.WithError(fmt.Errorf("match threshold must be positive, got %v", c.Threshold))
	}
	if c.Metric == MetricCosine && c.Threshold > 2 {
		return domain.ErrInvalidThreshold.WithError(fmt.Errorf("cosine threshold must be <= 2, got %v", c.Threshold))
	}
	if c.TieEpsilon < 0 {
		return domain.ErrInvalidThreshold.WithError(fmt.Errorf("tie epsilon must not be negative"))
	}
	if c.Metric != MetricCosine && c.EuclideanScale <= 0 {
		return domain.ErrInvalidThreshold.WithError(fmt.Errorf("euclidean scale must be positive"))
	}
	return nil
}

// Match is the outcome of resolving one sample. Known is false for "unknown".
type Match struct {
	EmployeeID string  `json:"employee_id,omitempty"`
	Known      bool    `json:"known"`
	Distance   float64 `json:"distance"`
	Confidence float64 `json:"confidence"`
	// Ambiguous reports that more than one candidate tied at the minimum
	// distance and the tie-break decided.
	Ambiguous bool `json:"ambiguous,omitempty"`
}

// Resolver picks the best registry candidate for a detection sample.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	cfg    Config
	logger *slog.Logger
}

// NewResolver creates a resolver. Invalid configs are rejected by Validate;
// callers are expected to validate at load time.
func NewResolver(cfg Config, logger *slog.Logger) *Resolver {
	if cfg.Metric == "" {
		cfg.Metric = MetricEuclidean
	}
	if cfg.EuclideanScale <= 0 {
		cfg.EuclideanScale = 1.0
	}
	return &Resolver{cfg: cfg, logger: logger}
}

type candidate struct {
	record   *domain.EmployeeFaceRecord
	distance float64
}

// Resolve compares the sample against every registry record.
//
// Errors: ErrNoEnrolledFaces for an empty registry, ErrInvalidEmbedding when
// the sample is empty or no record shares its dimension. Records whose
// dimension differs are skipped with a warning.
func (r *Resolver) Resolve(sample domain.DetectionSample, registry []domain.EmployeeFaceRecord) (Match, error) {
	if len(registry) == 0 {
		return Match{}, domain.ErrNoEnrolledFaces
	}
	if len(sample.Embedding) == 0 {
		return Match{}, domain.ErrInvalidEmbedding.WithError(fmt.Errorf("sample embedding is empty"))
	}

	candidates := make([]candidate, 0, len(registry))
	minDistance := math.Inf(1)

	for i := range registry {
		rec := &registry[i]
		d, err := r.cfg.Metric.Distance(sample.Embedding, rec.Embedding)
		if err != nil {
			r.logger.Warn("skipping incomparable face record",
				"employee_id", rec.EmployeeID,
				"error", err,
			)
			continue
		}
		candidates = append(candidates, candidate{record: rec, distance: d})
		if d < minDistance {
			minDistance = d
		}
	}

	if len(candidates) == 0 {
		return Match{}, domain.ErrInvalidEmbedding.WithError(
			fmt.Errorf("no enrolled face has dimension %d", len(sample.Embedding)))
	}

	best, ties := r.tieBreak(candidates, minDistance)
	ambiguous := ties > 1
	if ambiguous {
		r.logger.Debug("ambiguous match resolved by registration time",
			"employee_id", best.record.EmployeeID,
			"tied_candidates", ties,
			"distance", minDistance,
		)
	}

	if minDistance >= r.cfg.Threshold {
		return Match{Known: false, Distance: minDistance, Ambiguous: ambiguous}, nil
	}

	return Match{
		EmployeeID: best.record.EmployeeID,
		Known:      true,
		Distance:   best.distance,
		Confidence: r.confidence(best.distance),
		Ambiguous:  ambiguous,
	}, nil
}

// tieBreak selects among candidates within epsilon of minDistance the most
// recently registered; equal registration times fall back to the smaller
// employee ID so the result never depends on registry order.
func (r *Resolver) tieBreak(candidates []candidate, minDistance float64) (candidate, int) {
	var best candidate
	ties := 0
	for _, c := range candidates {
		if c.distance-minDistance > r.cfg.TieEpsilon {
			continue
		}
		ties++
		if best.record == nil || newer(c.record, best.record) {
			best = c
		}
	}
	return best, ties
}

func newer(a, b *domain.EmployeeFaceRecord) bool {
	if a.RegisteredAt.Equal(b.RegisteredAt) {
		return a.EmployeeID < b.EmployeeID
	}
	return a.RegisteredAt.After(b.RegisteredAt)
}

// confidence maps a distance to [0, 1] where 1 means identical.
func (r *Resolver) confidence(distance float64) float64 {
	scale := r.cfg.EuclideanScale
	if r.cfg.Metric == MetricCosine {
		scale = 2
	}
	c := 1 - distance/scale
	return math.Max(0, math.Min(1, c))
}
