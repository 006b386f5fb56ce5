package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ThresholdsFile is the YAML overlay for matching and alert thresholds.
// Keys left out keep their environment value.
type ThresholdsFile struct {
	Match struct {
		Metric     *string  `yaml:"metric"`
		Threshold  *float64 `yaml:"threshold"`
		TieEpsilon *float64 `yaml:"tie_epsilon"`
	} `yaml:"match"`
	Alerts struct {
		AttendancePct    *float64 `yaml:"attendance_pct"`
		PerformanceScore *float64 `yaml:"performance_score"`
		InactivityDays   *int     `yaml:"inactivity_days"`
		WindowDays       *int     `yaml:"window_days"`
		ScoreSource      *string  `yaml:"score_source"`
	} `yaml:"alerts"`
}

// ApplyThresholdsFile overlays the thresholds found in the YAML file at path.
func (c *Config) ApplyThresholdsFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read thresholds file: %w", err)
	}

	var tf ThresholdsFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return fmt.Errorf("parse thresholds file %s: %w", path, err)
	}

	setIf(&c.MatchMetric, tf.Match.Metric)
	setIf(&c.MatchThreshold, tf.Match.Threshold)
	setIf(&c.MatchTieEpsilon, tf.Match.TieEpsilon)
	setIf(&c.AlertAttendancePct, tf.Alerts.AttendancePct)
	setIf(&c.AlertPerformanceScore, tf.Alerts.PerformanceScore)
	setIf(&c.AlertInactivityDays, tf.Alerts.InactivityDays)
	setIf(&c.AlertWindowDays, tf.Alerts.WindowDays)
	setIf(&c.AlertScoreSource, tf.Alerts.ScoreSource)
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
