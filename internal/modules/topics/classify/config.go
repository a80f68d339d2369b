package classify

import (
	"fmt"
	"math"
	"strings"

	"github.com/sayevvv/LearnUp-sub001/internal/platform/envutil"
	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

// Config holds the scoring constants. Weights must be positive so that extra hits never
// lower a score.
type Config struct {
	TitleWeight     float64
	SummaryWeight   float64
	MilestoneWeight float64

	// K smooths score into confidence: score / (score + K).
	K float64

	MaxSecondary int

	// BaselineConfidence is reported for the fallback primary. It must stay below the
	// confidence of a single lowest-weight hit.
	BaselineConfidence float64

	DefaultSlug string
}

func DefaultConfig() Config {
	return Config{
		TitleWeight:        2.0,
		SummaryWeight:      1.0,
		MilestoneWeight:    1.0,
		K:                  1.0,
		MaxSecondary:       4,
		BaselineConfidence: 0.05,
		DefaultSlug:        "other",
	}
}

// LoadConfig reads CLASSIFIER_* overrides on top of DefaultConfig and validates them.
func LoadConfig(log *logger.Logger) (Config, error) {
	d := DefaultConfig()
	cfg := Config{
		TitleWeight:        envutil.Float("CLASSIFIER_TITLE_WEIGHT", d.TitleWeight, log),
		SummaryWeight:      envutil.Float("CLASSIFIER_SUMMARY_WEIGHT", d.SummaryWeight, log),
		MilestoneWeight:    envutil.Float("CLASSIFIER_MILESTONE_WEIGHT", d.MilestoneWeight, log),
		K:                  envutil.Float("CLASSIFIER_K", d.K, log),
		MaxSecondary:       envutil.Int("CLASSIFIER_MAX_SECONDARY", d.MaxSecondary, log),
		BaselineConfidence: envutil.Float("CLASSIFIER_BASELINE_CONFIDENCE", d.BaselineConfidence, log),
		DefaultSlug:        envutil.String("CLASSIFIER_DEFAULT_TOPIC", d.DefaultSlug, log),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"title_weight", c.TitleWeight},
		{"summary_weight", c.SummaryWeight},
		{"milestone_weight", c.MilestoneWeight},
		{"k", c.K},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v <= 0 {
			return fmt.Errorf("classifier config: %s must be a positive finite number, got %v", f.name, f.v)
		}
	}
	if c.MaxSecondary < 0 {
		return fmt.Errorf("classifier config: max_secondary must be >= 0, got %d", c.MaxSecondary)
	}
	if strings.TrimSpace(c.DefaultSlug) == "" {
		return fmt.Errorf("classifier config: default topic is required")
	}
	if c.BaselineConfidence <= 0 || c.BaselineConfidence >= c.minMatchedConfidence() {
		return fmt.Errorf("classifier config: baseline_confidence must be in (0, %v), got %v",
			c.minMatchedConfidence(), c.BaselineConfidence)
	}
	return nil
}

func (c Config) minMatchedConfidence() float64 {
	w := math.Min(c.TitleWeight, math.Min(c.SummaryWeight, c.MilestoneWeight))
	return c.confidence(w)
}

// confidence maps a positive score into (0, 1). Ratios that round to 1 are clamped to the
// largest float64 below 1, which keeps the mapping non-decreasing.
func (c Config) confidence(score float64) float64 {
	if score <= 0 {
		return 0
	}
	v := score / (score + c.K)
	if v >= 1 || math.IsNaN(v) {
		return math.Nextafter(1, 0)
	}
	return v
}
