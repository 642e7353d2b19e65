// Package forensics scores a receipt capture image for signs of tampering.
// Six independent signal detectors each vote with a fixed additive weight;
// the clamped sum classifies the capture as LOW, MEDIUM or HIGH suspicion.
package forensics

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/veripay/veripay/internal/domain"
)

// Config holds the signal weights and detector thresholds. All values are
// hand-tuned provisional defaults, not calibrated against a labeled dataset.
type Config struct {
	MetadataWeight    float64
	NoiseWeight       float64
	FontWeight        float64
	CompressionWeight float64
	DuplicateWeight   float64
	EdgeWeight        float64

	// HighThreshold is the fraud score at or above which a capture is
	// classified HIGH. MediumThreshold likewise for MEDIUM.
	HighThreshold   float64
	MediumThreshold float64

	MinVariance            float64
	MinEntropy             float64
	MaxQuadrantVarianceStd float64
	FontHeightSpreadRatio  float64
	BlockEdgeJump          float64
	BlockArtifactRatio     float64
	DuplicateCorrelation   float64
	DuplicateRatio         float64
	EdgeGradientThreshold  float64
	MinEdgeDensity         float64
	MaxEdgeDensity         float64
}

// DefaultConfig returns the documented default weights and thresholds.
func DefaultConfig() Config {
	return Config{
		MetadataWeight:    0.3,
		NoiseWeight:       0.4,
		FontWeight:        0.3,
		CompressionWeight: 0.2,
		DuplicateWeight:   0.5,
		EdgeWeight:        0.3,

		HighThreshold:   0.8,
		MediumThreshold: 0.3,

		MinVariance:            100,
		MinEntropy:             4.0,
		MaxQuadrantVarianceStd: 500,
		FontHeightSpreadRatio:  0.5,
		BlockEdgeJump:          30,
		BlockArtifactRatio:     0.1,
		DuplicateCorrelation:   0.95,
		DuplicateRatio:         0.05,
		EdgeGradientThreshold:  128,
		MinEdgeDensity:         0.01,
		MaxEdgeDensity:         0.3,
	}
}

// Analyzer computes a ForensicsReport from raw capture bytes. It is pure
// and safe for concurrent use.
type Analyzer struct {
	cfg Config
	log zerolog.Logger
	now func() time.Time
}

// New creates an Analyzer.
func New(cfg Config, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		cfg: cfg,
		log: log.With().Str("component", "forensics").Logger(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Analyze runs all six signal detectors and aggregates their votes. A
// detector that fails internally reports itself as not suspicious with a
// diagnostic reason; an undecodable image yields a zero-score LOW report
// rather than an error.
func (a *Analyzer) Analyze(data []byte) domain.ForensicsReport {
	report := domain.ForensicsReport{SuspicionLevel: domain.SuspicionLow}

	img, err := decodeGray(data)
	if err != nil {
		a.log.Warn().Err(err).Msg("capture image not analyzable")
		report.Indicators = append(report.Indicators, fmt.Sprintf("analysis skipped: %v", err))
		return report
	}

	signals := []struct {
		name   string
		weight float64
		run    func() signalResult
	}{
		{"metadata_anomaly", a.cfg.MetadataWeight, func() signalResult { return a.checkMetadata(data, a.now()) }},
		{"noise_pattern", a.cfg.NoiseWeight, func() signalResult { return a.checkNoise(img) }},
		{"font_consistency", a.cfg.FontWeight, func() signalResult { return a.checkFontConsistency(img) }},
		{"compression_artifact", a.cfg.CompressionWeight, func() signalResult { return a.checkCompression(img) }},
		{"duplicate_region", a.cfg.DuplicateWeight, func() signalResult { return a.checkDuplicateRegions(img) }},
		{"edge_density", a.cfg.EdgeWeight, func() signalResult { return a.checkEdgeDensity(img) }},
	}

	var score float64
	for _, sig := range signals {
		res := sig.run()
		entry := domain.SignalScore{Signal: sig.name, Fired: res.fired, Reason: res.reason}
		if res.fired {
			entry.Weight = sig.weight
			score += sig.weight
			report.Indicators = append(report.Indicators, res.reason)
		}
		report.SignalBreakdown = append(report.SignalBreakdown, entry)
	}

	if score > 1.0 {
		score = 1.0
	}
	report.FraudScore = score

	switch {
	case score >= a.cfg.HighThreshold:
		report.SuspicionLevel = domain.SuspicionHigh
	case score >= a.cfg.MediumThreshold:
		report.SuspicionLevel = domain.SuspicionMedium
	default:
		report.SuspicionLevel = domain.SuspicionLow
	}

	return report
}
