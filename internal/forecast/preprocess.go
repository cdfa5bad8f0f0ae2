package forecast

import (
	"StockCast/internal/domain/models"
	"StockCast/pkg/config"
)

// Scaler maps prices into [0,1] by min-max over the fitted range.
type Scaler struct {
	Min float64
	Max float64
}

// FitScaler computes the min and max over values.
func FitScaler(values []float64) Scaler {
	s := Scaler{Min: values[0], Max: values[0]}
	for _, v := range values[1:] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	return s
}

// Transform normalizes a single price. A degenerate range maps to 0.
func (s Scaler) Transform(v float64) float64 {
	if s.Max == s.Min {
		return 0
	}
	return (v - s.Min) / (s.Max - s.Min)
}

// Inverse denormalizes a model output back to price space.
func (s Scaler) Inverse(v float64) float64 {
	return v*(s.Max-s.Min) + s.Min
}

// Sample pairs a normalized input window with its next-step target.
type Sample struct {
	Window []float64
	Target float64
}

// Dataset is the windowed, normalized, positionally split training input.
type Dataset struct {
	Train      []Sample
	Val        []Sample
	Scaler     Scaler
	LastWindow []float64 // normalized trailing window, seed of the forecast loop
	LastClose  float64   // most recent actual close, in price space
}

// BuildDataset windows closes with stride 1, normalizes with a scaler
// fitted only on the prices covered by the training partition, and
// splits samples positionally at floor(0.8*n). Chronological order is
// preserved throughout, no shuffling anywhere.
func BuildDataset(closes []float64, cfg config.ForecastConfig) (*Dataset, error) {
	if len(closes) < cfg.MinHistory {
		return nil, models.NewValidationError(
			"insufficient price history: got %d closes, need at least %d",
			len(closes), cfg.MinHistory)
	}

	w := cfg.WindowSize
	n := len(closes) - w
	split := int(cfg.SplitFraction * float64(n))
	if split < 1 || n-split < 1 {
		return nil, models.NewValidationError(
			"history too short to split: %d samples", n)
	}

	// The last training sample ends at index split-1+w, so the scaler
	// sees exactly the prices the training partition covers. Validation
	// prices outside that range clip past [0,1], which is fine.
	scaler := FitScaler(closes[:split+w])

	norm := make([]float64, len(closes))
	for i, v := range closes {
		norm[i] = scaler.Transform(v)
	}

	samples := make([]Sample, n)
	for i := 0; i < n; i++ {
		samples[i] = Sample{
			Window: norm[i : i+w],
			Target: norm[i+w],
		}
	}

	last := make([]float64, w)
	copy(last, norm[len(norm)-w:])

	return &Dataset{
		Train:      samples[:split],
		Val:        samples[split:],
		Scaler:     scaler,
		LastWindow: last,
		LastClose:  closes[len(closes)-1],
	}, nil
}
