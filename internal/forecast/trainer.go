package forecast

import (
	"fmt"
	"math"
	"math/rand"

	"StockCast/internal/domain/models"
	"StockCast/pkg/config"
)

// RMSprop hyperparameters.
const (
	learningRate = 0.001
	rmsDecay     = 0.9
	rmsEpsilon   = 1e-7
)

// EpochRecord holds the loss pair of one completed epoch.
type EpochRecord struct {
	Epoch     int // 1-based
	TrainRMSE float64
	ValRMSE   float64
}

// TrainResult is the full training history with one weight snapshot
// per epoch, indexed identically to Epochs.
type TrainResult struct {
	Epochs    []EpochRecord
	Snapshots []*Model
}

// grads mirrors the trainable parameters of a Model.
type grads struct {
	wi, wg, wo [][]float64
	bi, bg, bo []float64
	wd         []float64
	bd         float64
}

func newGrads(in, hidden int) *grads {
	mat := func() [][]float64 {
		m := make([][]float64, hidden)
		for i := range m {
			m[i] = make([]float64, in)
		}
		return m
	}
	return &grads{
		wi: mat(), wg: mat(), wo: mat(),
		bi: make([]float64, hidden),
		bg: make([]float64, hidden),
		bo: make([]float64, hidden),
		wd: make([]float64, hidden),
	}
}

func (g *grads) zero() {
	for h := range g.wi {
		for j := range g.wi[h] {
			g.wi[h][j] = 0
			g.wg[h][j] = 0
			g.wo[h][j] = 0
		}
		g.bi[h] = 0
		g.bg[h] = 0
		g.bo[h] = 0
		g.wd[h] = 0
	}
	g.bd = 0
}

// Train fits a fresh model on the dataset for the configured number of
// epochs, batched in chronological order with no shuffling. All
// randomness, weight init and dropout masks, flows from the configured
// seed, so two runs over the same input produce identical histories.
func Train(ds *Dataset, cfg config.ForecastConfig) (*TrainResult, error) {
	rng := rand.New(rand.NewSource(int64(cfg.Seed)))
	model := NewModel(cfg.WindowSize, cfg.HiddenUnits, rng)

	g := newGrads(cfg.WindowSize, cfg.HiddenUnits)
	rms := newGrads(cfg.WindowSize, cfg.HiddenUnits) // squared-gradient accumulators
	st := newCellState(cfg.HiddenUnits)
	mask := make([]float64, cfg.HiddenUnits)

	result := &TrainResult{
		Epochs:    make([]EpochRecord, 0, cfg.Epochs),
		Snapshots: make([]*Model, 0, cfg.Epochs),
	}

	keep := 1 - cfg.Dropout
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		sumSq := 0.0
		for start := 0; start < len(ds.Train); start += cfg.BatchSize {
			end := start + cfg.BatchSize
			if end > len(ds.Train) {
				end = len(ds.Train)
			}
			batch := ds.Train[start:end]
			g.zero()

			for _, sample := range batch {
				model.forward(sample.Window, st)

				// inverted dropout on the hidden vector, training only
				for h := range mask {
					if rng.Float64() < cfg.Dropout {
						mask[h] = 0
					} else {
						mask[h] = 1 / keep
					}
				}

				y := model.Bd
				for h := 0; h < model.Hidden; h++ {
					y += model.Wd[h] * st.h[h] * mask[h]
				}
				err := y - sample.Target
				sumSq += err * err

				dy := 2 * err / float64(len(batch))
				g.bd += dy
				for h := 0; h < model.Hidden; h++ {
					hd := st.h[h] * mask[h]
					g.wd[h] += dy * hd

					dh := dy * model.Wd[h] * mask[h]
					do := dh * relu(st.c[h])
					dao := do * st.o[h] * (1 - st.o[h])

					dc := 0.0
					if st.c[h] > 0 {
						dc = dh * st.o[h]
					}
					di := dc * st.g[h]
					dai := di * st.i[h] * (1 - st.i[h])
					dag := 0.0
					if st.ag[h] > 0 {
						dag = dc * st.i[h]
					}

					g.bi[h] += dai
					g.bg[h] += dag
					g.bo[h] += dao
					for j, x := range sample.Window {
						g.wi[h][j] += dai * x
						g.wg[h][j] += dag * x
						g.wo[h][j] += dao * x
					}
				}
			}

			applyRMSprop(model, g, rms)
		}

		trainRMSE := math.Sqrt(sumSq / float64(len(ds.Train)))
		valRMSE := rmse(model, ds.Val)
		if !finite(trainRMSE) || !finite(valRMSE) {
			return nil, fmt.Errorf("epoch %d: %w", epoch+1, models.ErrTrainingDiverged)
		}

		result.Epochs = append(result.Epochs, EpochRecord{
			Epoch:     epoch + 1,
			TrainRMSE: trainRMSE,
			ValRMSE:   valRMSE,
		})
		result.Snapshots = append(result.Snapshots, model.Clone())
	}

	return result, nil
}

func applyRMSprop(m *Model, g, rms *grads) {
	step := func(w, grad, acc *float64) {
		*acc = rmsDecay*(*acc) + (1-rmsDecay)*(*grad)*(*grad)
		*w -= learningRate * (*grad) / (math.Sqrt(*acc) + rmsEpsilon)
	}
	for h := 0; h < m.Hidden; h++ {
		for j := 0; j < m.In; j++ {
			step(&m.Wi[h][j], &g.wi[h][j], &rms.wi[h][j])
			step(&m.Wg[h][j], &g.wg[h][j], &rms.wg[h][j])
			step(&m.Wo[h][j], &g.wo[h][j], &rms.wo[h][j])
		}
		step(&m.Bi[h], &g.bi[h], &rms.bi[h])
		step(&m.Bg[h], &g.bg[h], &rms.bg[h])
		step(&m.Bo[h], &g.bo[h], &rms.bo[h])
		step(&m.Wd[h], &g.wd[h], &rms.wd[h])
	}
	step(&m.Bd, &g.bd, &rms.bd)
}

// rmse evaluates the model over samples without dropout.
func rmse(m *Model, samples []Sample) float64 {
	sumSq := 0.0
	for _, s := range samples {
		err := m.Predict(s.Window) - s.Target
		sumSq += err * err
	}
	return math.Sqrt(sumSq / float64(len(samples)))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
