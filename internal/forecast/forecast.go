package forecast

import (
	"math"

	"StockCast/pkg/config"
	"StockCast/pkg/logger"
)

// Forecast rolls the model forward horizon steps. Each predicted value
// is appended to the window (oldest element dropped) and fed back in,
// all in normalized space; the returned slice is denormalized prices.
func Forecast(m *Model, seed []float64, scaler Scaler, horizon int) []float64 {
	window := make([]float64, len(seed))
	copy(window, seed)

	out := make([]float64, horizon)
	for k := 0; k < horizon; k++ {
		y := m.Predict(window)
		out[k] = scaler.Inverse(y)
		copy(window, window[1:])
		window[len(window)-1] = y
	}
	return out
}

// BacktestMAPE measures one-step prediction error over the validation
// samples in price space, as a percentage.
func BacktestMAPE(m *Model, val []Sample, scaler Scaler) float64 {
	sum := 0.0
	count := 0
	for _, s := range val {
		actual := scaler.Inverse(s.Target)
		if actual == 0 {
			continue
		}
		pred := scaler.Inverse(m.Predict(s.Window))
		sum += math.Abs(pred-actual) / math.Abs(actual)
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count) * 100
}

// Outcome is the numeric result of one full forecast run.
type Outcome struct {
	ForecastPrices []float64
	CurrentPrice   float64
	MAPE           float64
	ChosenEpoch    int // 1-based
	TrainRMSE      float64
	ValRMSE        float64
	HistoricalDays int // windowed samples (train + validation targets)
}

// Engine runs the full pipeline: window and split the closes, train,
// select the best epoch, backtest it and produce the iterated forecast.
type Engine struct {
	cfg config.ForecastConfig
	log *logger.Logger
}

func NewEngine(cfg config.ForecastConfig, log *logger.Logger) *Engine {
	return &Engine{cfg: cfg, log: log}
}

// Run executes the pipeline over chronologically ordered daily closes.
// The run is deterministic for a given input and configured seed.
func (e *Engine) Run(closes []float64) (*Outcome, error) {
	ds, err := BuildDataset(closes, e.cfg)
	if err != nil {
		return nil, err
	}
	e.log.Debug("dataset built",
		logger.Int("train_samples", len(ds.Train)),
		logger.Int("val_samples", len(ds.Val)))

	result, err := Train(ds, e.cfg)
	if err != nil {
		return nil, err
	}

	idx, record := SelectEpoch(result, e.cfg.TrainWeight)
	model := result.Snapshots[idx]
	e.log.Info("epoch selected",
		logger.Int("epoch", record.Epoch),
		logger.Float64("train_rmse", record.TrainRMSE),
		logger.Float64("val_rmse", record.ValRMSE))

	mape := BacktestMAPE(model, ds.Val, ds.Scaler)
	prices := Forecast(model, ds.LastWindow, ds.Scaler, e.cfg.HorizonDays)

	return &Outcome{
		ForecastPrices: prices,
		CurrentPrice:   ds.LastClose,
		MAPE:           mape,
		ChosenEpoch:    record.Epoch,
		TrainRMSE:      record.TrainRMSE,
		ValRMSE:        record.ValRMSE,
		HistoricalDays: len(ds.Train) + len(ds.Val),
	}, nil
}
