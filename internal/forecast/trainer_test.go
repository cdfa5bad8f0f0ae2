package forecast

import (
	"errors"
	"math"
	"testing"

	"StockCast/internal/domain/models"
	"StockCast/pkg/config"
)

// shortForecastConfig keeps training cheap in tests.
func shortForecastConfig() config.ForecastConfig {
	cfg := config.DefaultForecastConfig()
	cfg.Epochs = 4
	cfg.HiddenUnits = 8
	return cfg
}

func TestTrainEpochHistory(t *testing.T) {
	cfg := shortForecastConfig()
	ds, err := BuildDataset(syntheticCloses(150), cfg)
	if err != nil {
		t.Fatalf("BuildDataset: %v", err)
	}

	result, err := Train(ds, cfg)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if len(result.Epochs) != cfg.Epochs {
		t.Fatalf("epochs recorded = %d, want %d", len(result.Epochs), cfg.Epochs)
	}
	if len(result.Snapshots) != cfg.Epochs {
		t.Fatalf("snapshots = %d, want %d", len(result.Snapshots), cfg.Epochs)
	}
	for i, r := range result.Epochs {
		if r.Epoch != i+1 {
			t.Errorf("record %d has epoch %d", i, r.Epoch)
		}
		if !finite(r.TrainRMSE) || !finite(r.ValRMSE) {
			t.Errorf("epoch %d has non-finite losses: %+v", r.Epoch, r)
		}
		if r.TrainRMSE < 0 || r.ValRMSE < 0 {
			t.Errorf("epoch %d has negative RMSE: %+v", r.Epoch, r)
		}
	}
}

func TestTrainDeterministic(t *testing.T) {
	cfg := shortForecastConfig()
	closes := syntheticCloses(150)

	run := func() *TrainResult {
		ds, err := BuildDataset(closes, cfg)
		if err != nil {
			t.Fatalf("BuildDataset: %v", err)
		}
		result, err := Train(ds, cfg)
		if err != nil {
			t.Fatalf("Train: %v", err)
		}
		return result
	}

	a, b := run(), run()
	for i := range a.Epochs {
		if a.Epochs[i] != b.Epochs[i] {
			t.Fatalf("epoch %d differs between identical runs: %+v vs %+v",
				i+1, a.Epochs[i], b.Epochs[i])
		}
	}
	xa := a.Snapshots[len(a.Snapshots)-1].Predict(make([]float64, cfg.WindowSize))
	xb := b.Snapshots[len(b.Snapshots)-1].Predict(make([]float64, cfg.WindowSize))
	if xa != xb {
		t.Fatalf("final snapshots predict differently: %v vs %v", xa, xb)
	}
}

func TestTrainDivergenceDetected(t *testing.T) {
	cfg := shortForecastConfig()
	closes := syntheticCloses(150)
	ds, err := BuildDataset(closes, cfg)
	if err != nil {
		t.Fatalf("BuildDataset: %v", err)
	}
	// poison one training target
	ds.Train[3].Target = math.NaN()

	_, err = Train(ds, cfg)
	if !errors.Is(err, models.ErrTrainingDiverged) {
		t.Fatalf("err = %v, want ErrTrainingDiverged", err)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	cfg := shortForecastConfig()
	ds, err := BuildDataset(syntheticCloses(150), cfg)
	if err != nil {
		t.Fatalf("BuildDataset: %v", err)
	}
	result, err := Train(ds, cfg)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	window := ds.Train[0].Window
	before := result.Snapshots[0].Predict(window)

	// mutating the last snapshot must not touch an earlier one
	last := result.Snapshots[len(result.Snapshots)-1]
	last.Wd[0] += 100
	if after := result.Snapshots[0].Predict(window); after != before {
		t.Fatalf("snapshot 0 changed after mutating another snapshot")
	}
}
