package forecast

import (
	"testing"

	"StockCast/pkg/logger"
)

func TestForecastRollsWindow(t *testing.T) {
	cfg := shortForecastConfig()
	ds, err := BuildDataset(syntheticCloses(150), cfg)
	if err != nil {
		t.Fatalf("BuildDataset: %v", err)
	}
	result, err := Train(ds, cfg)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	model := result.Snapshots[len(result.Snapshots)-1]

	seed := make([]float64, len(ds.LastWindow))
	copy(seed, ds.LastWindow)

	prices := Forecast(model, ds.LastWindow, ds.Scaler, cfg.HorizonDays)
	if len(prices) != cfg.HorizonDays {
		t.Fatalf("forecast length = %d, want %d", len(prices), cfg.HorizonDays)
	}
	for i, p := range prices {
		if !finite(p) {
			t.Errorf("forecast step %d is non-finite: %v", i, p)
		}
	}
	for i := range seed {
		if ds.LastWindow[i] != seed[i] {
			t.Fatal("Forecast mutated the seed window")
		}
	}
}

func TestEngineRun(t *testing.T) {
	cfg := shortForecastConfig()
	engine := NewEngine(cfg, logger.Nop())
	closes := syntheticCloses(160)

	out, err := engine.Run(closes)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.ForecastPrices) != cfg.HorizonDays {
		t.Errorf("forecast length = %d, want %d", len(out.ForecastPrices), cfg.HorizonDays)
	}
	if out.CurrentPrice != closes[len(closes)-1] {
		t.Errorf("current price = %v, want %v", out.CurrentPrice, closes[len(closes)-1])
	}
	if out.ChosenEpoch < 1 || out.ChosenEpoch > cfg.Epochs {
		t.Errorf("chosen epoch = %d out of range", out.ChosenEpoch)
	}
	if out.MAPE < 0 {
		t.Errorf("mape = %v, want >= 0", out.MAPE)
	}
	// the timeline counts windowed samples, not raw closes
	if want := len(closes) - cfg.WindowSize; out.HistoricalDays != want {
		t.Errorf("historical days = %d, want %d", out.HistoricalDays, want)
	}

	// identical input, identical outcome
	again, err := engine.Run(closes)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if again.ChosenEpoch != out.ChosenEpoch || again.MAPE != out.MAPE {
		t.Errorf("runs diverge: (%d, %v) vs (%d, %v)",
			out.ChosenEpoch, out.MAPE, again.ChosenEpoch, again.MAPE)
	}
	for i := range out.ForecastPrices {
		if out.ForecastPrices[i] != again.ForecastPrices[i] {
			t.Fatalf("forecast step %d differs between runs", i)
		}
	}
}

func TestEngineRunShortHistory(t *testing.T) {
	engine := NewEngine(shortForecastConfig(), logger.Nop())
	if _, err := engine.Run(syntheticCloses(50)); err == nil {
		t.Fatal("expected error for short history")
	}
}
