package usecase

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/forecast"
	"StockCast/internal/repository"
	"StockCast/internal/sentiment"
	"StockCast/pkg/config"
	"StockCast/pkg/logger"
)

type fakePrices struct {
	series models.PriceSeries
	err    error
}

func (f *fakePrices) DailyCloses(_ context.Context, _ string, _, _ time.Time) (models.PriceSeries, error) {
	return f.series, f.err
}

type fakeNews struct {
	items []models.NewsItem
	err   error
}

func (f *fakeNews) CompanyNews(_ context.Context, _ string, _, _ time.Time) ([]models.NewsItem, error) {
	return f.items, f.err
}

type captureDispatcher struct {
	payloads []*ForecastJobPayload
	err      error
}

func (d *captureDispatcher) Enqueue(_ context.Context, _ string, payload interface{}) error {
	if d.err != nil {
		return d.err
	}
	d.payloads = append(d.payloads, payload.(*ForecastJobPayload))
	return nil
}

type recordingEvents struct {
	statuses []models.JobStatus
}

func (r *recordingEvents) PublishJobEvent(_ context.Context, ev *models.JobEvent) error {
	r.statuses = append(r.statuses, ev.Status)
	return nil
}

func (r *recordingEvents) Close() error { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordJobSubmitted(string)                 {}
func (nopMetrics) RecordJobFinished(string, float64)         {}
func (nopMetrics) RecordError(string)                        {}
func (nopMetrics) RecordModelSelection(string, int, float64) {}

func testSeries(n int) models.PriceSeries {
	series := make(models.PriceSeries, n)
	date := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range series {
		series[i] = models.PricePoint{
			Date:  date,
			Close: 100 + 0.1*float64(i) + 5*math.Sin(float64(i)/7),
		}
		date = date.AddDate(0, 0, 1)
	}
	return series
}

type fixture struct {
	orch       *Orchestrator
	store      *repository.MemoryJobStore
	dispatcher *captureDispatcher
	events     *recordingEvents
	prices     *fakePrices
	news       *fakeNews
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.DefaultForecastConfig()
	cfg.Epochs = 2
	cfg.HiddenUnits = 4

	f := &fixture{
		store:      repository.NewMemoryJobStore(),
		dispatcher: &captureDispatcher{},
		events:     &recordingEvents{},
		prices:     &fakePrices{series: testSeries(150)},
		news:       &fakeNews{items: []models.NewsItem{{Datetime: time.Now(), Headline: "Shares surge on record profit"}}},
	}
	f.orch = NewOrchestrator(
		f.store,
		f.prices,
		f.events,
		nopMetrics{},
		f.dispatcher,
		forecast.NewEngine(cfg, logger.Nop()),
		sentiment.NewAggregator(f.news, cfg.HeadlineLimit, logger.Nop()),
		cfg,
		logger.Nop(),
	)
	return f
}

func submitReq() *models.SubmitForecastRequest {
	yes := true
	return &models.SubmitForecastRequest{
		Ticker:           "aapl",
		StartDate:        "2026-01-01",
		EndDate:          "2026-08-01",
		IncludeSentiment: &yes,
	}
}

func TestSubmitReturnsPendingImmediately(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.orch.Submit(ctx, submitReq())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp.Status != models.StatusPending {
		t.Errorf("status = %s, want PENDING", resp.Status)
	}
	if resp.RequestID == "" {
		t.Error("empty request id")
	}
	if len(f.dispatcher.payloads) != 1 {
		t.Fatalf("enqueued = %d, want 1", len(f.dispatcher.payloads))
	}
	if got := f.dispatcher.payloads[0].Ticker; got != "AAPL" {
		t.Errorf("ticker = %q, want normalized AAPL", got)
	}

	job, err := f.orch.Status(ctx, resp.RequestID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if job.Status != models.StatusPending {
		t.Errorf("stored status = %s, want PENDING", job.Status)
	}
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name   string
		mutate func(*models.SubmitForecastRequest)
	}{
		{"bad start date", func(r *models.SubmitForecastRequest) { r.StartDate = "01/02/2026" }},
		{"bad end date", func(r *models.SubmitForecastRequest) { r.EndDate = "soon" }},
		{"inverted range", func(r *models.SubmitForecastRequest) { r.StartDate, r.EndDate = r.EndDate, r.StartDate }},
		{"equal dates", func(r *models.SubmitForecastRequest) { r.EndDate = r.StartDate }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := submitReq()
			tt.mutate(req)
			_, err := f.orch.Submit(context.Background(), req)
			if !models.IsValidation(err) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}
	if len(f.dispatcher.payloads) != 0 {
		t.Errorf("invalid requests were enqueued: %d", len(f.dispatcher.payloads))
	}
}

func TestProcessCompletesJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.orch.Submit(ctx, submitReq())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := f.orch.Process(ctx, f.dispatcher.payloads[0]); err != nil {
		t.Fatalf("Process: %v", err)
	}

	job, err := f.orch.Status(ctx, resp.RequestID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if job.Status != models.StatusCompleted {
		t.Fatalf("status = %s (%s), want COMPLETED", job.Status, job.Error)
	}

	r := job.Result
	if r == nil {
		t.Fatal("nil result on COMPLETED job")
	}
	if r.Ticker != "AAPL" {
		t.Errorf("result ticker = %q", r.Ticker)
	}
	if r.Prediction.CurrentPrice <= 0 || r.Prediction.PredictedPrice20D <= 0 {
		t.Errorf("implausible prediction: %+v", r.Prediction)
	}
	// 150 closes minus the 20-wide window leaves 130 samples
	if r.ForecastTimeline.HistoricalDays != 130 || r.ForecastTimeline.ForecastDays != 20 {
		t.Errorf("timeline = %+v", r.ForecastTimeline)
	}
	if r.ForecastTimeline.TotalDays != 150 {
		t.Errorf("total days = %d, want 150", r.ForecastTimeline.TotalDays)
	}
	if r.Sentiment == nil {
		t.Error("sentiment requested but missing")
	}

	want := []models.JobStatus{models.StatusPending, models.StatusProcessing, models.StatusCompleted}
	if len(f.events.statuses) != len(want) {
		t.Fatalf("events = %v, want %v", f.events.statuses, want)
	}
	for i := range want {
		if f.events.statuses[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, f.events.statuses[i], want[i])
		}
	}
}

func TestProcessShortRangeFailsBeforeProcessing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := submitReq()
	req.EndDate = "2026-03-01" // about two months, far under minimum coverage
	resp, err := f.orch.Submit(ctx, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := f.orch.Process(ctx, f.dispatcher.payloads[0]); err != nil {
		t.Fatalf("Process: %v", err)
	}

	job, _ := f.orch.Status(ctx, resp.RequestID)
	if job.Status != models.StatusFailed {
		t.Fatalf("status = %s, want FAILED", job.Status)
	}
	if !strings.Contains(job.Error, "trading days") {
		t.Errorf("error = %q, want coverage message", job.Error)
	}
	for _, s := range f.events.statuses {
		if s == models.StatusProcessing {
			t.Error("short-range job entered PROCESSING")
		}
	}
}

func TestProcessInsufficientFetchedHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// range is wide enough but the provider returns too few closes
	f.prices.series = testSeries(60)
	resp, err := f.orch.Submit(ctx, submitReq())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := f.orch.Process(ctx, f.dispatcher.payloads[0]); err != nil {
		t.Fatalf("Process: %v", err)
	}

	job, _ := f.orch.Status(ctx, resp.RequestID)
	if job.Status != models.StatusFailed {
		t.Fatalf("status = %s, want FAILED", job.Status)
	}
	if !strings.Contains(job.Error, "insufficient") {
		t.Errorf("error = %q", job.Error)
	}
}

func TestProcessUnorderedSeriesFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	series := testSeries(150)
	series[10].Date = series[9].Date // duplicate date breaks strict ordering
	f.prices.series = series

	resp, err := f.orch.Submit(ctx, submitReq())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := f.orch.Process(ctx, f.dispatcher.payloads[0]); err != nil {
		t.Fatalf("Process: %v", err)
	}

	job, _ := f.orch.Status(ctx, resp.RequestID)
	if job.Status != models.StatusFailed {
		t.Fatalf("status = %s, want FAILED", job.Status)
	}
	if !strings.Contains(job.Error, "date order") {
		t.Errorf("error = %q, want ordering message", job.Error)
	}
}

func TestProcessSentimentDegrades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.news.items = nil // aggregator reports unavailable
	resp, err := f.orch.Submit(ctx, submitReq())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := f.orch.Process(ctx, f.dispatcher.payloads[0]); err != nil {
		t.Fatalf("Process: %v", err)
	}

	job, _ := f.orch.Status(ctx, resp.RequestID)
	if job.Status != models.StatusCompleted {
		t.Fatalf("status = %s (%s), want COMPLETED despite sentiment failure", job.Status, job.Error)
	}
	if job.Result.Sentiment != nil {
		t.Error("sentiment section present, want omitted")
	}
}

func TestProcessAtMostOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.orch.Submit(ctx, submitReq())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	payload := f.dispatcher.payloads[0]
	if err := f.orch.Process(ctx, payload); err != nil {
		t.Fatalf("first Process: %v", err)
	}
	first, _ := f.orch.Status(ctx, resp.RequestID)

	// duplicate delivery must be a no-op
	if err := f.orch.Process(ctx, payload); err != nil {
		t.Fatalf("second Process: %v", err)
	}
	second, _ := f.orch.Status(ctx, resp.RequestID)
	if second.UpdatedAt != first.UpdatedAt || second.Status != first.Status {
		t.Error("settled job was reprocessed")
	}
}
