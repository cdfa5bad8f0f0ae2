package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/repository"
	"StockCast/internal/forecast"
	"StockCast/internal/sentiment"
	"StockCast/pkg/config"
	"StockCast/pkg/logger"
	"StockCast/pkg/util"
)

// ForecastJobType is the queue message type for forecast requests.
const ForecastJobType = "forecast.request"

// ForecastJobPayload is the queued payload of an accepted request.
type ForecastJobPayload struct {
	RequestID        string `json:"request_id"`
	Ticker           string `json:"ticker"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	IncludeSentiment bool   `json:"include_sentiment"`
}

// Dispatcher hands an accepted job to the background workers.
type Dispatcher interface {
	Enqueue(ctx context.Context, msgType string, payload interface{}) error
}

// Orchestrator owns the forecast job lifecycle: acceptance, the full
// processing pipeline, and status reads.
type Orchestrator struct {
	store      repository.JobStore
	prices     repository.PriceProvider
	archive    repository.CandleArchive // nil when clickhouse is disabled
	events     repository.EventPublisher
	metrics    repository.Metrics
	dispatcher Dispatcher
	engine     *forecast.Engine
	sentiment  *sentiment.Aggregator
	cfg        config.ForecastConfig
	log        *logger.Logger
}

// Option configures Orchestrator.
type Option func(*Orchestrator)

// WithCandleArchive enables the read-through candle archive.
func WithCandleArchive(archive repository.CandleArchive) Option {
	return func(o *Orchestrator) {
		o.archive = archive
	}
}

func NewOrchestrator(
	store repository.JobStore,
	prices repository.PriceProvider,
	events repository.EventPublisher,
	metrics repository.Metrics,
	dispatcher Dispatcher,
	engine *forecast.Engine,
	agg *sentiment.Aggregator,
	cfg config.ForecastConfig,
	log *logger.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		store:      store,
		prices:     prices,
		events:     events,
		metrics:    metrics,
		dispatcher: dispatcher,
		engine:     engine,
		sentiment:  agg,
		cfg:        cfg,
		log:        log,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit validates the request, records a PENDING job under a fresh
// request id, and enqueues it. Returns immediately, never waits for
// the pipeline.
func (o *Orchestrator) Submit(ctx context.Context, req *models.SubmitForecastRequest) (*models.SubmitForecastResponse, error) {
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))

	start, err := util.ParseISODate(req.StartDate)
	if err != nil {
		return nil, models.NewValidationError("start_date: %v", err)
	}
	end, err := util.ParseISODate(req.EndDate)
	if err != nil {
		return nil, models.NewValidationError("end_date: %v", err)
	}
	if !start.Before(end) {
		return nil, models.NewValidationError("start_date %s must precede end_date %s", req.StartDate, req.EndDate)
	}

	now := time.Now().UTC()
	job := &models.Job{
		RequestID:        uuid.NewString(),
		Ticker:           ticker,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		IncludeSentiment: req.WantSentiment(),
		Status:           models.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := o.store.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("store job: %w", err)
	}

	payload := &ForecastJobPayload{
		RequestID:        job.RequestID,
		Ticker:           job.Ticker,
		StartDate:        job.StartDate,
		EndDate:          job.EndDate,
		IncludeSentiment: job.IncludeSentiment,
	}
	if err := o.dispatcher.Enqueue(ctx, ForecastJobType, payload); err != nil {
		// without a queued message the job would sit PENDING forever
		_ = o.store.Fail(ctx, job.RequestID, "enqueue failed")
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	o.metrics.RecordJobSubmitted(ticker)
	o.publishEvent(ctx, job.RequestID, ticker, models.StatusPending, "")
	o.log.Info("forecast accepted",
		logger.String("request_id", job.RequestID),
		logger.String("ticker", ticker),
		logger.String("range", req.StartDate+".."+req.EndDate))

	return &models.SubmitForecastResponse{
		RequestID: job.RequestID,
		Status:    models.StatusPending,
		Message:   "forecast request accepted",
	}, nil
}

// Status returns the current job record for a request id.
func (o *Orchestrator) Status(ctx context.Context, requestID string) (*models.Job, error) {
	return o.store.Get(ctx, requestID)
}

// Process runs the pipeline for one queued job. Called by exactly one
// worker per request id. Errors that reach the job record are not
// returned: a FAILED job is a handled outcome, not a handler failure.
func (o *Orchestrator) Process(ctx context.Context, payload *ForecastJobPayload) error {
	started := time.Now()

	job, err := o.store.Get(ctx, payload.RequestID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", payload.RequestID, err)
	}
	if job.Status.Terminal() {
		// duplicate delivery, the first run already settled it
		o.log.Warn("skipping settled job",
			logger.String("request_id", job.RequestID),
			logger.String("status", string(job.Status)))
		return nil
	}

	start, err := util.ParseISODate(payload.StartDate)
	if err != nil {
		return o.fail(ctx, job, started, fmt.Errorf("start_date: %w", err))
	}
	end, err := util.ParseISODate(payload.EndDate)
	if err != nil {
		return o.fail(ctx, job, started, fmt.Errorf("end_date: %w", err))
	}

	// cheap coverage check before any work: a range that cannot hold
	// enough trading days fails without entering PROCESSING
	if days := util.TradingDaysBetween(start, end); days < o.cfg.MinHistory {
		return o.fail(ctx, job, started, models.NewValidationError(
			"date range spans about %d trading days, need at least %d (about 5 months)",
			days, o.cfg.MinHistory))
	}

	if err := o.store.MarkProcessing(ctx, job.RequestID); err != nil {
		return fmt.Errorf("mark processing %s: %w", job.RequestID, err)
	}
	o.publishEvent(ctx, job.RequestID, job.Ticker, models.StatusProcessing, "")

	series, err := o.fetchSeries(ctx, job.Ticker, start, end)
	if err != nil {
		return o.fail(ctx, job, started, err)
	}

	outcome, err := o.engine.Run(series.Closes())
	if err != nil {
		return o.fail(ctx, job, started, err)
	}

	result := o.buildResult(job, outcome)
	if job.IncludeSentiment && o.sentiment != nil {
		sent, err := o.sentiment.Analyze(ctx, job.Ticker, start, end)
		if err != nil {
			// degraded completion: the forecast stands, sentiment is omitted
			o.metrics.RecordError("sentiment_unavailable")
			o.log.Warn("sentiment skipped",
				logger.String("request_id", job.RequestID),
				logger.Error(err))
		} else {
			result.Sentiment = sent
		}
	}

	if err := o.store.Complete(ctx, job.RequestID, result); err != nil {
		return fmt.Errorf("complete %s: %w", job.RequestID, err)
	}
	o.metrics.RecordJobFinished(string(models.StatusCompleted), time.Since(started).Seconds())
	o.metrics.RecordModelSelection(job.Ticker, outcome.ChosenEpoch, outcome.MAPE)
	o.publishEvent(ctx, job.RequestID, job.Ticker, models.StatusCompleted, "")
	o.log.Info("forecast completed",
		logger.String("request_id", job.RequestID),
		logger.String("ticker", job.Ticker),
		logger.Int("epoch", outcome.ChosenEpoch),
		logger.Float64("mape", outcome.MAPE),
		logger.Duration("took", time.Since(started)))
	return nil
}

// fetchSeries reads closes through the archive when one is configured,
// falling back to the live provider and archiving what it fetched.
func (o *Orchestrator) fetchSeries(ctx context.Context, ticker string, from, to time.Time) (models.PriceSeries, error) {
	if o.archive != nil {
		series, err := o.archive.Load(ctx, ticker, from, to)
		if err != nil {
			o.log.Warn("archive read failed", logger.String("ticker", ticker), logger.Error(err))
		} else if len(series) >= o.cfg.MinHistory && series.Sorted() {
			o.log.Debug("serving closes from archive",
				logger.String("ticker", ticker),
				logger.Int("closes", len(series)))
			return series, nil
		}
	}

	series, err := o.prices.DailyCloses(ctx, ticker, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch closes: %w", err)
	}
	// the pipeline assumes strictly increasing dates
	if !series.Sorted() {
		return nil, fmt.Errorf("closes for %s are not in date order", ticker)
	}
	if o.archive != nil {
		if err := o.archive.Store(ctx, ticker, series); err != nil {
			o.log.Warn("archive write failed", logger.String("ticker", ticker), logger.Error(err))
		}
	}
	return series, nil
}

func (o *Orchestrator) buildResult(job *models.Job, out *forecast.Outcome) *models.ForecastResult {
	final := out.ForecastPrices[len(out.ForecastPrices)-1]
	change := 0.0
	if out.CurrentPrice != 0 {
		change = (final - out.CurrentPrice) / out.CurrentPrice * 100
	}
	return &models.ForecastResult{
		Ticker: job.Ticker,
		DateRange: models.DateRange{
			Start: job.StartDate,
			End:   job.EndDate,
		},
		Prediction: models.Prediction{
			PredictedPrice20D:  util.Round2(final),
			CurrentPrice:       util.Round2(out.CurrentPrice),
			PredictedChange20D: util.Round2(change),
		},
		ModelPerformance: models.ModelPerformance{
			MAPE: util.Round2(out.MAPE),
		},
		ForecastTimeline: models.ForecastTimeline{
			HistoricalDays: out.HistoricalDays,
			ForecastDays:   len(out.ForecastPrices),
			TotalDays:      out.HistoricalDays + len(out.ForecastPrices),
		},
	}
}

func (o *Orchestrator) fail(ctx context.Context, job *models.Job, started time.Time, cause error) error {
	if err := o.store.Fail(ctx, job.RequestID, cause.Error()); err != nil {
		if errors.Is(err, models.ErrTerminalJob) {
			return nil
		}
		return fmt.Errorf("fail %s: %w", job.RequestID, err)
	}
	kind := "pipeline"
	switch {
	case models.IsValidation(cause):
		kind = "validation"
	case errors.Is(cause, models.ErrTrainingDiverged):
		kind = "training_failure"
	}
	o.metrics.RecordError(kind)
	o.metrics.RecordJobFinished(string(models.StatusFailed), time.Since(started).Seconds())
	o.publishEvent(ctx, job.RequestID, job.Ticker, models.StatusFailed, cause.Error())
	o.log.Error("forecast failed",
		logger.String("request_id", job.RequestID),
		logger.String("ticker", job.Ticker),
		logger.Error(cause))
	return nil
}

func (o *Orchestrator) publishEvent(ctx context.Context, requestID, ticker string, status models.JobStatus, reason string) {
	event := &models.JobEvent{
		RequestID: requestID,
		Ticker:    ticker,
		Status:    status,
		Error:     reason,
		At:        time.Now().UTC(),
	}
	if err := o.events.PublishJobEvent(ctx, event); err != nil {
		o.log.Warn("event publish failed",
			logger.String("request_id", requestID),
			logger.Error(err))
	}
}
