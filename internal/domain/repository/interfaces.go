package repository

import (
	"context"
	"time"

	"StockCast/internal/domain/models"
)

// JobStore persists forecast jobs and enforces the monotonic lifecycle.
// Implementations must reject transitions out of a terminal status and
// duplicate creation of a request id.
type JobStore interface {
	Create(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, requestID string) (*models.Job, error)
	MarkProcessing(ctx context.Context, requestID string) error
	Complete(ctx context.Context, requestID string, result *models.ForecastResult) error
	Fail(ctx context.Context, requestID string, reason string) error
}

// PriceProvider fetches daily closes for a ticker over an inclusive
// date range, ordered by date ascending.
type PriceProvider interface {
	DailyCloses(ctx context.Context, ticker string, from, to time.Time) (models.PriceSeries, error)
}

// NewsProvider fetches company headlines for a ticker over a date range.
type NewsProvider interface {
	CompanyNews(ctx context.Context, ticker string, from, to time.Time) ([]models.NewsItem, error)
}

// CandleArchive is a durable read-through store of fetched daily closes.
type CandleArchive interface {
	Store(ctx context.Context, ticker string, series models.PriceSeries) error
	Load(ctx context.Context, ticker string, from, to time.Time) (models.PriceSeries, error)
}

// EventPublisher broadcasts job lifecycle transitions.
type EventPublisher interface {
	PublishJobEvent(ctx context.Context, event *models.JobEvent) error
	Close() error
}

// Metrics records service-level counters and gauges.
type Metrics interface {
	RecordJobSubmitted(ticker string)
	RecordJobFinished(status string, seconds float64)
	RecordError(kind string)
	RecordModelSelection(ticker string, epoch int, mape float64)
}
