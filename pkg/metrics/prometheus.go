package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	jobsSubmitted *prometheus.CounterVec
	jobsFinished  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
	chosenEpoch   *prometheus.GaugeVec
	backtestMAPE  *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		jobsSubmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_jobs_submitted_total",
				Help: "Total number of forecast jobs submitted",
			},
			[]string{"ticker"},
		),
		jobsFinished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_jobs_finished_total",
				Help: "Total number of forecast jobs reaching a terminal status",
			},
			[]string{"status"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		jobDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockcast_job_duration_seconds",
				Help:    "End-to-end processing duration of forecast jobs",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"status"},
		),
		chosenEpoch: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockcast_chosen_epoch",
				Help: "Epoch index selected by the weighted score for the last job per ticker",
			},
			[]string{"ticker"},
		),
		backtestMAPE: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockcast_backtest_mape",
				Help: "Backtest MAPE of the last completed forecast per ticker",
			},
			[]string{"ticker"},
		),
	}
}

// RecordJobSubmitted records a submitted job.
func (r *Recorder) RecordJobSubmitted(ticker string) {
	r.jobsSubmitted.WithLabelValues(ticker).Inc()
}

// RecordJobFinished records a terminal job with its processing duration.
func (r *Recorder) RecordJobFinished(status string, seconds float64) {
	r.jobsFinished.WithLabelValues(status).Inc()
	r.jobDuration.WithLabelValues(status).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordModelSelection records the chosen epoch and backtest MAPE for a ticker.
func (r *Recorder) RecordModelSelection(ticker string, epoch int, mape float64) {
	r.chosenEpoch.WithLabelValues(ticker).Set(float64(epoch))
	r.backtestMAPE.WithLabelValues(ticker).Set(mape)
}
