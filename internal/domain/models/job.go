package models

import "time"

// JobStatus is the lifecycle state of a forecast job.
type JobStatus string

const (
	StatusPending    JobStatus = "PENDING"
	StatusProcessing JobStatus = "PROCESSING"
	StatusCompleted  JobStatus = "COMPLETED"
	StatusFailed     JobStatus = "FAILED"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether moving from s to next preserves the
// monotonic lifecycle: PENDING -> PROCESSING -> {COMPLETED|FAILED},
// with PENDING -> FAILED allowed for requests that fail validation
// before any work starts.
func (s JobStatus) CanTransition(next JobStatus) bool {
	if s.Terminal() {
		return false
	}
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusFailed
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	}
	return false
}

// Job is the stored record of a forecast request.
type Job struct {
	RequestID        string          `json:"request_id"`
	Ticker           string          `json:"ticker"`
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date"`
	IncludeSentiment bool            `json:"include_sentiment"`
	Status           JobStatus       `json:"status"`
	Result           *ForecastResult `json:"result,omitempty"`
	Error            string          `json:"error,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (j *Job) Clone() *Job {
	cp := *j
	if j.Result != nil {
		r := *j.Result
		if j.Result.Sentiment != nil {
			s := *j.Result.Sentiment
			s.NewsHeadlines = append([]HeadlineScore(nil), j.Result.Sentiment.NewsHeadlines...)
			r.Sentiment = &s
		}
		cp.Result = &r
	}
	return &cp
}

// JobEvent is published on every lifecycle transition.
type JobEvent struct {
	RequestID string    `json:"request_id"`
	Ticker    string    `json:"ticker"`
	Status    JobStatus `json:"status"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

// DateRange is the inclusive historical window the forecast was built on.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Prediction holds the forward-looking numbers of a completed forecast.
type Prediction struct {
	PredictedPrice20D  float64 `json:"predicted_price_20d"`
	CurrentPrice       float64 `json:"current_price"`
	PredictedChange20D float64 `json:"predicted_change_20d"`
}

// ModelPerformance reports backtest quality of the selected model.
type ModelPerformance struct {
	MAPE float64 `json:"mape"`
}

// HeadlineScore is one scored news headline.
type HeadlineScore struct {
	Datetime  string  `json:"datetime"`
	Headline  string  `json:"headline"`
	Sentiment float64 `json:"sentiment"`
}

// Sentiment is the optional news sentiment section of a result.
type Sentiment struct {
	AverageSentiment float64         `json:"average_sentiment"`
	NewsHeadlines    []HeadlineScore `json:"news_headlines"`
}

// ForecastTimeline describes the span of history and forecast in days.
type ForecastTimeline struct {
	HistoricalDays int `json:"historical_days"`
	ForecastDays   int `json:"forecast_days"`
	TotalDays      int `json:"total_days"`
}

// ForecastResult is the payload of a COMPLETED job.
type ForecastResult struct {
	Ticker           string           `json:"ticker"`
	DateRange        DateRange        `json:"date_range"`
	Prediction       Prediction       `json:"prediction"`
	ModelPerformance ModelPerformance `json:"model_performance"`
	Sentiment        *Sentiment       `json:"sentiment,omitempty"`
	ForecastTimeline ForecastTimeline `json:"forecast_timeline"`
}
