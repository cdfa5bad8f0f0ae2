package models

// SubmitForecastRequest is the body of POST /api/predict.
type SubmitForecastRequest struct {
	Ticker           string `json:"ticker" validate:"required,alphanum,max=10"`
	StartDate        string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate          string `json:"end_date" validate:"required,datetime=2006-01-02"`
	IncludeSentiment *bool  `json:"include_sentiment" default:"true"`
}

// WantSentiment resolves the optional flag, defaulting to true.
func (r *SubmitForecastRequest) WantSentiment() bool {
	if r.IncludeSentiment == nil {
		return true
	}
	return *r.IncludeSentiment
}

// SubmitForecastResponse acknowledges an accepted forecast request.
type SubmitForecastResponse struct {
	RequestID string    `json:"request_id"`
	Status    JobStatus `json:"status"`
	Message   string    `json:"message"`
}

// JobStatusResponse is the body of GET /api/status/:request_id.
type JobStatusResponse struct {
	RequestID string          `json:"request_id"`
	Ticker    string          `json:"ticker"`
	Status    JobStatus       `json:"status"`
	Result    *ForecastResult `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}
