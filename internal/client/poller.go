package client

import (
	"context"
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/pkg/logger"
)

// PollAction is the next step after observing a job status.
type PollAction int

const (
	// ActionWait sleeps one interval, then polls again.
	ActionWait PollAction = iota
	// ActionReport stops with the terminal result in hand.
	ActionReport
	// ActionTimeout stops with the poll budget exhausted. The job may
	// still finish on the server; only the client gives up.
	ActionTimeout
)

// NextPoll decides what to do after poll number `attempt` (1-based)
// observed `status`. A terminal status always reports, even on the
// last allowed poll.
func NextPoll(attempt int, status models.JobStatus, maxPolls int) PollAction {
	if status.Terminal() {
		return ActionReport
	}
	if attempt >= maxPolls {
		return ActionTimeout
	}
	return ActionWait
}

// StatusFetcher is the read side of the client, satisfied by *Client.
type StatusFetcher interface {
	Status(ctx context.Context, requestID string) (*models.JobStatusResponse, error)
}

// Poller polls a job until it settles or the poll budget runs out.
type Poller struct {
	fetcher  StatusFetcher
	interval time.Duration
	maxPolls int
	log      *logger.Logger
}

func NewPoller(fetcher StatusFetcher, interval time.Duration, maxPolls int, log *logger.Logger) *Poller {
	return &Poller{
		fetcher:  fetcher,
		interval: interval,
		maxPolls: maxPolls,
		log:      log,
	}
}

// Wait polls the job status at the configured interval. It returns the
// terminal job record, or ErrPollTimeout once the budget is spent.
func (p *Poller) Wait(ctx context.Context, requestID string) (*models.JobStatusResponse, error) {
	for attempt := 1; ; attempt++ {
		resp, err := p.fetcher.Status(ctx, requestID)
		if err != nil {
			return nil, err
		}
		p.log.Debug("polled job",
			logger.String("request_id", requestID),
			logger.Int("attempt", attempt),
			logger.String("status", string(resp.Status)))

		switch NextPoll(attempt, resp.Status, p.maxPolls) {
		case ActionReport:
			return resp, nil
		case ActionTimeout:
			return nil, fmt.Errorf("%w: %d polls over %s",
				models.ErrPollTimeout, p.maxPolls,
				time.Duration(p.maxPolls)*p.interval)
		}

		if err := sleepCtx(ctx, p.interval); err != nil {
			return nil, err
		}
	}
}
