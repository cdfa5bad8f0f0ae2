package usecase

import (
	"context"
	"fmt"

	"StockCast/pkg/queue"
)

// ForecastJob adapts the orchestrator to the queue's job contract.
type ForecastJob struct {
	orchestrator *Orchestrator
}

func NewForecastJob(o *Orchestrator) *ForecastJob {
	return &ForecastJob{orchestrator: o}
}

func (j *ForecastJob) Name() string { return "forecast" }

func (j *ForecastJob) Type() string { return ForecastJobType }

func (j *ForecastJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[ForecastJobPayload](payload)
	if err != nil {
		return fmt.Errorf("parse forecast payload: %w", err)
	}
	return j.orchestrator.Process(ctx, p)
}
