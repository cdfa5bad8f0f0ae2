package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"StockCast/internal/client"
	"StockCast/internal/domain/models"
	"StockCast/pkg/logger"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "service base URL")
	ticker := flag.String("ticker", "", "stock ticker, e.g. AAPL")
	startDate := flag.String("start", "", "history start date, YYYY-MM-DD")
	endDate := flag.String("end", "", "history end date, YYYY-MM-DD")
	sentiment := flag.Bool("sentiment", true, "include news sentiment")
	pollInterval := flag.Duration("poll-interval", 3*time.Second, "status poll interval")
	maxPolls := flag.Int("max-polls", 20, "status poll budget")
	flag.Parse()

	if *ticker == "" || *startDate == "" || *endDate == "" {
		flag.Usage()
		os.Exit(2)
	}

	lgr, err := logger.New(&logger.Config{Level: "info", Format: "console", Output: "stderr"})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	c := client.New(*baseURL, lgr)
	ctx := context.Background()

	resp, err := c.Submit(ctx, &models.SubmitForecastRequest{
		Ticker:           *ticker,
		StartDate:        *startDate,
		EndDate:          *endDate,
		IncludeSentiment: sentiment,
	})
	if err != nil {
		log.Fatalf("submit: %v", err)
	}
	lgr.Info("request accepted", logger.String("request_id", resp.RequestID))

	poller := client.NewPoller(c, *pollInterval, *maxPolls, lgr)
	job, err := poller.Wait(ctx, resp.RequestID)
	if err != nil {
		if errors.Is(err, models.ErrPollTimeout) {
			lgr.Warn("gave up waiting; the job may still finish",
				logger.String("request_id", resp.RequestID))
		}
		log.Fatalf("poll: %v", err)
	}

	if job.Status == models.StatusFailed {
		log.Fatalf("forecast failed: %s", job.Error)
	}

	out, err := json.MarshalIndent(job.Result, "", "  ")
	if err != nil {
		log.Fatalf("encode result: %v", err)
	}
	fmt.Println(string(out))
}
