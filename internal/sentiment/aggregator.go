package sentiment

import (
	"context"
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	"StockCast/internal/domain/repository"
	"StockCast/pkg/logger"
	"StockCast/pkg/util"
)

// Aggregator scores recent company headlines and averages them.
// Failures here never fail a forecast job, callers degrade by
// omitting the sentiment section.
type Aggregator struct {
	news   repository.NewsProvider
	scorer *Scorer
	limit  int
	log    *logger.Logger
}

func NewAggregator(news repository.NewsProvider, limit int, log *logger.Logger) *Aggregator {
	return &Aggregator{
		news:   news,
		scorer: NewScorer(),
		limit:  limit,
		log:    log,
	}
}

// Analyze fetches headlines for the range, scores each, and averages
// the non-zero scores. Headlines with no recognized sentiment words do
// not dilute the average. The returned section carries at most the
// configured number of headlines.
func (a *Aggregator) Analyze(ctx context.Context, ticker string, from, to time.Time) (*models.Sentiment, error) {
	items, err := a.news.CompanyNews(ctx, ticker, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSentimentUnavailable, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no headlines for %s", models.ErrSentimentUnavailable, ticker)
	}

	sum := 0.0
	scored := 0
	headlines := make([]models.HeadlineScore, 0, a.limit)
	for _, item := range items {
		s := a.scorer.Score(item.Headline)
		if s != 0 {
			sum += s
			scored++
		}
		if len(headlines) < a.limit {
			headlines = append(headlines, models.HeadlineScore{
				Datetime:  item.Datetime.Format(util.ISODate),
				Headline:  item.Headline,
				Sentiment: util.Round2(s),
			})
		}
	}

	avg := 0.0
	if scored > 0 {
		avg = sum / float64(scored)
	}
	a.log.Debug("sentiment aggregated",
		logger.String("ticker", ticker),
		logger.Int("headlines", len(items)),
		logger.Int("scored", scored),
		logger.Float64("average", avg))

	return &models.Sentiment{
		AverageSentiment: util.Round2(avg),
		NewsHeadlines:    headlines,
	}, nil
}
