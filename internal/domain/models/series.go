package models

import "time"

// PricePoint is one daily close.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is a chronologically ordered run of daily closes.
type PriceSeries []PricePoint

// Closes extracts the close values in series order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Close
	}
	return out
}

// Sorted reports whether the series is strictly increasing in date.
func (s PriceSeries) Sorted() bool {
	for i := 1; i < len(s); i++ {
		if !s[i-1].Date.Before(s[i].Date) {
			return false
		}
	}
	return true
}

// NewsItem is one raw headline from a news provider.
type NewsItem struct {
	Datetime time.Time `json:"datetime"`
	Headline string    `json:"headline"`
	Source   string    `json:"source,omitempty"`
	URL      string    `json:"url,omitempty"`
}
