package models

import "time"

// Quote is a point-in-time price snapshot for a single ticker.
// Domestic prices are quoted in whole won.
type Quote struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name,omitempty"`

	// Price data
	Close      int64   `json:"close"`       // last traded price
	Change     int64   `json:"change"`      // won change vs previous close
	ChangeRate float64 `json:"change_rate"` // percent change vs previous close

	// Market state as reported by the provider, e.g. OPEN, CLOSE.
	MarketStatus string `json:"market_status,omitempty"`

	FetchedAt time.Time `json:"fetched_at"`
}

// NewsItem is one news article reference attached to a ticker section.
type NewsItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}
