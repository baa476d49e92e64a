package models

import "time"

// Watchlist is the durable set of ticker symbols owned by one chat.
// Tickers keep insertion order so listings and reports render the same
// way on every call.
type Watchlist struct {
	ChatID    int64     `bson:"_id" json:"chat_id"`
	Tickers   []string  `bson:"tickers" json:"tickers"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Contains reports whether the ticker is already in the set.
func (w *Watchlist) Contains(ticker string) bool {
	for _, t := range w.Tickers {
		if t == ticker {
			return true
		}
	}
	return false
}

// Add appends the ticker if absent and reports whether the set changed.
func (w *Watchlist) Add(ticker string) bool {
	if w.Contains(ticker) {
		return false
	}
	w.Tickers = append(w.Tickers, ticker)
	return true
}

// Remove deletes the ticker if present and reports whether the set changed.
func (w *Watchlist) Remove(ticker string) bool {
	for i, t := range w.Tickers {
		if t == ticker {
			w.Tickers = append(w.Tickers[:i], w.Tickers[i+1:]...)
			return true
		}
	}
	return false
}
