package models

import "time"

// Section is one per-ticker block of an assembled report. A section
// either carries a quote (plus optional news and summary) or a failure
// kind in Err; failed sections render as placeholders instead of
// aborting the report.
type Section struct {
	Ticker  string     `json:"ticker"`
	Name    string     `json:"name,omitempty"`
	Quote   *Quote     `json:"quote,omitempty"`
	News    []NewsItem `json:"news,omitempty"`
	Summary string     `json:"summary,omitempty"`
	Err     string     `json:"error,omitempty"`
}

// Failed reports whether the section is a failure placeholder.
func (s *Section) Failed() bool {
	return s.Err != ""
}

// Report is the composed output for one watchlist. Reports are
// assembled fresh on every request and never persisted; the data is
// only as current as the moment it was fetched.
type Report struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	Sections    []Section `json:"sections"`
	Text        string    `json:"text"`
}
