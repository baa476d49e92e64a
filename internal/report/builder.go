// Package report assembles watchlist market reports from per-ticker
// quotes, news and LLM summaries.
package report

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ssehuun/telegram-news-bot/internal/models"
)

// ErrEmptyWatchlist means there are no tickers to report on. It is the
// only whole-report failure; everything else degrades per ticker.
var ErrEmptyWatchlist = errors.New("report: empty watchlist")

// Failure placeholder rendered when the quote fetch for a ticker fails.
const errQuoteFetch = "시세 조회 실패"

// Placeholder synopsis used when summarization fails.
const summaryUnavailable = "요약을 생성할 수 없습니다."

// QuoteFetcher fetches a price snapshot for one ticker.
type QuoteFetcher interface {
	GetQuote(ctx context.Context, ticker string) (*models.Quote, error)
}

// NewsFetcher fetches recent news headlines for one ticker.
type NewsFetcher interface {
	GetNews(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error)
}

// Summarizer produces a short synopsis of news items for one stock.
type Summarizer interface {
	Summarize(ctx context.Context, stockName string, news []models.NewsItem) (string, error)
}

// NameLookup resolves a ticker to its listed display name.
type NameLookup interface {
	NameOf(ticker string) (string, bool)
}

// Options tune report assembly.
type Options struct {
	// Concurrency bounds the per-ticker fan-out.
	Concurrency int

	// FetchTimeout is the budget for one ticker's fetch+summarize.
	FetchTimeout time.Duration

	// NewsPerStock caps headlines per ticker.
	NewsPerStock int

	// TopMovers is the length of the trailing gainers block.
	TopMovers int
}

// Builder assembles reports. The summarizer is optional; without one,
// sections carry news headlines but no synopsis.
type Builder struct {
	quotes     QuoteFetcher
	news       NewsFetcher
	summarizer Summarizer
	names      NameLookup
	opts       Options
}

// NewBuilder creates a report builder.
func NewBuilder(quotes QuoteFetcher, news NewsFetcher, summarizer Summarizer, names NameLookup, opts Options) *Builder {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}
	if opts.NewsPerStock <= 0 {
		opts.NewsPerStock = 1
	}
	if opts.TopMovers <= 0 {
		opts.TopMovers = 3
	}

	return &Builder{
		quotes:     quotes,
		news:       news,
		summarizer: summarizer,
		names:      names,
		opts:       opts,
	}
}

// Build assembles one report for the given tickers. Sections keep the
// input order. A failed ticker becomes a placeholder section; Build
// itself fails only on an empty ticker set. The watchlist is never
// mutated here.
func (b *Builder) Build(ctx context.Context, tickers []string) (*models.Report, error) {
	if len(tickers) == 0 {
		return nil, ErrEmptyWatchlist
	}

	reportID := uuid.New().String()
	start := time.Now()

	log.Info().
		Str("report_id", reportID).
		Int("tickers", len(tickers)).
		Msg("Building report")

	sections := make([]models.Section, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Concurrency)
	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			sections[i] = b.buildSection(gctx, reportID, ticker)
			return nil
		})
	}
	// Per-ticker failures never surface as group errors.
	_ = g.Wait()

	report := &models.Report{
		ID:          reportID,
		GeneratedAt: time.Now(),
		Sections:    sections,
	}
	report.Text = Compose(report, b.opts.TopMovers)

	failed := 0
	for i := range sections {
		if sections[i].Failed() {
			failed++
		}
	}

	log.Info().
		Str("report_id", reportID).
		Int("sections", len(sections)).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("Report assembled")

	return report, nil
}

// buildSection gathers quote, news and synopsis for one ticker. Every
// provider call shares the per-ticker deadline; a failed quote turns
// the section into a placeholder, a failed news fetch or summary only
// degrades it.
func (b *Builder) buildSection(ctx context.Context, reportID, ticker string) models.Section {
	tctx, cancel := context.WithTimeout(ctx, b.opts.FetchTimeout)
	defer cancel()

	name := b.displayName(ticker)

	quote, err := b.quotes.GetQuote(tctx, ticker)
	if err != nil {
		log.Warn().
			Str("report_id", reportID).
			Str("ticker", ticker).
			Err(err).
			Msg("Quote fetch failed")
		return models.Section{Ticker: ticker, Name: name, Err: errQuoteFetch}
	}
	if quote.Name != "" {
		name = quote.Name
	}

	section := models.Section{Ticker: ticker, Name: name, Quote: quote}

	news, err := b.news.GetNews(tctx, ticker, b.opts.NewsPerStock)
	if err != nil {
		log.Warn().
			Str("report_id", reportID).
			Str("ticker", ticker).
			Err(err).
			Msg("News fetch failed")
		return section
	}
	section.News = news

	// The summarizer is never invoked with empty input.
	if b.summarizer == nil || len(news) == 0 {
		return section
	}

	summary, err := b.summarizer.Summarize(tctx, name, news)
	if err != nil {
		log.Warn().
			Str("report_id", reportID).
			Str("ticker", ticker).
			Err(err).
			Msg("Summarization failed")
		section.Summary = summaryUnavailable
		return section
	}
	section.Summary = summary

	return section
}

func (b *Builder) displayName(ticker string) string {
	if b.names != nil {
		if name, ok := b.names.NameOf(ticker); ok {
			return name
		}
	}
	return ticker
}
