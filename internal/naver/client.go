// Package naver provides clients for Naver Finance's public quote and
// news endpoints.
package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/ssehuun/telegram-news-bot/internal/models"
)

const (
	// API endpoints
	PollingAPIBase = "https://polling.finance.naver.com"
	MobileAPIBase  = "https://m.stock.naver.com"

	// Naver rejects requests without a browser user agent.
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// Client provides access to the Naver Finance quote and news APIs.
type Client struct {
	polling *resty.Client
	mobile  *resty.Client
}

// Config holds the configuration for the Naver client. Zero values
// fall back to the production endpoints and a 10s timeout.
type Config struct {
	PollingBaseURL string
	MobileBaseURL  string
	Timeout        time.Duration
}

// NewClient creates a new Naver Finance client.
func NewClient(cfg Config) *Client {
	if cfg.PollingBaseURL == "" {
		cfg.PollingBaseURL = PollingAPIBase
	}
	if cfg.MobileBaseURL == "" {
		cfg.MobileBaseURL = MobileAPIBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		polling: resty.New().
			SetBaseURL(cfg.PollingBaseURL).
			SetTimeout(cfg.Timeout).
			SetRetryCount(2).
			SetRetryWaitTime(500 * time.Millisecond).
			SetHeader("User-Agent", userAgent),
		mobile: resty.New().
			SetBaseURL(cfg.MobileBaseURL).
			SetTimeout(cfg.Timeout).
			SetRetryCount(2).
			SetRetryWaitTime(500 * time.Millisecond).
			SetHeader("User-Agent", userAgent).
			SetHeader("Referer", "https://m.stock.naver.com/"),
	}
}

// priceResponse mirrors the polling API payload. Numbers arrive as
// comma-grouped strings.
type priceResponse struct {
	Datas []priceData `json:"datas"`
}

type priceData struct {
	ItemCode                    string `json:"itemCode"`
	StockName                   string `json:"stockName"`
	ClosePrice                  string `json:"closePrice"`
	CompareToPreviousClosePrice string `json:"compareToPreviousClosePrice"`
	FluctuationsRatio           string `json:"fluctuationsRatio"`
	MarketStatus                string `json:"marketStatus"`
}

// GetQuote fetches the current price snapshot for one ticker.
func (c *Client) GetQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	resp, err := c.polling.R().
		SetContext(ctx).
		Get("/api/realtime/domestic/stock/" + ticker)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote: %w", err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("quote API returned %d: %s", resp.StatusCode(), resp.String())
	}

	var parsed priceResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse quote: %w", err)
	}
	if len(parsed.Datas) == 0 {
		return nil, fmt.Errorf("no quote data for %s", ticker)
	}

	d := parsed.Datas[0]
	closePrice, err := parsePrice(d.ClosePrice)
	if err != nil {
		return nil, fmt.Errorf("bad close price %q: %w", d.ClosePrice, err)
	}
	change, _ := parsePrice(d.CompareToPreviousClosePrice)
	rate, _ := strconv.ParseFloat(strings.ReplaceAll(d.FluctuationsRatio, ",", ""), 64)

	code := d.ItemCode
	if code == "" {
		code = ticker
	}

	log.Debug().
		Str("ticker", code).
		Int64("close", closePrice).
		Float64("rate", rate).
		Msg("Fetched quote")

	return &models.Quote{
		Ticker:       code,
		Name:         d.StockName,
		Close:        closePrice,
		Change:       change,
		ChangeRate:   rate,
		MarketStatus: d.MarketStatus,
		FetchedAt:    time.Now(),
	}, nil
}

// newsCluster mirrors one entry of the stock news feed; each cluster
// groups related coverage and its first item is the lead article.
type newsCluster struct {
	Items []newsArticle `json:"items"`
}

type newsArticle struct {
	Title     string `json:"title"`
	OfficeID  string `json:"officeId"`
	ArticleID string `json:"articleId"`
}

// GetNews fetches up to limit recent news headlines for one ticker.
// Tickers with no coverage return an empty slice, not an error.
func (c *Client) GetNews(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error) {
	if limit <= 0 {
		limit = 1
	}

	resp, err := c.mobile.R().
		SetContext(ctx).
		SetQueryParam("pageSize", strconv.Itoa(limit)).
		SetQueryParam("page", "1").
		Get("/api/news/stock/" + ticker)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch news: %w", err)
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("news API returned %d: %s", resp.StatusCode(), resp.String())
	}

	var clusters []newsCluster
	if err := json.Unmarshal(resp.Body(), &clusters); err != nil {
		return nil, fmt.Errorf("failed to parse news: %w", err)
	}

	items := make([]models.NewsItem, 0, limit)
	for _, cl := range clusters {
		if len(cl.Items) == 0 {
			continue
		}
		a := cl.Items[0]
		if a.Title == "" || a.OfficeID == "" || a.ArticleID == "" {
			continue
		}
		items = append(items, models.NewsItem{
			Title: html.UnescapeString(strings.TrimSpace(a.Title)),
			URL:   fmt.Sprintf("https://n.news.naver.com/article/%s/%s", a.OfficeID, a.ArticleID),
		})
		if len(items) >= limit {
			break
		}
	}

	log.Debug().
		Str("ticker", ticker).
		Int("count", len(items)).
		Msg("Fetched news")

	return items, nil
}

// parsePrice converts a comma-grouped price string to whole won.
func parsePrice(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
