package naver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const quoteFixture = `{
	"datas": [{
		"itemCode": "005930",
		"stockName": "삼성전자",
		"closePrice": "71,200",
		"compareToPreviousClosePrice": "-800",
		"fluctuationsRatio": "-1.11",
		"marketStatus": "CLOSE"
	}]
}`

const newsFixture = `[
	{"items": [
		{"title": "삼성전자 &quot;HBM4&quot; 양산 임박", "officeId": "001", "articleId": "0015000000"},
		{"title": "같은 클러스터의 후속 기사", "officeId": "001", "articleId": "0015000001"}
	]},
	{"items": []},
	{"items": [
		{"title": "외국인 순매수 전환", "officeId": "009", "articleId": "0005400000"}
	]}
]`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{PollingBaseURL: srv.URL, MobileBaseURL: srv.URL})
}

func TestGetQuote(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/realtime/domestic/stock/005930", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(quoteFixture))
	})
	c := newTestClient(t, mux)

	quote, err := c.GetQuote(context.Background(), "005930")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if quote.Ticker != "005930" {
		t.Errorf("expected ticker 005930, got %s", quote.Ticker)
	}
	if quote.Name != "삼성전자" {
		t.Errorf("expected name 삼성전자, got %s", quote.Name)
	}
	if quote.Close != 71200 {
		t.Errorf("expected close 71200, got %d", quote.Close)
	}
	if quote.Change != -800 {
		t.Errorf("expected change -800, got %d", quote.Change)
	}
	if quote.ChangeRate != -1.11 {
		t.Errorf("expected rate -1.11, got %f", quote.ChangeRate)
	}
	if quote.MarketStatus != "CLOSE" {
		t.Errorf("expected market status CLOSE, got %s", quote.MarketStatus)
	}
	if quote.FetchedAt.IsZero() {
		t.Error("expected FetchedAt to be set")
	}
}

func TestGetQuoteNoData(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"datas": []}`))
	})
	c := newTestClient(t, mux)

	if _, err := c.GetQuote(context.Background(), "999999"); err == nil {
		t.Error("expected error for empty quote payload")
	}
}

func TestGetQuoteHTTPError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})
	c := newTestClient(t, mux)

	if _, err := c.GetQuote(context.Background(), "005930"); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestGetNews(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/news/stock/005930", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("pageSize"); got != "2" {
			t.Errorf("expected pageSize=2, got %s", got)
		}
		w.Write([]byte(newsFixture))
	})
	c := newTestClient(t, mux)

	news, err := c.GetNews(context.Background(), "005930", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(news) != 2 {
		t.Fatalf("expected 2 items, got %d", len(news))
	}

	// Lead article per cluster, entities unescaped, article URL built
	// from office and article ids.
	if news[0].Title != `삼성전자 "HBM4" 양산 임박` {
		t.Errorf("unexpected first title: %s", news[0].Title)
	}
	if news[0].URL != "https://n.news.naver.com/article/001/0015000000" {
		t.Errorf("unexpected first URL: %s", news[0].URL)
	}
	if news[1].Title != "외국인 순매수 전환" {
		t.Errorf("unexpected second title: %s", news[1].Title)
	}
}

func TestGetNewsLimit(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(newsFixture))
	})
	c := newTestClient(t, mux)

	news, err := c.GetNews(context.Background(), "005930", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(news) != 1 {
		t.Errorf("expected 1 item, got %d", len(news))
	}
}

func TestGetNewsNoCoverage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	c := newTestClient(t, mux)

	news, err := c.GetNews(context.Background(), "999999", 3)
	if err != nil {
		t.Fatalf("expected no error for empty coverage, got %v", err)
	}
	if len(news) != 0 {
		t.Errorf("expected no items, got %d", len(news))
	}
}

func TestGetNewsSkipsIncomplete(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"items": [{"title": "링크 없는 기사", "officeId": "", "articleId": ""}]},
			{"items": [{"title": "정상 기사", "officeId": "001", "articleId": "0001"}]}
		]`))
	})
	c := newTestClient(t, mux)

	news, err := c.GetNews(context.Background(), "005930", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(news) != 1 {
		t.Fatalf("expected 1 item, got %d", len(news))
	}
	if news[0].Title != "정상 기사" {
		t.Errorf("unexpected title: %s", news[0].Title)
	}
}

func TestGetNewsHTTPError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	c := newTestClient(t, mux)

	if _, err := c.GetNews(context.Background(), "005930", 1); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"71,200", 71200, false},
		{"1,234,567", 1234567, false},
		{"-800", -800, false},
		{"0", 0, false},
		{"", 0, false},
		{" 500 ", 500, false},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parsePrice(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
