package report

import (
	"strings"
	"testing"
	"time"

	"github.com/ssehuun/telegram-news-bot/internal/models"
)

func sampleReport() *models.Report {
	return &models.Report{
		ID:          "test-report",
		GeneratedAt: time.Date(2025, 3, 14, 15, 30, 0, 0, kst),
		Sections: []models.Section{
			{
				Ticker: "005930",
				Name:   "삼성전자",
				Quote:  &models.Quote{Ticker: "005930", Close: 71200, Change: -800, ChangeRate: -1.11},
				News: []models.NewsItem{
					{Title: "HBM4 양산 임박", URL: "https://n.news.naver.com/article/001/0015000000"},
				},
				Summary: "반도체 업황 개선 기대가 유효합니다.",
			},
			{
				Ticker: "035420",
				Name:   "NAVER",
				Quote:  &models.Quote{Ticker: "035420", Close: 185000, Change: 4500, ChangeRate: 2.49},
			},
			{
				Ticker: "999999",
				Name:   "999999",
				Err:    "시세 조회 실패",
			},
			{
				Ticker: "035720",
				Name:   "카카오",
				Quote:  &models.Quote{Ticker: "035720", Close: 41550, Change: 0, ChangeRate: 0},
			},
		},
	}
}

func TestCompose(t *testing.T) {
	text := Compose(sampleReport(), 3)

	wantFragments := []string{
		"📊 오늘의 주식 시황 (2025-03-14 15:30)",
		"🎯 관심 종목\n==============================",
		"🔴 삼성전자 (005930)\n종가: 71,200원 (-1.11%)",
		"📰 뉴스: HBM4 양산 임박",
		"🔗 링크: https://n.news.naver.com/article/001/0015000000",
		"💡 요약: 반도체 업황 개선 기대가 유효합니다.",
		"🟢 NAVER (035420)\n종가: 185,000원 (+2.49%)",
		"⚠️ 999999 (999999): 시세 조회 실패",
		"⚪ 카카오 (035720)\n종가: 41,550원 (+0.00%)",
		"📈 관심 종목 기준 강세 TOP 3\n==============================",
	}

	for _, want := range wantFragments {
		if !strings.Contains(text, want) {
			t.Errorf("composed text missing %q\n---\n%s", want, text)
		}
	}
}

func TestComposeTopMoversOrder(t *testing.T) {
	text := Compose(sampleReport(), 3)

	// Strongest first; the failed section never ranks.
	naver := strings.Index(text, "🌟 NAVER (035420): +2.49%")
	kakao := strings.Index(text, "🌟 카카오 (035720): +0.00%")
	samsung := strings.Index(text, "🌟 삼성전자 (005930): -1.11%")

	if naver < 0 || kakao < 0 || samsung < 0 {
		t.Fatalf("missing top-mover lines:\n%s", text)
	}
	if !(naver < kakao && kakao < samsung) {
		t.Errorf("expected order NAVER < 카카오 < 삼성전자, got %d %d %d", naver, kakao, samsung)
	}
	if strings.Contains(text, "🌟 999999") {
		t.Error("failed section must not appear as a mover")
	}
}

func TestComposeTopMoversTruncated(t *testing.T) {
	text := Compose(sampleReport(), 2)

	if count := strings.Count(text, "🌟"); count != 2 {
		t.Errorf("expected 2 mover lines, got %d", count)
	}
	if strings.Contains(text, "🌟 삼성전자") {
		t.Error("weakest mover should be cut at 2")
	}
}

func TestRankMovers(t *testing.T) {
	sections := sampleReport().Sections

	movers := rankMovers(sections, 10)
	if len(movers) != 3 {
		t.Fatalf("expected 3 rankable sections, got %d", len(movers))
	}
	if movers[0].Ticker != "035420" {
		t.Errorf("expected 035420 first, got %s", movers[0].Ticker)
	}
	if movers[2].Ticker != "005930" {
		t.Errorf("expected 005930 last, got %s", movers[2].Ticker)
	}
}

func TestDirectionEmoji(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{-3.2, "🔴"},
		{0.01, "🟢"},
		{0, "⚪"},
	}

	for _, tt := range tests {
		if got := directionEmoji(tt.rate); got != tt.want {
			t.Errorf("directionEmoji(%f) = %s, want %s", tt.rate, got, tt.want)
		}
	}
}
