package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ssehuun/telegram-news-bot/internal/models"
)

const sectionRule = "=============================="

// kst is the report display timezone. Quotes come from the domestic
// market, so timestamps render in Seoul time wherever the bot runs.
var kst = loadKST()

func loadKST() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

// won groups prices the Korean way: 71,200.
var won = message.NewPrinter(language.Korean)

// Compose renders the report as the chat message text. Sections keep
// their assembled order; the trailing block ranks the day's strongest
// tickers.
func Compose(r *models.Report, topMovers int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 오늘의 주식 시황 (%s)\n\n", r.GeneratedAt.In(kst).Format("2006-01-02 15:04"))
	b.WriteString("🎯 관심 종목\n")
	b.WriteString(sectionRule + "\n")

	for i := range r.Sections {
		writeSection(&b, &r.Sections[i])
	}

	fmt.Fprintf(&b, "\n\n📈 관심 종목 기준 강세 TOP %d\n", topMovers)
	b.WriteString(sectionRule + "\n")
	for _, s := range rankMovers(r.Sections, topMovers) {
		fmt.Fprintf(&b, "🌟 %s (%s): %+.2f%%\n", s.Name, s.Ticker, s.Quote.ChangeRate)
	}

	return b.String()
}

func writeSection(b *strings.Builder, s *models.Section) {
	if s.Failed() {
		fmt.Fprintf(b, "\n⚠️ %s (%s): %s\n", s.Name, s.Ticker, s.Err)
		return
	}

	fmt.Fprintf(b, "\n%s %s (%s)\n", directionEmoji(s.Quote.ChangeRate), s.Name, s.Ticker)
	fmt.Fprintf(b, "종가: %s원 (%+.2f%%)\n", won.Sprintf("%d", s.Quote.Close), s.Quote.ChangeRate)

	for _, n := range s.News {
		fmt.Fprintf(b, "\n📰 뉴스: %s\n", n.Title)
		fmt.Fprintf(b, "🔗 링크: %s\n", n.URL)
	}
	if s.Summary != "" {
		fmt.Fprintf(b, "💡 요약: %s\n", s.Summary)
	}
}

func directionEmoji(changeRate float64) string {
	switch {
	case changeRate < 0:
		return "🔴"
	case changeRate > 0:
		return "🟢"
	default:
		return "⚪"
	}
}

// rankMovers returns up to n successful sections ordered by change
// rate, strongest first.
func rankMovers(sections []models.Section, n int) []*models.Section {
	movers := make([]*models.Section, 0, len(sections))
	for i := range sections {
		if !sections[i].Failed() && sections[i].Quote != nil {
			movers = append(movers, &sections[i])
		}
	}

	sort.SliceStable(movers, func(i, j int) bool {
		return movers[i].Quote.ChangeRate > movers[j].Quote.ChangeRate
	})

	if len(movers) > n {
		movers = movers[:n]
	}
	return movers
}
