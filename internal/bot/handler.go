// Package bot implements the Telegram transport: command handlers and
// the long-polling update loop.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ssehuun/telegram-news-bot/internal/models"
	"github.com/ssehuun/telegram-news-bot/internal/report"
	"github.com/ssehuun/telegram-news-bot/internal/resolver"
	"github.com/ssehuun/telegram-news-bot/internal/watchlist"
)

// Reply wording. User input and summaries may contain markup-ish
// fragments, so replies are sent as plain text.
const (
	replyAddUsage    = "사용법: /add 005930 또는 /add 삼성전자"
	replyRemoveUsage = "사용법: /remove 005930 또는 /remove 삼성전자"

	replyNameSearchOff = "⚠️ 종목명 검색을 사용할 수 없습니다. 티커 코드로 입력해 주세요. (예: /add 005930)"
	replyStorageError  = "⚠️ 저장소 오류로 요청을 처리하지 못했습니다. 잠시 후 다시 시도해 주세요."
	replyReportError   = "⚠️ 리포트 생성에 실패했습니다. 잠시 후 다시 시도해 주세요."

	replyEmptyList   = "📭 관심 목록이 비어 있습니다."
	replyEmptyReport = "📭 관심 목록이 비어 있습니다. /add 로 종목을 먼저 등록해 주세요."

	replyHelp = `📖 사용 가능한 명령어

/add <티커|종목명> - 관심 종목 추가
/remove <티커|종목명> - 관심 종목 제거
/list - 관심 목록 보기
/report - 관심 종목 시황 리포트
/help - 도움말`
)

// ReportBuilder assembles a report for a resolved ticker set.
type ReportBuilder interface {
	Build(ctx context.Context, tickers []string) (*models.Report, error)
}

// NameLookup resolves tickers to display names for listings.
type NameLookup interface {
	NameOf(ticker string) (string, bool)
}

// Handler turns parsed chat commands into user-displayable replies.
// Domain errors (unknown symbol, full list, empty watchlist) are
// rendered here; storage failures additionally propagate so the caller
// knows the mutation did not take effect.
type Handler struct {
	store    watchlist.Store
	resolver *resolver.Resolver
	reports  ReportBuilder
	names    NameLookup
	maxSize  int
}

// NewHandler creates the command handler core.
func NewHandler(store watchlist.Store, res *resolver.Resolver, reports ReportBuilder, names NameLookup, maxSize int) *Handler {
	return &Handler{
		store:    store,
		resolver: res,
		reports:  reports,
		names:    names,
		maxSize:  maxSize,
	}
}

// HandleAdd resolves the argument and adds it to the chat's watchlist.
func (h *Handler) HandleAdd(ctx context.Context, chatID int64, rawArg string) (string, error) {
	ticker, reply := h.resolveArg(rawArg, replyAddUsage)
	if reply != "" {
		return reply, nil
	}

	added, err := h.store.Add(ctx, chatID, ticker)
	if errors.Is(err, watchlist.ErrWatchlistFull) {
		return fmt.Sprintf("⚠️ 관심 목록이 가득 찼습니다. (최대 %d개)", h.maxSize), nil
	}
	if err != nil {
		return replyStorageError, fmt.Errorf("add %s for chat %d: %w", ticker, chatID, err)
	}
	if !added {
		return fmt.Sprintf("⚠️ %s 종목은 이미 등록되어 있습니다.", ticker), nil
	}
	return fmt.Sprintf("✅ %s 종목이 관심 목록에 추가되었습니다.", ticker), nil
}

// HandleRemove resolves the argument and removes it from the chat's
// watchlist.
func (h *Handler) HandleRemove(ctx context.Context, chatID int64, rawArg string) (string, error) {
	ticker, reply := h.resolveArg(rawArg, replyRemoveUsage)
	if reply != "" {
		return reply, nil
	}

	removed, err := h.store.Remove(ctx, chatID, ticker)
	if err != nil {
		return replyStorageError, fmt.Errorf("remove %s for chat %d: %w", ticker, chatID, err)
	}
	if !removed {
		return fmt.Sprintf("⚠️ %s 종목은 목록에 없습니다.", ticker), nil
	}
	return fmt.Sprintf("🗑️ %s 종목이 관심 목록에서 제거되었습니다.", ticker), nil
}

// HandleList renders the chat's watchlist with display names where the
// listing knows them.
func (h *Handler) HandleList(ctx context.Context, chatID int64) (string, error) {
	tickers, err := h.store.List(ctx, chatID)
	if err != nil {
		return replyStorageError, fmt.Errorf("list for chat %d: %w", chatID, err)
	}
	if len(tickers) == 0 {
		return replyEmptyList, nil
	}

	var b strings.Builder
	b.WriteString("📌 현재 관심 종목:")
	for _, t := range tickers {
		if name, ok := h.names.NameOf(t); ok {
			fmt.Fprintf(&b, "\n- %s (%s)", name, t)
		} else {
			fmt.Fprintf(&b, "\n- %s", t)
		}
	}
	return b.String(), nil
}

// HandleReport builds the market report for the chat's watchlist.
func (h *Handler) HandleReport(ctx context.Context, chatID int64) (string, error) {
	tickers, err := h.store.List(ctx, chatID)
	if err != nil {
		return replyStorageError, fmt.Errorf("list for chat %d: %w", chatID, err)
	}

	rep, err := h.reports.Build(ctx, tickers)
	if errors.Is(err, report.ErrEmptyWatchlist) {
		return replyEmptyReport, nil
	}
	if err != nil {
		return replyReportError, fmt.Errorf("build report for chat %d: %w", chatID, err)
	}
	return rep.Text, nil
}

// HandleHelp returns the command overview.
func (h *Handler) HandleHelp() string {
	return replyHelp
}

// resolveArg turns a raw command argument into a canonical ticker or a
// ready-to-send error reply.
func (h *Handler) resolveArg(rawArg, usage string) (ticker, reply string) {
	input := strings.TrimSpace(rawArg)
	if input == "" {
		return "", usage
	}

	ticker, err := h.resolver.Resolve(input)
	switch {
	case errors.Is(err, resolver.ErrEmptyInput):
		return "", usage
	case errors.Is(err, resolver.ErrResolutionUnavailable):
		return "", replyNameSearchOff
	case errors.Is(err, resolver.ErrUnknownSymbol):
		return "", fmt.Sprintf("❌ '%s' 종목을 찾을 수 없습니다. 티커 또는 정확한 종목명을 입력해 주세요.", input)
	case err != nil:
		return "", usage
	}
	return ticker, ""
}
