// Package llm provides an OpenAI-backed news summarizer.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/ssehuun/telegram-news-bot/internal/models"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// Summaries are short synopses, not articles; 200 tokens covers 2-3
// Korean sentences.
const summaryMaxTokens = 200

const summarySystemPrompt = `당신은 한국 주식 투자자를 위한 금융 뉴스 요약 도우미입니다.

규칙:
- 2~3문장으로 짧게 작성합니다
- 투자 판단에 도움이 되는 핵심 포인트만 담습니다
- 과장이나 투자 권유 없이 중립적으로 서술합니다
- 한국어로만 답합니다`

// Client wraps the OpenAI SDK for chat completions.
type Client struct {
	client *openai.Client
	model  string
}

// Config holds the configuration for the summarizer client.
type Config struct {
	APIKey  string
	BaseURL string // optional OpenAI-compatible endpoint override
	Model   string
}

// NewClient creates a new summarizer client.
func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
	}
}

// ChatRequest represents a chat completion request.
type ChatRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
}

// ChatResponse represents a chat completion response.
type ChatResponse struct {
	Content      string
	FinishReason string
	TokensUsed   int
}

// Chat sends a chat completion request.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	messages := []openai.ChatCompletionMessage{}

	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserPrompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}

	log.Debug().
		Str("model", c.model).
		Int("messages", len(messages)).
		Msg("Sending chat request")

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return &ChatResponse{
		Content:      strings.TrimSpace(resp.Choices[0].Message.Content),
		FinishReason: string(resp.Choices[0].FinishReason),
		TokensUsed:   resp.Usage.TotalTokens,
	}, nil
}

// Summarize produces a short investor-view synopsis of the news items
// for one stock. It must not be called with an empty news list.
func (c *Client) Summarize(ctx context.Context, stockName string, news []models.NewsItem) (string, error) {
	if len(news) == 0 {
		return "", fmt.Errorf("no news to summarize")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "종목명과 뉴스를 바탕으로 투자자 관점에서 핵심 포인트만 짧게 요약해주세요:\n\n")
	fmt.Fprintf(&b, "종목명: %s\n", stockName)
	for _, n := range news {
		fmt.Fprintf(&b, "뉴스 제목: %s\n뉴스 링크: %s\n", n.Title, n.URL)
	}

	resp, err := c.Chat(ctx, ChatRequest{
		SystemPrompt: summarySystemPrompt,
		UserPrompt:   b.String(),
		MaxTokens:    summaryMaxTokens,
	})
	if err != nil {
		return "", err
	}

	log.Debug().
		Str("stock", stockName).
		Int("tokens", resp.TokensUsed).
		Msg("News summarized")

	return resp.Content, nil
}
