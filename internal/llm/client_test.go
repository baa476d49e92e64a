package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ssehuun/telegram-news-bot/internal/models"
)

// fakeCompletion serves an OpenAI-compatible chat completion endpoint
// and records the requests it saw.
func fakeCompletion(t *testing.T, content string) (*Client, *[]openai.ChatCompletionRequest) {
	t.Helper()

	var seen []openai.ChatCompletionRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		seen = append(seen, req)

		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:     "chatcmpl-test",
			Object: "chat.completion",
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: "assistant", Content: content},
				FinishReason: "stop",
			}},
			Usage: openai.Usage{TotalTokens: 70},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/v1",
		Model:   "test-model",
	})
	return client, &seen
}

func TestSummarize(t *testing.T) {
	client, seen := fakeCompletion(t, "  HBM4 양산 기대로 반도체 업황 개선 전망입니다.  ")

	news := []models.NewsItem{
		{Title: "삼성전자 HBM4 양산 임박", URL: "https://n.news.naver.com/article/001/0015000000"},
	}

	summary, err := client.Summarize(context.Background(), "삼성전자", news)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary != "HBM4 양산 기대로 반도체 업황 개선 전망입니다." {
		t.Errorf("expected trimmed summary, got %q", summary)
	}

	if len(*seen) != 1 {
		t.Fatalf("expected 1 request, got %d", len(*seen))
	}
	req := (*seen)[0]

	if req.Model != "test-model" {
		t.Errorf("expected model test-model, got %s", req.Model)
	}
	if req.MaxTokens != summaryMaxTokens {
		t.Errorf("expected max tokens %d, got %d", summaryMaxTokens, req.MaxTokens)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Errorf("expected system role first, got %s", req.Messages[0].Role)
	}

	user := req.Messages[1].Content
	if !strings.Contains(user, "종목명: 삼성전자") {
		t.Errorf("expected user prompt to carry the stock name, got %q", user)
	}
	if !strings.Contains(user, "삼성전자 HBM4 양산 임박") {
		t.Errorf("expected user prompt to carry the headline, got %q", user)
	}
}

func TestSummarizeEmptyNews(t *testing.T) {
	client, seen := fakeCompletion(t, "unused")

	if _, err := client.Summarize(context.Background(), "삼성전자", nil); err == nil {
		t.Error("expected error for empty news")
	}
	if len(*seen) != 0 {
		t.Errorf("expected no requests, got %d", len(*seen))
	}
}

func TestChatNoChoices(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{ID: "chatcmpl-empty"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"})

	_, err := client.Chat(context.Background(), ChatRequest{UserPrompt: "ping"})
	if err == nil {
		t.Error("expected error for empty choices")
	}
}

func TestNewClientDefaultModel(t *testing.T) {
	client := NewClient(Config{APIKey: "test-key"})
	if client.model != DefaultModel {
		t.Errorf("expected default model %s, got %s", DefaultModel, client.model)
	}
}
