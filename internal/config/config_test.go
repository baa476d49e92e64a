package config

import (
	"testing"
	"time"
)

// clearEnv blanks every config variable so Load falls back to defaults;
// getEnv treats empty values as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
		"LISTING_PATH", "LISTING_SKIP",
		"STORE_BACKEND", "DATA_DIR", "MONGO_URI", "MONGO_DB", "MAX_WATCHLIST_SIZE",
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
		"REPORT_CONCURRENCY", "FETCH_TIMEOUT", "NEWS_PER_STOCK",
		"REPORT_PUSH_AT", "REPORT_ON_START",
		"HTTP_ADDR", "ADMIN_TOKEN", "LOG_FILE", "DEBUG",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ListingPath != "./listings.csv" {
		t.Errorf("unexpected listing path: %s", cfg.ListingPath)
	}
	if cfg.StoreBackend != StoreFile {
		t.Errorf("expected file backend, got %s", cfg.StoreBackend)
	}
	if cfg.MaxWatchlist != 30 {
		t.Errorf("expected cap 30, got %d", cfg.MaxWatchlist)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("unexpected model: %s", cfg.OpenAIModel)
	}
	if cfg.ReportConcurrency != 4 {
		t.Errorf("expected concurrency 4, got %d", cfg.ReportConcurrency)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("expected 10s fetch timeout, got %v", cfg.FetchTimeout)
	}
	if cfg.ReportPushAt != "08:30" {
		t.Errorf("unexpected push time: %s", cfg.ReportPushAt)
	}
	if cfg.HTTPAddr != ":8090" {
		t.Errorf("unexpected HTTP addr: %s", cfg.HTTPAddr)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123456789")
	t.Setenv("LISTING_SKIP", "true")
	t.Setenv("STORE_BACKEND", StoreMongo)
	t.Setenv("MAX_WATCHLIST_SIZE", "5")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("REPORT_ON_START", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.BotToken != "tok" {
		t.Errorf("unexpected token: %s", cfg.BotToken)
	}
	if cfg.PushChatID != -100123456789 {
		t.Errorf("unexpected push chat id: %d", cfg.PushChatID)
	}
	if !cfg.ListingSkip {
		t.Error("expected listing skip")
	}
	if cfg.StoreBackend != StoreMongo {
		t.Errorf("expected mongo backend, got %s", cfg.StoreBackend)
	}
	if cfg.MaxWatchlist != 5 {
		t.Errorf("expected cap 5, got %d", cfg.MaxWatchlist)
	}
	if cfg.FetchTimeout != 3*time.Second {
		t.Errorf("expected 3s fetch timeout, got %v", cfg.FetchTimeout)
	}
	if !cfg.ReportOnStart {
		t.Error("expected report on start")
	}
}

func TestValidate(t *testing.T) {
	t.Run("missing bot token", func(t *testing.T) {
		cfg := &Config{StoreBackend: StoreFile}
		if err := cfg.Validate(); err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("bad store backend", func(t *testing.T) {
		cfg := &Config{BotToken: "tok", StoreBackend: "redis"}
		if err := cfg.Validate(); err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("valid", func(t *testing.T) {
		cfg := &Config{BotToken: "tok", StoreBackend: StoreFile}
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
