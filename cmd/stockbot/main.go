// Stockbot - Telegram stock watchlist bot.
// Tracks per-chat ticker sets and delivers Korean market reports with
// quotes, headlines and LLM summaries.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ssehuun/telegram-news-bot/internal/api"
	"github.com/ssehuun/telegram-news-bot/internal/bot"
	"github.com/ssehuun/telegram-news-bot/internal/config"
	"github.com/ssehuun/telegram-news-bot/internal/listing"
	"github.com/ssehuun/telegram-news-bot/internal/llm"
	"github.com/ssehuun/telegram-news-bot/internal/logging"
	"github.com/ssehuun/telegram-news-bot/internal/naver"
	"github.com/ssehuun/telegram-news-bot/internal/report"
	"github.com/ssehuun/telegram-news-bot/internal/resolver"
	"github.com/ssehuun/telegram-news-bot/internal/scheduler"
	"github.com/ssehuun/telegram-news-bot/internal/watchlist"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Setup(logging.Options{Debug: cfg.Debug, FilePath: cfg.LogFile})

	log.Info().Str("version", version).Msg("Stockbot - Starting")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Daily schedules and report headers follow the Seoul market clock.
	kst, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		kst = time.FixedZone("KST", 9*60*60)
	}

	// Load the reference listing
	var idx *listing.Index
	if cfg.ListingSkip {
		idx = listing.Empty()
		log.Warn().Msg("Reference listing skipped, name resolution disabled")
	} else {
		idx, err = listing.Load(cfg.ListingPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.ListingPath).Msg("Failed to load reference listing")
		}
	}

	res := resolver.New(idx)

	// Initialize watchlist storage
	var store watchlist.Store
	switch cfg.StoreBackend {
	case config.StoreMongo:
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err = watchlist.NewMongoStore(connectCtx, cfg.MongoURI, cfg.MongoDB, cfg.MaxWatchlist)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		log.Info().Str("db", cfg.MongoDB).Msg("Mongo watchlist store initialized")
	default:
		store, err = watchlist.NewFileStore(cfg.DataDir, cfg.MaxWatchlist)
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("Failed to open watchlist directory")
		}
		log.Info().Str("dir", cfg.DataDir).Msg("File watchlist store initialized")
	}

	// Initialize the market data client
	quotes := naver.NewClient(naver.Config{Timeout: cfg.FetchTimeout})
	log.Info().Msg("Naver Finance client initialized")

	// Initialize the LLM summarizer. The typed interface variable stays
	// nil without a key, which disables summaries in the builder.
	var summarizer report.Summarizer
	if cfg.OpenAIAPIKey != "" {
		summarizer = llm.NewClient(llm.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		})
		log.Info().Str("model", cfg.OpenAIModel).Msg("LLM summarizer initialized")
	} else {
		log.Warn().Msg("LLM summarizer not initialized (no API key)")
	}

	// Initialize the report builder
	builder := report.NewBuilder(quotes, quotes, summarizer, idx, report.Options{
		Concurrency:  cfg.ReportConcurrency,
		FetchTimeout: cfg.FetchTimeout,
		NewsPerStock: cfg.NewsPerStock,
	})

	// Initialize the command handler and the Telegram bot
	handler := bot.NewHandler(store, res, builder, idx, cfg.MaxWatchlist)

	tgBot, err := bot.New(cfg.BotToken, handler)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Telegram")
	}

	// Initialize the scheduler
	sched := scheduler.NewScheduler(kst)

	if cfg.PushChatID != 0 {
		hour, minute, err := scheduler.ParseHHMM(cfg.ReportPushAt)
		if err != nil {
			log.Fatal().Err(err).Str("value", cfg.ReportPushAt).Msg("Invalid REPORT_PUSH_AT")
		}

		pushChatID := cfg.PushChatID
		sched.AddJob(&scheduler.Job{
			Name: scheduler.JobDailyReport,
			Schedule: scheduler.Schedule{
				Type:   scheduler.ScheduleDaily,
				Hour:   hour,
				Minute: minute,
			},
			Handler: func(ctx context.Context) error {
				text, err := handler.HandleReport(ctx, pushChatID)
				if err != nil {
					return err
				}
				return tgBot.Send(pushChatID, text)
			},
		})
	}

	// Initialize the ops API server
	var apiServer *api.Server
	if cfg.HTTPAddr != "" {
		handlers := api.NewHandlers(store, idx, cfg.StoreBackend, version)
		apiServer = api.NewServer(handlers, sched, cfg.HTTPAddr, cfg.AdminToken)
	}

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start all services
	if apiServer != nil {
		go func() {
			if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("API server error")
			}
		}()
	}

	sched.Start()

	if cfg.ReportOnStart && cfg.PushChatID != 0 {
		if err := sched.RunJobNow(scheduler.JobDailyReport); err != nil {
			log.Error().Err(err).Msg("Failed to trigger startup report")
		}
	}

	botCtx, botCancel := context.WithCancel(context.Background())
	botDone := make(chan struct{})
	go func() {
		tgBot.Run(botCtx)
		close(botDone)
	}()

	log.Info().
		Str("api", cfg.HTTPAddr).
		Str("store", cfg.StoreBackend).
		Msg("Stockbot running")

	// Wait for shutdown signal
	<-sigChan
	log.Info().Msg("Shutdown signal received")

	// Graceful shutdown
	botCancel()
	<-botDone

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if apiServer != nil {
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("API server shutdown error")
		}
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Store close error")
	}

	log.Info().Msg("Stockbot stopped")
}
