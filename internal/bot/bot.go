package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// pollTimeout is the Telegram long-poll window in seconds.
const pollTimeout = 30

// commandTimeout bounds one command end to end; report assembly is the
// slowest path (provider fan-out per ticker).
const commandTimeout = 2 * time.Minute

// Bot runs the long-polling update loop and dispatches commands to the
// handler. Commands from one chat run in arrival order; different
// chats proceed concurrently.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler

	chatMu sync.Mutex
	chats  map[int64]*sync.Mutex

	wg sync.WaitGroup
}

// New authenticates against the Telegram Bot API.
func New(token string, handler *Handler) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("bot: authorize: %w", err)
	}

	log.Info().Str("username", api.Self.UserName).Msg("Telegram bot authorized")

	return &Bot{
		api:     api,
		handler: handler,
		chats:   make(map[int64]*sync.Mutex),
	}, nil
}

// Run consumes updates until ctx is cancelled, then waits for in-flight
// commands to finish.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout

	updates := b.api.GetUpdatesChan(u)
	log.Info().Msg("Listening for commands")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			log.Info().Msg("Bot loop stopped")
			return
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return
			}
			msg := update.Message
			if msg == nil || !msg.IsCommand() {
				continue
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.dispatch(ctx, msg)
			}()
		}
	}
}

// dispatch serializes commands per chat and routes them by name.
func (b *Bot) dispatch(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	unlock := b.lockChat(chatID)
	defer unlock()

	cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	var (
		reply string
		err   error
	)
	switch msg.Command() {
	case "add":
		reply, err = b.handler.HandleAdd(cmdCtx, chatID, msg.CommandArguments())
	case "remove":
		reply, err = b.handler.HandleRemove(cmdCtx, chatID, msg.CommandArguments())
	case "list":
		reply, err = b.handler.HandleList(cmdCtx, chatID)
	case "report":
		reply, err = b.handler.HandleReport(cmdCtx, chatID)
	case "start", "help":
		reply = b.handler.HandleHelp()
	default:
		return
	}

	if err != nil {
		log.Error().
			Err(err).
			Int64("chat_id", chatID).
			Str("command", msg.Command()).
			Msg("Command failed")
	}
	if reply == "" {
		return
	}
	if err := b.Send(chatID, reply); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send reply")
	}
}

// Send delivers a plain-text message to one chat. The scheduler uses
// it for report pushes.
func (b *Bot) Send(chatID int64, text string) error {
	m := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(m); err != nil {
		return fmt.Errorf("bot: send to chat %d: %w", chatID, err)
	}
	return nil
}

// lockChat locks the per-chat mutex and returns its unlock.
func (b *Bot) lockChat(chatID int64) func() {
	b.chatMu.Lock()
	mu, ok := b.chats[chatID]
	if !ok {
		mu = &sync.Mutex{}
		b.chats[chatID] = mu
	}
	b.chatMu.Unlock()

	mu.Lock()
	return mu.Unlock
}
