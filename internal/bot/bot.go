// Package bot implements the Telegram surface: the message dispatcher that
// feeds inbound text through the matcher, and the rule administration
// commands.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"trigger_bot/internal/config"
	"trigger_bot/internal/trigger"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot dispatches inbound Telegram messages to the matcher and handles the
// administration commands.
type Bot struct {
	api   telegramAPI
	cache *trigger.Cache
	admin *trigger.Admin
	cfg   *config.Config
	log   *slog.Logger
}

// New creates a Bot with the given Telegram token.
func New(token string, cache *trigger.Cache, admin *trigger.Admin, cfg *config.Config, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return &Bot{
		api:   api,
		cache: cache,
		admin: admin,
		cfg:   cfg,
		log:   log,
	}, nil
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			if update.Message.From != nil && update.Message.From.IsBot {
				continue
			}
			if update.Message.IsCommand() {
				b.handleCommand(ctx, update.Message)
				continue
			}
			b.handleMessage(update.Message)
		}
	}
}

// handleMessage runs one matcher pass over an inbound message and sends the
// configured reply if a rule fires. Delivery failure is logged and dropped.
func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	response, ok := b.cache.Match(msg.Text, msg.Chat.ID)
	if !ok {
		return
	}
	b.reply(msg.Chat.ID, response)
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID

	b.log.Debug("command", "cmd", cmd, "args", args, "chat_id", chatID)

	switch cmd {
	case "start":
		b.handleStart(chatID)
	case "help":
		b.handleHelp(chatID)
	case "status":
		b.handleStatus(chatID)
	case "triggers":
		b.handleTriggers(ctx, chatID)
	case "addtrigger":
		if !b.requireAdmin(msg) {
			return
		}
		b.handleAddTrigger(ctx, chatID, args)
	case "rmtrigger":
		if !b.requireAdmin(msg) {
			return
		}
		b.handleRmTrigger(ctx, chatID, args)
	case "cleartriggers":
		if !b.requireAdmin(msg) {
			return
		}
		b.handleClearTriggers(ctx, chatID)
	default:
		b.reply(chatID, "Unknown command. Use /help for a list of commands.")
	}
}

func (b *Bot) requireAdmin(msg *tgbotapi.Message) bool {
	if msg.From == nil || !b.cfg.IsAdmin(msg.From.ID) {
		b.reply(msg.Chat.ID, "Access denied.")
		return false
	}
	return true
}
