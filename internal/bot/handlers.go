package bot

import (
	"context"
	"errors"
	"fmt"

	"trigger_bot/internal/trigger"
)

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Welcome to Trigger Bot!

I reply automatically when a message contains one of the configured keywords.

Quick start:
1. /addtrigger ping | pong — reply "pong" to messages containing "ping"
2. /triggers — list the triggers of this chat
3. /rmtrigger <id> — remove a trigger

Use /help for the full command reference.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Trigger management:
/addtrigger [-c <chan,...>] <keywords> | <response> [| <exceptions>] — add a trigger
/triggers — list triggers of this chat
/rmtrigger <id> — remove a trigger
/cleartriggers — remove all triggers of this chat
/status — rules loaded and responses sent
/help — this message

Keywords and exceptions are comma-separated phrases; matching is
case-insensitive substring containment. A trigger stays silent when any
exception phrase is present, even if a keyword matched.

By default a trigger fires only in the chat it was created in; use
-c to list other channel IDs.

Example:
/addtrigger sale, discount | There is a sale! | no sale`)
}

func (b *Bot) handleStatus(chatID int64) {
	b.reply(chatID, FormatStatus(b.cache.Rules(), b.cache.Responses()))
}

func (b *Bot) handleAddTrigger(ctx context.Context, chatID int64, args string) {
	parsed, err := ParseAddArgs(args, chatID)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("%v\nUsage: /addtrigger [-c <chan,...>] <keywords> | <response> [| <exceptions>]", err))
		return
	}

	rule, err := b.admin.AddRule(ctx, chatID, parsed.ChannelIDs, parsed.Keywords, parsed.Response, parsed.Exceptions)
	if err != nil {
		if errors.Is(err, trigger.ErrValidation) {
			b.reply(chatID, fmt.Sprintf("Invalid trigger: %v", err))
			return
		}
		b.log.Error("add rule", "chat_id", chatID, "error", err)
		b.reply(chatID, "Failed to save trigger, please try again.")
		return
	}

	b.reply(chatID, FormatRuleAdded(rule))
}

func (b *Bot) handleTriggers(ctx context.Context, chatID int64) {
	rules, err := b.admin.ListRules(ctx, chatID)
	if err != nil {
		b.log.Error("list rules", "chat_id", chatID, "error", err)
		b.reply(chatID, "Failed to list triggers, please try again.")
		return
	}
	b.reply(chatID, FormatRuleList(rules))
}

func (b *Bot) handleRmTrigger(ctx context.Context, chatID int64, args string) {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /rmtrigger <id>")
		return
	}

	removed, err := b.admin.RemoveRule(ctx, id, chatID)
	if err != nil {
		b.log.Error("remove rule", "chat_id", chatID, "rule_id", id, "error", err)
		b.reply(chatID, "Failed to remove trigger, please try again.")
		return
	}
	if !removed {
		b.reply(chatID, fmt.Sprintf("Trigger #%d was not found, nothing removed.", id))
		return
	}
	b.reply(chatID, fmt.Sprintf("Trigger #%d removed.", id))
}

func (b *Bot) handleClearTriggers(ctx context.Context, chatID int64) {
	n, err := b.admin.RemoveAllRules(ctx, chatID)
	if err != nil {
		b.log.Error("clear rules", "chat_id", chatID, "error", err)
		b.reply(chatID, "Failed to clear triggers, please try again.")
		return
	}
	b.reply(chatID, fmt.Sprintf("Removed %d trigger(s).", n))
}
