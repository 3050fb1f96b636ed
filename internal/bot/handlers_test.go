package bot

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/go-cmp/cmp"

	"trigger_bot/internal/config"
	"trigger_bot/internal/storage"
	"trigger_bot/internal/trigger"
)

// --- mocks ---

type sentMsg struct {
	ChatID int64
	Text   string
}

type mockAPI struct {
	mu   sync.Mutex
	sent []sentMsg
}

func (m *mockAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		m.mu.Lock()
		m.sent = append(m.sent, sentMsg{ChatID: msg.ChatID, Text: msg.Text})
		m.mu.Unlock()
	}
	return tgbotapi.Message{}, nil
}

func (m *mockAPI) GetUpdatesChan(_ tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(tgbotapi.UpdatesChannel)
}

func (m *mockAPI) StopReceivingUpdates() {}

func (m *mockAPI) lastText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1].Text
}

func (m *mockAPI) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// --- helpers ---

func newTestBot(t *testing.T) (*Bot, *mockAPI, *storage.SQLite) {
	t.Helper()
	store, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := trigger.NewCache(store, nil, log, time.Minute)
	admin := trigger.NewAdmin(store, cache, log)

	api := &mockAPI{}
	b := &Bot{
		api:   api,
		cache: cache,
		admin: admin,
		cfg:   &config.Config{},
		log:   log,
	}
	return b, api, store
}

func requireContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("reply missing %q, got:\n%s", want, got)
	}
}

func textMessage(chatID, userID int64, text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: userID},
	}
	if strings.HasPrefix(text, "/") {
		cmdLen := len(strings.Fields(text)[0])
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}}
	}
	return msg
}

// --- handler tests ---

func TestHandleStart(t *testing.T) {
	b, api, _ := newTestBot(t)
	b.handleStart(100)
	requireContains(t, api.lastText(), "Welcome to Trigger Bot")
}

func TestHandleHelp(t *testing.T) {
	b, api, _ := newTestBot(t)
	b.handleHelp(100)
	requireContains(t, api.lastText(), "/addtrigger")
	requireContains(t, api.lastText(), "/rmtrigger")
}

func TestHandleAddTrigger(t *testing.T) {
	ctx := context.Background()

	t.Run("bad syntax", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		b.handleAddTrigger(ctx, 100, "just some words")
		requireContains(t, api.lastText(), "Usage: /addtrigger")
	})

	t.Run("success", func(t *testing.T) {
		b, api, store := newTestBot(t)
		b.handleAddTrigger(ctx, 100, "ping | pong")
		requireContains(t, api.lastText(), "Trigger #1 added")

		rules, err := store.ListRules(ctx, 100)
		if err != nil {
			t.Fatalf("list rules: %v", err)
		}
		if diff := cmp.Diff(1, len(rules)); diff != "" {
			t.Errorf("rule count (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]int64{100}, rules[0].ChannelIDs); diff != "" {
			t.Errorf("default channel (-want +got):\n%s", diff)
		}
	})

	t.Run("added trigger fires immediately", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		b.handleAddTrigger(ctx, 100, "ping | pong")

		b.handleMessage(textMessage(100, 7, "ping?"))
		if diff := cmp.Diff("pong", api.lastText()); diff != "" {
			t.Errorf("auto-response (-want +got):\n%s", diff)
		}
	})

	t.Run("explicit channels", func(t *testing.T) {
		b, _, store := newTestBot(t)
		b.handleAddTrigger(ctx, 100, "-c 200,300 ping | pong")

		rules, err := store.ListRules(ctx, 100)
		if err != nil {
			t.Fatalf("list rules: %v", err)
		}
		if diff := cmp.Diff([]int64{200, 300}, rules[0].ChannelIDs); diff != "" {
			t.Errorf("channels (-want +got):\n%s", diff)
		}
	})
}

func TestHandleTriggers(t *testing.T) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		b.handleTriggers(ctx, 100)
		requireContains(t, api.lastText(), "no triggers yet")
	})

	t.Run("lists own chat only", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		b.handleAddTrigger(ctx, 100, "ping | pong")
		b.handleAddTrigger(ctx, 200, "other | reply")

		b.handleTriggers(ctx, 100)
		reply := api.lastText()
		requireContains(t, reply, "#1")
		requireContains(t, reply, "ping")
		if strings.Contains(reply, "other") {
			t.Errorf("listing leaked another chat's trigger:\n%s", reply)
		}
	})
}

func TestHandleRmTrigger(t *testing.T) {
	ctx := context.Background()

	t.Run("bad args", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		b.handleRmTrigger(ctx, 100, "")
		requireContains(t, api.lastText(), "Usage: /rmtrigger")
	})

	t.Run("nonexistent id is not an error", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		b.handleRmTrigger(ctx, 100, "999")
		requireContains(t, api.lastText(), "not found")
	})

	t.Run("success stops matching", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		b.handleAddTrigger(ctx, 100, "ping | pong")
		b.handleRmTrigger(ctx, 100, "1")
		requireContains(t, api.lastText(), "Trigger #1 removed")

		before := api.count()
		b.handleMessage(textMessage(100, 7, "ping?"))
		if api.count() != before {
			t.Error("removed trigger still fired")
		}
	})

	t.Run("other chat cannot remove", func(t *testing.T) {
		b, api, _ := newTestBot(t)
		b.handleAddTrigger(ctx, 100, "ping | pong")
		b.handleRmTrigger(ctx, 200, "1")
		requireContains(t, api.lastText(), "not found")

		b.handleMessage(textMessage(100, 7, "ping"))
		if diff := cmp.Diff("pong", api.lastText()); diff != "" {
			t.Errorf("trigger should survive foreign removal (-want +got):\n%s", diff)
		}
	})
}

func TestHandleClearTriggers(t *testing.T) {
	ctx := context.Background()
	b, api, _ := newTestBot(t)

	b.handleAddTrigger(ctx, 100, "a | ra")
	b.handleAddTrigger(ctx, 100, "b | rb")
	b.handleAddTrigger(ctx, 200, "c | rc")

	b.handleClearTriggers(ctx, 100)
	requireContains(t, api.lastText(), "Removed 2 trigger(s)")

	// The other chat's trigger still fires.
	b.handleMessage(textMessage(200, 7, "c!"))
	if diff := cmp.Diff("rc", api.lastText()); diff != "" {
		t.Errorf("other chat's trigger (-want +got):\n%s", diff)
	}
}

func TestHandleStatus(t *testing.T) {
	ctx := context.Background()
	b, api, _ := newTestBot(t)

	b.handleAddTrigger(ctx, 100, "ping | pong")
	b.handleMessage(textMessage(100, 7, "ping"))

	b.handleStatus(100)
	reply := api.lastText()
	requireContains(t, reply, "rules loaded: 1")
	requireContains(t, reply, "responses sent: 1")
}

// --- dispatcher tests ---

func TestHandleMessageNoMatchStaysSilent(t *testing.T) {
	b, api, _ := newTestBot(t)
	b.handleMessage(textMessage(100, 7, "nothing to see"))
	if api.count() != 0 {
		t.Errorf("expected no reply, got %q", api.lastText())
	}
}

func TestCommandAdminGate(t *testing.T) {
	ctx := context.Background()
	b, api, _ := newTestBot(t)
	b.cfg = &config.Config{AdminUsers: []int64{1}}

	b.handleCommand(ctx, textMessage(100, 2, "/addtrigger ping | pong"))
	if diff := cmp.Diff("Access denied.", api.lastText()); diff != "" {
		t.Errorf("gate reply (-want +got):\n%s", diff)
	}

	b.handleCommand(ctx, textMessage(100, 1, "/addtrigger ping | pong"))
	requireContains(t, api.lastText(), "Trigger #1 added")

	// Read-only commands are open to everyone.
	b.handleCommand(ctx, textMessage(100, 2, "/status"))
	requireContains(t, api.lastText(), "rules loaded")
}

func TestCommandUnknown(t *testing.T) {
	b, api, _ := newTestBot(t)
	b.handleCommand(context.Background(), textMessage(100, 1, "/bogus"))
	requireContains(t, api.lastText(), "Unknown command")
}
