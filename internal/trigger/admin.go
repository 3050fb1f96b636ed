package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"trigger_bot/internal/model"
	"trigger_bot/internal/storage"
)

// ErrValidation marks administration input that failed validation. Check it
// with errors.Is to distinguish bad input from storage failures.
var ErrValidation = errors.New("invalid rule")

// Admin performs rule mutations. Every successful mutation forces a full
// cache rebuild, so the snapshot can never diverge from a write issued here.
type Admin struct {
	store storage.Storage
	cache *Cache
	log   *slog.Logger
}

// NewAdmin creates an Admin operating on the given store and cache.
func NewAdmin(store storage.Storage, cache *Cache, log *slog.Logger) *Admin {
	return &Admin{store: store, cache: cache, log: log}
}

// AddRule validates and persists a new enabled rule, then reloads the cache.
// On validation failure the store is not touched and the cache not reloaded.
func (a *Admin) AddRule(ctx context.Context, guildID int64, channelIDs []int64, keywords []string, response string, exceptions []string) (*model.Rule, error) {
	if len(channelIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one channel is required", ErrValidation)
	}
	keywords = cleanPhrases(keywords)
	if len(keywords) == 0 {
		return nil, fmt.Errorf("%w: at least one keyword is required", ErrValidation)
	}
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, fmt.Errorf("%w: response must not be empty", ErrValidation)
	}
	exceptions = cleanPhrases(exceptions)

	rule := &model.Rule{
		GuildID:    guildID,
		ChannelIDs: channelIDs,
		Keywords:   keywords,
		Exceptions: exceptions,
		Response:   response,
		Enabled:    true,
	}
	if err := a.store.CreateRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("create rule: %w", err)
	}

	a.reload(ctx)
	return rule, nil
}

// RemoveRule deletes a rule if it belongs to the guild and reloads the cache.
// Returns false when no matching rule existed; that is not an error.
func (a *Admin) RemoveRule(ctx context.Context, id, guildID int64) (bool, error) {
	n, err := a.store.DeleteRule(ctx, id, guildID)
	if err != nil {
		return false, fmt.Errorf("delete rule: %w", err)
	}
	a.reload(ctx)
	return n > 0, nil
}

// RemoveAllRules deletes every rule of a guild and reloads the cache.
// Returns the number of rules removed.
func (a *Admin) RemoveAllRules(ctx context.Context, guildID int64) (int64, error) {
	n, err := a.store.DeleteAllRules(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("delete guild rules: %w", err)
	}
	a.reload(ctx)
	return n, nil
}

// ListRules returns all rules of a guild for display.
func (a *Admin) ListRules(ctx context.Context, guildID int64) ([]model.Rule, error) {
	rules, err := a.store.ListRules(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("list guild rules: %w", err)
	}
	return rules, nil
}

// Reload failures after a successful write are swallowed here: the mutation
// itself succeeded, and a stale snapshot self-heals on the next periodic
// reload.
func (a *Admin) reload(ctx context.Context) {
	if err := a.cache.Reload(ctx); err != nil {
		a.log.Error("reload after mutation", "error", err)
	}
}

func cleanPhrases(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
