// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"

	"trigger_bot/internal/model"
)

// Storage is the interface for all persistence operations on rules.
//
// Delete operations report the number of affected rows; deleting a rule that
// does not exist (or belongs to another guild) is not an error.
type Storage interface {
	CreateRule(ctx context.Context, rule *model.Rule) error
	ListEnabledRules(ctx context.Context) ([]model.Rule, error)
	ListRules(ctx context.Context, guildID int64) ([]model.Rule, error)
	DeleteRule(ctx context.Context, id, guildID int64) (int64, error)
	DeleteAllRules(ctx context.Context, guildID int64) (int64, error)

	Close() error
}
