// Package model defines the domain types used across the application.
package model

import "time"

// Rule maps a set of trigger keywords to a canned response, scoped to a set
// of channels. Rules belong to a guild; guild membership is checked by the
// administration layer, while matching only consults ChannelIDs.
type Rule struct {
	ID         int64
	GuildID    int64
	ChannelIDs []int64
	Keywords   []string
	Exceptions []string
	Response   string
	Enabled    bool
	CreatedAt  time.Time
}

// ActiveOn reports whether the rule applies to the given channel.
func (r *Rule) ActiveOn(channelID int64) bool {
	for _, id := range r.ChannelIDs {
		if id == channelID {
			return true
		}
	}
	return false
}
