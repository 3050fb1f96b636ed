package trigger

import (
	"strings"

	"trigger_bot/internal/model"
)

// Match evaluates a message against the current snapshot and returns the
// response of the first rule that fires, if any. Evaluation order is snapshot
// order; at most one rule fires per message.
//
// A rule fires when the channel is in its channel set, at least one keyword
// is a substring of the lowercased message, and no exception phrase is
// present. The exception check always wins over a keyword match.
//
// Match is total and safe for concurrent callers.
func (c *Cache) Match(text string, channelID int64) (string, bool) {
	if text == "" {
		return "", false
	}
	lowered := strings.ToLower(text)

	rules := c.Snapshot()
	for i := range rules {
		if !ruleFires(&rules[i], lowered, channelID) {
			continue
		}
		c.responses.Add(1)
		c.metrics.ObserveResponse()
		return rules[i].Response, true
	}
	return "", false
}

func ruleFires(r *model.Rule, lowered string, channelID int64) bool {
	if !r.ActiveOn(channelID) {
		return false
	}
	if !containsAny(lowered, r.Keywords) {
		return false
	}
	if containsAny(lowered, r.Exceptions) {
		return false
	}
	return true
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
