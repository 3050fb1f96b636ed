package bot

import (
	"fmt"
	"strconv"
	"strings"

	"trigger_bot/internal/model"
)

// FormatRuleAdded formats the confirmation message for a freshly added rule.
func FormatRuleAdded(r *model.Rule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trigger #%d added.\n", r.ID)
	fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(r.Keywords, ", "))
	fmt.Fprintf(&b, "Response: %s\n", r.Response)
	if len(r.Exceptions) > 0 {
		fmt.Fprintf(&b, "Exceptions: %s\n", strings.Join(r.Exceptions, ", "))
	}
	fmt.Fprintf(&b, "Channels: %s", joinChannelIDs(r.ChannelIDs))
	return b.String()
}

// FormatRuleList formats the triggers of a chat for display.
func FormatRuleList(rules []model.Rule) string {
	if len(rules) == 0 {
		return "This chat has no triggers yet. Use /addtrigger to add one."
	}

	var b strings.Builder
	b.WriteString("Triggers:\n")
	for _, r := range rules {
		status := "enabled"
		if !r.Enabled {
			status = "disabled"
		}
		fmt.Fprintf(&b, "\n#%d [%s]\n", r.ID, status)
		fmt.Fprintf(&b, "  keywords: %s\n", strings.Join(r.Keywords, ", "))
		fmt.Fprintf(&b, "  response: %s\n", r.Response)
		if len(r.Exceptions) > 0 {
			fmt.Fprintf(&b, "  exceptions: %s\n", strings.Join(r.Exceptions, ", "))
		}
		fmt.Fprintf(&b, "  channels: %s\n", joinChannelIDs(r.ChannelIDs))
	}
	return b.String()
}

// FormatStatus formats the /status reply.
func FormatStatus(rules int, responses int64) string {
	var b strings.Builder
	b.WriteString("Bot status:\n")
	fmt.Fprintf(&b, "  rules loaded: %d\n", rules)
	fmt.Fprintf(&b, "  responses sent: %d", responses)
	return b.String()
}

func joinChannelIDs(ids []int64) string {
	if len(ids) == 0 {
		return "none"
	}
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(strs, ", ")
}
