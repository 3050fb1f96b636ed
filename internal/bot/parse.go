package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// AddArgs holds the parsed arguments of the /addtrigger command.
type AddArgs struct {
	ChannelIDs []int64
	Keywords   []string
	Response   string
	Exceptions []string
}

// ParseAddArgs parses the /addtrigger arguments.
// Format: [-c <chan,...>] <keywords> | <response> [| <exceptions>]
// Keywords and exceptions are comma-separated. When no -c flag is given the
// trigger applies to defaultChannel only.
func ParseAddArgs(args string, defaultChannel int64) (AddArgs, error) {
	channels := []int64{defaultChannel}

	args = strings.TrimSpace(args)
	if rest, ok := strings.CutPrefix(args, "-c"); ok {
		fields := strings.SplitN(strings.TrimSpace(rest), " ", 2)
		if len(fields) < 2 {
			return AddArgs{}, fmt.Errorf("missing trigger definition after -c")
		}
		ids, err := parseChannelList(fields[0])
		if err != nil {
			return AddArgs{}, err
		}
		channels = ids
		args = fields[1]
	}

	parts := strings.Split(args, "|")
	if len(parts) < 2 || len(parts) > 3 {
		return AddArgs{}, fmt.Errorf("expected <keywords> | <response> [| <exceptions>]")
	}

	keywords := splitPhrases(parts[0])
	if len(keywords) == 0 {
		return AddArgs{}, fmt.Errorf("at least one keyword is required")
	}

	response := strings.TrimSpace(parts[1])
	if response == "" {
		return AddArgs{}, fmt.Errorf("response must not be empty")
	}

	var exceptions []string
	if len(parts) == 3 {
		exceptions = splitPhrases(parts[2])
	}

	return AddArgs{
		ChannelIDs: channels,
		Keywords:   keywords,
		Response:   response,
		Exceptions: exceptions,
	}, nil
}

// ParseIDArg extracts a numeric ID from a command argument string.
func ParseIDArg(args string) (int64, error) {
	s := strings.TrimSpace(args)
	if s == "" {
		return 0, fmt.Errorf("trigger ID is required")
	}
	id, err := strconv.ParseInt(strings.Fields(s)[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid trigger ID %q", s)
	}
	return id, nil
}

func parseChannelList(raw string) ([]int64, error) {
	var ids []int64
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid channel ID %q", s)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one channel ID is required after -c")
	}
	return ids, nil
}

func splitPhrases(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
