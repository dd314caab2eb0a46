package transport

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseChatTarget parses a chat identifier as found in the environment:
// a numeric chat id ("123", "-100123") or a public username ("@channel").
func ParseChatTarget(raw string, threadID int) (ChatTarget, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ChatTarget{}, fmt.Errorf("chat id is empty")
	}
	if strings.HasPrefix(s, "@") {
		if len(s) == 1 {
			return ChatTarget{}, fmt.Errorf("chat username is empty")
		}
		return ChatTarget{Username: s, ThreadID: threadID}, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return ChatTarget{}, fmt.Errorf("invalid chat id %q: want a number or @username", raw)
	}
	if id == 0 {
		return ChatTarget{}, fmt.Errorf("chat id must be non-zero")
	}
	return ChatTarget{ChatID: id, ThreadID: threadID}, nil
}
