package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChatTarget(t *testing.T) {
	t.Parallel()

	got, err := ParseChatTarget(" -100123 ", 7)
	require.NoError(t, err)
	assert.Equal(t, ChatTarget{ChatID: -100123, ThreadID: 7}, got)

	got, err = ParseChatTarget("@reviews", 0)
	require.NoError(t, err)
	assert.Equal(t, ChatTarget{Username: "@reviews"}, got)
	assert.False(t, got.IsZero())

	for _, raw := range []string{"", "  ", "@", "abc", "0"} {
		_, err := ParseChatTarget(raw, 0)
		assert.Error(t, err, "raw=%q", raw)
	}
}
