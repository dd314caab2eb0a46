// Package adapter sends text through the Telegram Bot API.
package adapter

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	kit "homeworkbot/internal/transport"
	logx "homeworkbot/pkg/logx"
)

// MaxMessageRunes is the longest text sent as a single message.
const MaxMessageRunes = 4000

const defaultTimeout = 15 * time.Second

type Config struct {
	Token string
	// APIURL replaces https://api.telegram.org, mostly for tests.
	APIURL  string
	Timeout time.Duration
}

// Adapter is a send-only Telegram transport. It never polls for updates.
type Adapter struct {
	bot *tele.Bot
	log logx.Logger
}

func New(cfg Config, log logx.Logger) (*Adapter, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	// Offline: no getMe at startup, so the bot comes up without the network.
	bot, err := tele.NewBot(tele.Settings{
		Token:   token,
		URL:     strings.TrimSpace(cfg.APIURL),
		Offline: true,
		Client:  &http.Client{Timeout: cfg.Timeout},
	})
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Adapter{bot: bot, log: log}, nil
}

// SendText sends text to the target, split into several messages when it is
// longer than MaxMessageRunes. The returned ref points at the first part.
func (a *Adapter) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	if to.IsZero() {
		return kit.MessageRef{}, errors.New("telegram: empty chat target")
	}
	sendOpt := &tele.SendOptions{ThreadID: to.ThreadID}
	if opt != nil {
		sendOpt.DisableWebPagePreview = opt.DisablePreview
	}

	parts := chunks(text, MaxMessageRunes)
	ref := kit.MessageRef{ChatID: to.ChatID}
	for i, part := range parts {
		if err := ctx.Err(); err != nil {
			return ref, err
		}
		msg, err := a.bot.Send(recipient(to), part, sendOpt)
		if err != nil {
			return ref, err
		}
		if i == 0 && msg != nil {
			ref.MessageID = msg.ID
			if msg.Chat != nil {
				ref.ChatID = msg.Chat.ID
			}
		}
	}
	if len(parts) > 1 {
		a.log.Debug("long message split", logx.Int("parts", len(parts)))
	}
	return ref, nil
}

// chunks packs whole lines into parts of at most limit runes. A line that
// alone exceeds limit is cut at rune boundaries. Blank lines are kept:
// joining the parts with "\n" restores text when no line had to be cut.
func chunks(text string, limit int) []string {
	if limit <= 0 || len([]rune(text)) <= limit {
		return []string{text}
	}

	var (
		out  []string
		cur  []rune
		open bool // cur holds at least one line, possibly blank
	)
	flush := func() {
		if open && len(cur) > 0 {
			out = append(out, string(cur))
		}
		cur, open = cur[:0], false
	}
	for _, line := range strings.Split(text, "\n") {
		rs := []rune(line)
		if open && len(cur)+1+len(rs) <= limit {
			cur = append(cur, '\n')
			cur = append(cur, rs...)
			continue
		}
		flush()
		for len(rs) > limit {
			out = append(out, string(rs[:limit]))
			rs = rs[limit:]
		}
		cur, open = append(cur, rs...), true
	}
	flush()
	return out
}

type chatName string

func (c chatName) Recipient() string { return string(c) }

func recipient(to kit.ChatTarget) tele.Recipient {
	if to.Username != "" {
		return chatName(to.Username)
	}
	return chatName(strconv.FormatInt(to.ChatID, 10))
}
