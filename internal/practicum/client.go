// Package practicum is the client for the homework statuses API.
package practicum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"homeworkbot/internal/homework"
	logx "homeworkbot/pkg/logx"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

type Config struct {
	Endpoint string
	Token    string
	// Timeout bounds a whole request; 0 disables it.
	Timeout time.Duration
	// ConnectTimeout bounds dialing; 0 uses the net.Dialer default.
	ConnectTimeout time.Duration
}

// Client performs one GET per Fetch. It keeps no state between calls.
type Client struct {
	cfg  Config
	http *http.Client
	log  logx.Logger
	now  func() time.Time
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithClock replaces time.Now for the default from_date.
func WithClock(now func() time.Time) Option { return func(c *Client) { c.now = now } }

func New(cfg Config, log logx.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("practicum token is empty")
	}
	if _, err := url.Parse(cfg.Endpoint); err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext

	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout, Transport: transport},
		log:  log,
		now:  time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Fetch returns the statuses updated since the Unix timestamp from.
// from <= 0 means "now".
func (c *Client) Fetch(ctx context.Context, from int64) (homework.Response, error) {
	if from <= 0 {
		from = c.now().Unix()
	}

	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	q := u.Query()
	q.Set("from_date", strconv.FormatInt(from, 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "OAuth "+c.cfg.Token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if isConnectTimeout(err) {
			c.log.Error("server is not responding", logx.Err(err), logx.Duration("connect_timeout", c.cfg.ConnectTimeout))
		} else {
			c.log.Error("network problem", logx.Err(err))
		}
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// body is context only; a failed read still reports the status
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		c.log.Error("api unavailable", logx.Int("status", resp.StatusCode), logx.Int64("from_date", from))
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(snippet), 256)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.log.Error("read response failed", logx.Err(err))
		return nil, fmt.Errorf("%w: read body: %w", ErrNetwork, err)
	}

	out, err := decodeObject(body)
	if err != nil {
		c.log.Error("malformed json", logx.Err(err))
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	c.log.Debug("fetched", logx.Int64("from_date", from), logx.Duration("took", time.Since(start)))
	return out, nil
}

// decodeObject accepts exactly one JSON object.
func decodeObject(body []byte) (homework.Response, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty body")
	}
	if trimmed[0] != '{' {
		return nil, errors.New("body is not a json object")
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	var out homework.Response
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after json object")
	}
	return out, nil
}

// isConnectTimeout reports a timeout while dialing (as opposed to a slow
// response on an established connection).
func isConnectTimeout(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" && opErr.Timeout() {
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
