package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"multitimer/internal/usecase"
)

// Client talks to a running Server.
type Client struct {
	base string
	http *http.Client
}

// NewClient targets the server listening on addr (host:port or a URL).
func NewClient(addr string) *Client {
	base := addr
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// Timers lists the server's timers.
func (c *Client) Timers(ctx context.Context) ([]TimerJSON, error) {
	var out []TimerJSON
	err := c.do(ctx, http.MethodGet, "/api/timers", nil, &out)
	return out, err
}

// Create starts a timer and returns it as stored.
func (c *Client) Create(ctx context.Context, req CreateJSON) (TimerJSON, error) {
	var out TimerJSON
	err := c.do(ctx, http.MethodPost, "/api/timers", req, &out)
	return out, err
}

// Command sends an id-addressed command.
func (c *Client) Command(ctx context.Context, typ usecase.CommandType, id int) error {
	path := "/api/timers/" + strconv.Itoa(id)
	method := http.MethodPost
	switch typ {
	case usecase.CommandDeleteTimer:
		method = http.MethodDelete
	case usecase.CommandStopTimer:
		path += "/stop"
	case usecase.CommandPauseTimer:
		path += "/pause"
	case usecase.CommandResumeTimer:
		path += "/resume"
	case usecase.CommandAcknowledge:
		path += "/ack"
	default:
		return fmt.Errorf("%w %q", usecase.ErrUnknownCommand, typ)
	}
	return c.do(ctx, method, path, nil, nil)
}

// ScheduleWake hands a snapshot to the server's background bridge.
func (c *Client) ScheduleWake(ctx context.Context, snap TimerJSON) error {
	return c.do(ctx, http.MethodPost, "/api/wakes", snap, nil)
}

// App returns the server's host visibility.
func (c *Client) App(ctx context.Context) (AppJSON, error) {
	var out AppJSON
	err := c.do(ctx, http.MethodGet, "/api/app", nil, &out)
	return out, err
}

// SetForeground reports a host visibility change.
func (c *Client) SetForeground(ctx context.Context, fg bool) (AppJSON, error) {
	var out AppJSON
	err := c.do(ctx, http.MethodPut, "/api/app", AppJSON{Foreground: fg}, &out)
	return out, err
}

// Events returns retained events newer than after.
func (c *Client) Events(ctx context.Context, after uint64) ([]usecase.FeedEntry, error) {
	var out []usecase.FeedEntry
	err := c.do(ctx, http.MethodGet, "/api/events?after="+strconv.FormatUint(after, 10), nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(msg)))
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
