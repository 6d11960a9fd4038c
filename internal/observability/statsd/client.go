// Package statsd emits dashboard metrics as DogStatsD datagrams over UDP.
package statsd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultPrefix is prepended to every metric name when Config.Prefix is blank.
	DefaultPrefix = "vv_dashboard"
	// ServiceTag identifies the dashboard in the shared metrics backend.
	ServiceTag = "vv-dashboard"

	dialTimeout = 5 * time.Second
)

// Sink receives the dashboard's counters, gauges and timings.
type Sink interface {
	Count(name string, value int64, tags map[string]string)
	Gauge(name string, value float64, tags map[string]string)
	Timing(name string, value time.Duration, tags map[string]string)
}

// Config describes the StatsD endpoint and what every datagram carries.
type Config struct {
	Enabled bool
	Address string
	Prefix  string
	// Tags are added to every metric on top of service:vv-dashboard.
	Tags   map[string]string
	Logger *slog.Logger
}

// Client writes one datagram per observation. Safe for concurrent use; a nil
// or disabled Client drops everything.
type Client struct {
	prefix string
	tags   map[string]string
	logger *slog.Logger

	mu   sync.Mutex
	conn net.Conn
}

var _ Sink = (*Client)(nil)

// NewClient dials cfg.Address over UDP. A disabled config or blank address
// yields a client that drops every metric.
func NewClient(cfg Config) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	prefix := strings.Trim(strings.TrimSpace(cfg.Prefix), ".")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	tags := map[string]string{"service": ServiceTag}
	for k, v := range cfg.Tags {
		if k = cleanTag(k); k != "" {
			tags[k] = cleanTag(v)
		}
	}

	c := &Client{prefix: prefix, tags: tags, logger: logger.With("component", "statsd")}

	address := strings.TrimSpace(cfg.Address)
	if !cfg.Enabled || address == "" {
		return c, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	conn, err := (&net.Dialer{}).DialContext(ctx, "udp", address)
	if err != nil {
		return nil, fmt.Errorf("statsd dial %s: %w", address, err)
	}
	c.conn = conn
	return c, nil
}

// Enabled reports whether datagrams are being sent.
func (c *Client) Enabled() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *Client) Count(name string, value int64, tags map[string]string) {
	c.send(name, strconv.FormatInt(value, 10), "c", tags)
}

func (c *Client) Gauge(name string, value float64, tags map[string]string) {
	c.send(name, strconv.FormatFloat(value, 'f', -1, 64), "g", tags)
}

// Timing records d in milliseconds.
func (c *Client) Timing(name string, d time.Duration, tags map[string]string) {
	ms := float64(d) / float64(time.Millisecond)
	c.send(name, strconv.FormatFloat(ms, 'f', -1, 64), "ms", tags)
}

// Close releases the socket. Later metrics are dropped.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) send(name, value, kind string, tags map[string]string) {
	if c == nil {
		return
	}
	line, ok := c.datagram(name, value, kind, tags)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return
	}
	if _, err := c.conn.Write([]byte(line)); err != nil {
		c.logger.Debug("statsd write failed", "metric", name, "error", err)
	}
}

// datagram renders prefix.name:value|kind|#k:v,... with tags sorted by key
// and per-call tags overriding the client's.
func (c *Client) datagram(name, value, kind string, tags map[string]string) (string, bool) {
	metric := cleanName(name)
	if metric == "" {
		return "", false
	}

	merged := make(map[string]string, len(c.tags)+len(tags))
	for k, v := range c.tags {
		merged[k] = v
	}
	for k, v := range tags {
		if k = cleanTag(k); k != "" {
			merged[k] = cleanTag(v)
		}
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(c.prefix)
	b.WriteByte('.')
	b.WriteString(metric)
	b.WriteByte(':')
	b.WriteString(value)
	b.WriteByte('|')
	b.WriteString(kind)
	for i, k := range keys {
		if i == 0 {
			b.WriteString("|#")
		} else {
			b.WriteByte(',')
		}
		b.WriteString(k)
		if v := merged[k]; v != "" {
			b.WriteByte(':')
			b.WriteString(v)
		}
	}
	return b.String(), true
}

// cleanName lowercases name and maps anything outside [a-z0-9_.-] to '_'.
func cleanName(name string) string {
	n := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, strings.TrimSpace(name))
	for strings.Contains(n, "..") {
		n = strings.ReplaceAll(n, "..", ".")
	}
	return strings.Trim(n, "._")
}

// cleanTag strips the characters that delimit the tag section.
func cleanTag(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ',', '|', '#', ':', ' ', '\n':
			return '_'
		}
		return r
	}, strings.TrimSpace(s))
}
