package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mkarlsson/surebet/internal/feed"
	"github.com/mkarlsson/surebet/internal/logging"
)

const defaultBaseURL = "https://api.the-odds-api.com/v4"

// Client talks to an Odds-API-compatible provider and normalizes its payload
// into feed events. Decimal odds are always requested so the engine never
// sees American prices.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	mu        sync.Mutex
	remaining int
	used      int
}

// Config provides optional overrides.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient builds a configured provider client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("oddsapi: API key is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		remaining:  -1,
	}, nil
}

func (c *Client) Name() string {
	return "oddsapi"
}

// RateLimits reports the provider quota from the most recent response.
// Remaining is -1 until the first call completes.
func (c *Client) RateLimits() (remaining, used int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining, c.used
}

type sportInfo struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

// ListSports returns the keys of all active sports.
func (c *Client) ListSports(ctx context.Context) ([]string, error) {
	u := fmt.Sprintf("%s/sports?apiKey=%s", c.baseURL, url.QueryEscape(c.apiKey))
	var sports []sportInfo
	if err := c.get(ctx, u, &sports); err != nil {
		return nil, fmt.Errorf("list sports: %w", err)
	}
	keys := make([]string, 0, len(sports))
	for _, s := range sports {
		if s.Active {
			keys = append(keys, s.Key)
		}
	}
	return keys, nil
}

// Fetch retrieves odds for each requested sport. Sports that fail are
// skipped with a log line so one bad sport cannot starve the rest.
func (c *Client) Fetch(ctx context.Context, opts feed.FetchOptions) ([]feed.Event, error) {
	sports := opts.Sports
	if len(sports) == 0 {
		var err error
		sports, err = c.ListSports(ctx)
		if err != nil {
			return nil, err
		}
	}
	regions := opts.Regions
	if len(regions) == 0 {
		regions = []string{"us", "uk", "eu"}
	}
	markets := opts.Markets
	if len(markets) == 0 {
		markets = []string{"h2h", "spreads", "totals"}
	}

	var events []feed.Event
	for _, sport := range sports {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		batch, err := c.fetchSport(ctx, sport, regions, markets)
		if err != nil {
			logging.Errorf("[oddsapi] skip sport %s: %v", sport, err)
			continue
		}
		events = append(events, batch...)
	}
	return events, nil
}

func (c *Client) fetchSport(ctx context.Context, sport string, regions, markets []string) ([]feed.Event, error) {
	u, _ := url.Parse(fmt.Sprintf("%s/sports/%s/odds", c.baseURL, url.PathEscape(sport)))
	q := u.Query()
	q.Set("apiKey", c.apiKey)
	q.Set("regions", strings.Join(regions, ","))
	q.Set("markets", strings.Join(markets, ","))
	q.Set("oddsFormat", "decimal")
	q.Set("dateFormat", "iso")
	u.RawQuery = q.Encode()

	var events []feed.Event
	if err := c.get(ctx, u.String(), &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.recordRateLimits(resp.Header)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) recordRateLimits(h http.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v := h.Get("X-Requests-Remaining"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.remaining = n
		}
	}
	if v := h.Get("X-Requests-Used"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.used = n
		}
	}
}
