package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Solmidey/polymarket-insider/internal/domain"
)

// FeedClient polls the exchange data API for recent trades.
type FeedClient struct {
	baseURL string
	http    *http.Client
}

// NewFeedClient creates a polling client for the given data API base URL.
func NewFeedClient(baseURL string) *FeedClient {
	return &FeedClient{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// RecentTrades fetches up to limit trades newer than the after cursor,
// normalized. The cursor goes to the server so a burst larger than
// limit is not truncated to the newest page; trades at or before the
// cursor are also dropped client-side in case the server ignores it.
func (c *FeedClient) RecentTrades(ctx context.Context, limit int, after int64) ([]*domain.Trade, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid feed url: %w", err)
	}
	u.Path = "/trades"

	q := u.Query()
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if after > 0 {
		q.Set("after", strconv.FormatInt(after, 10))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trades: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("feed returned %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	trades, err := Parse(body)
	if err != nil {
		return nil, err
	}

	if after > 0 {
		fresh := trades[:0]
		for _, t := range trades {
			if t.Timestamp > after {
				fresh = append(fresh, t)
			}
		}
		trades = fresh
	}
	return trades, nil
}
