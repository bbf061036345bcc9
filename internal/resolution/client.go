// Package resolution reads market state from the exchange metadata API:
// the current outcome price while a market trades, and the terminal
// outcome once it settles.
package resolution

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Solmidey/polymarket-insider/internal/attribution"
)

// gammaMarket is the subset of the metadata API market object the
// reviewer needs. Outcome name and price arrays arrive double-encoded
// as JSON strings.
type gammaMarket struct {
	ConditionID   string          `json:"conditionId"`
	Question      string          `json:"question"`
	Closed        bool            `json:"closed"`
	Outcomes      json.RawMessage `json:"outcomes"`
	OutcomePrices json.RawMessage `json:"outcomePrices"`
	EndDate       string          `json:"endDate"`
}

// Client queries the metadata API. It implements
// attribution.MarketSource.
type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

var _ attribution.MarketSource = (*Client)(nil)

// NewClient creates a metadata API client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
}

// State returns the market's current state for the given outcome.
func (c *Client) State(ctx context.Context, marketID, outcome string) (*attribution.MarketState, error) {
	m, err := c.fetchMarket(ctx, marketID)
	if err != nil {
		return nil, err
	}

	names, err := parseStringArray(m.Outcomes)
	if err != nil {
		return nil, fmt.Errorf("parse outcomes: %w", err)
	}
	prices, err := parseFloatArray(m.OutcomePrices)
	if err != nil {
		return nil, fmt.Errorf("parse outcome prices: %w", err)
	}
	if len(names) != len(prices) || len(names) == 0 {
		return nil, fmt.Errorf("market %s has %d outcomes but %d prices", marketID, len(names), len(prices))
	}

	price, ok := outcomePrice(names, prices, outcome)
	if !ok {
		return nil, fmt.Errorf("market %s has no outcome %q", marketID, outcome)
	}

	state := &attribution.MarketState{
		Price: price,
		AsOf:  c.now().Unix(),
	}
	if !m.Closed {
		return state, nil
	}

	state.Resolved = true
	state.ResolutionPrice = price
	state.ResolvedOutcome = winningOutcome(names, prices)
	state.ResolutionTime = c.resolutionTime(m.EndDate)
	return state, nil
}

func (c *Client) fetchMarket(ctx context.Context, marketID string) (*gammaMarket, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid metadata url: %w", err)
	}
	u.Path = "/markets"
	q := u.Query()
	q.Set("condition_ids", marketID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch market: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("metadata api returned %d: %s", resp.StatusCode, body)
	}

	var markets []gammaMarket
	if err := json.NewDecoder(resp.Body).Decode(&markets); err != nil {
		return nil, fmt.Errorf("decode market: %w", err)
	}
	if len(markets) == 0 {
		return nil, fmt.Errorf("market %s not found", marketID)
	}
	return &markets[0], nil
}

// resolutionTime parses the market end date, falling back to the
// current time when the field is missing or malformed.
func (c *Client) resolutionTime(endDate string) int64 {
	if endDate == "" {
		return c.now().Unix()
	}
	t, err := time.Parse(time.RFC3339, endDate)
	if err != nil {
		return c.now().Unix()
	}
	return t.Unix()
}

func outcomePrice(names []string, prices []float64, outcome string) (float64, bool) {
	for i, name := range names {
		if strings.EqualFold(name, outcome) {
			return prices[i], true
		}
	}
	return 0, false
}

// winningOutcome picks the outcome priced above 0.5 once the market
// settles.
func winningOutcome(names []string, prices []float64) string {
	for i, p := range prices {
		if p > 0.5 {
			return names[i]
		}
	}
	return "UNKNOWN"
}

// parseStringArray unwraps the double-encoded outcome list: a JSON
// string whose content is itself a JSON array.
func parseStringArray(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	data := []byte(raw)
	var inner string
	if err := json.Unmarshal(raw, &inner); err == nil {
		data = []byte(inner)
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func parseFloatArray(raw json.RawMessage) ([]float64, error) {
	strs, err := parseStringArray(raw)
	if err == nil {
		out := make([]float64, len(strs))
		for i, s := range strs {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}

	data := []byte(raw)
	var inner string
	if err := json.Unmarshal(raw, &inner); err == nil {
		data = []byte(inner)
	}
	var out []float64
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
