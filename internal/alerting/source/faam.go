// Package source implements the HTTP clients that produce metric
// snapshots for the evaluators.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/novesfi/canton-sentinel/internal/alerting/evaluate"
)

// FAAMClient fetches featured-app activity marker statistics: provider
// shares over a time window, pre-sorted descending by the server.
type FAAMClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewFAAMClient(baseURL, apiKey string, timeout time.Duration) *FAAMClient {
	return &FAAMClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type faamStatsResp struct {
	Providers    []evaluate.Provider `json:"providers"`
	NetworkTotal float64             `json:"network_total"`
	TimeWindow   evaluate.Window     `json:"time_window"`
}

// ProviderStats returns a provider snapshot for the trailing window.
// limit bounds the number of providers returned; 0 means the server
// default.
func (c *FAAMClient) ProviderStats(ctx context.Context, windowHours, limit int) (*evaluate.Snapshot, error) {
	endpoint := fmt.Sprintf("%s/v1/faam/provider-stats?window_hours=%d", c.baseURL, windowHours)
	if limit > 0 {
		endpoint += "&limit=" + strconv.Itoa(limit)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch provider stats: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("provider stats status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	var body faamStatsResp
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode provider stats: %w", err)
	}
	return &evaluate.Snapshot{
		TakenAt:      time.Now().UTC(),
		Providers:    body.Providers,
		NetworkTotal: body.NetworkTotal,
		Window:       body.TimeWindow,
	}, nil
}
