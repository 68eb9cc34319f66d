package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/novesfi/canton-sentinel/internal/alerting/evaluate"
)

// Reporting periods of the rewards summary.
const (
	PeriodLatestRound = "Latest Round"
	PeriodHourAvg     = "1-Hour Average"
	PeriodDayAvg      = "24-Hour Average"
)

// RewardsClient fetches the rewards summary: gross and estimated
// traffic per reporting period.
type RewardsClient struct {
	baseURL string
	client  *http.Client
}

func NewRewardsClient(baseURL string, timeout time.Duration) *RewardsClient {
	return &RewardsClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type rewardsSummaryResp struct {
	Periods map[string]evaluate.PeriodMetrics `json:"periods"`
}

// TrafficSummary returns the per-period gross/est_traffic snapshot.
func (c *RewardsClient) TrafficSummary(ctx context.Context) (*evaluate.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/summary", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rewards summary: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rewards summary status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	var body rewardsSummaryResp
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode rewards summary: %w", err)
	}
	return &evaluate.Snapshot{
		TakenAt: time.Now().UTC(),
		Periods: body.Periods,
	}, nil
}
