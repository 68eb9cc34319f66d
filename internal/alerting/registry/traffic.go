package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/novesfi/canton-sentinel/internal/alerting/evaluate"
	"github.com/novesfi/canton-sentinel/internal/alerting/rules"
	"github.com/novesfi/canton-sentinel/internal/alerting/source"
)

// trafficCheck compares estimated traffic against gross rewards per
// reporting period.
type trafficCheck struct {
	src     *source.RewardsClient
	clauses []rules.ChangeClause
}

func (c *trafficCheck) Run(ctx context.Context) (*Report, error) {
	snap, err := c.src.TrafficSummary(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]evaluate.ChangeResult, 0, len(c.clauses))
	any := false
	for _, cl := range c.clauses {
		res := evaluate.Change(snap, cl)
		if res.Triggered {
			any = true
		}
		results = append(results, res)
	}
	return &Report{
		AnyTriggered: any,
		Summary:      formatTraffic(results),
		Snapshot:     snap,
	}, nil
}

func formatTraffic(results []evaluate.ChangeResult) string {
	var b strings.Builder
	for _, r := range results {
		switch {
		case !r.Defined:
			fmt.Fprintf(&b, "%s: no baseline, skipped\n", r.Clause.Period)
		case r.Triggered:
			diff := r.Latest - r.Baseline
			fmt.Fprintf(&b, "%s: %s (%.2f) deviates from %s (%.2f) by %+.2f CC (%+.1f%%)\n",
				r.Clause.Period, r.Clause.MetricA, r.Latest, r.Clause.MetricB, r.Baseline, diff, r.DeltaPct)
		default:
			fmt.Fprintf(&b, "%s: %s (%.2f) within %g%% of %s (%.2f)\n",
				r.Clause.Period, r.Clause.MetricA, r.Latest, r.Clause.ThresholdPct, r.Clause.MetricB, r.Baseline)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
