package evaluate

import "github.com/novesfi/canton-sentinel/internal/alerting/rules"

// ClauseResult is the verdict for one concentration clause.
type ClauseResult struct {
	Clause        rules.Clause
	Concentration float64
	Triggered     bool
	// Providers is the slice that contributed to Concentration, for
	// message formatting.
	Providers []Provider
}

// ChangeResult is the verdict for one change-detection clause. Defined
// is false when the baseline is zero; an undefined result never
// triggers.
type ChangeResult struct {
	Clause    rules.ChangeClause
	Defined   bool
	Latest    float64
	Baseline  float64
	DeltaPct  float64 // signed; direction kept for formatting
	Triggered bool
}

// Concentration sums percent-of-total across the first TopN providers
// of the snapshot. Fewer than TopN providers is valid partial data and
// sums over however many exist. Triggering is strict greater-than.
func Concentration(snap *Snapshot, c rules.Clause) ClauseResult {
	n := c.TopN
	if n > len(snap.Providers) {
		n = len(snap.Providers)
	}
	top := snap.Providers[:n]
	var sum float64
	for _, p := range top {
		sum += p.PercentOfTotal
	}
	return ClauseResult{
		Clause:        c,
		Concentration: sum,
		Triggered:     sum > c.ThresholdPct,
		Providers:     top,
	}
}

// Change computes the percent deviation of MetricA from MetricB in the
// clause's period. A missing period or a zero baseline yields an
// undefined, non-triggered result.
func Change(snap *Snapshot, c rules.ChangeClause) ChangeResult {
	res := ChangeResult{Clause: c}
	pm, ok := snap.Periods[c.Period]
	if !ok {
		return res
	}
	latest := metricValue(pm, c.MetricA)
	baseline := metricValue(pm, c.MetricB)
	res.Latest = latest
	res.Baseline = baseline
	if baseline == 0 {
		return res
	}
	res.Defined = true
	res.DeltaPct = (latest - baseline) / baseline * 100
	magnitude := res.DeltaPct
	if magnitude < 0 {
		magnitude = -magnitude
	}
	res.Triggered = magnitude > c.ThresholdPct
	return res
}

func metricValue(pm PeriodMetrics, name string) float64 {
	switch name {
	case "est_traffic":
		return pm.EstTraffic
	case "gross":
		return pm.Gross
	default:
		return 0
	}
}
