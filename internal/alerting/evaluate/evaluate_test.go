package evaluate

import (
	"math"
	"testing"

	"github.com/novesfi/canton-sentinel/internal/alerting/rules"
)

func statsSnapshot() *Snapshot {
	return &Snapshot{
		Providers: []Provider{
			{Name: "provider1", PercentOfTotal: 26.05, TotalAmount: 2460654},
			{Name: "provider2", PercentOfTotal: 14.19, TotalAmount: 1340932},
			{Name: "provider3", PercentOfTotal: 10.50, TotalAmount: 992233},
			{Name: "provider4", PercentOfTotal: 8.20, TotalAmount: 774887},
			{Name: "provider5", PercentOfTotal: 7.15, TotalAmount: 675663},
		},
		NetworkTotal: 9449838.10,
	}
}

func TestConcentration(t *testing.T) {
	snap := statsSnapshot()

	res := Concentration(snap, rules.Clause{TopN: 2, ThresholdPct: 50})
	if math.Abs(res.Concentration-40.24) > 0.001 {
		t.Fatalf("top2 concentration = %v, want 40.24", res.Concentration)
	}
	if res.Triggered {
		t.Fatal("40.24 vs 50 should not trigger")
	}

	res = Concentration(snap, rules.Clause{TopN: 2, ThresholdPct: 40})
	if !res.Triggered {
		t.Fatal("40.24 vs 40 should trigger")
	}

	res = Concentration(snap, rules.Clause{TopN: 3, ThresholdPct: 60})
	if math.Abs(res.Concentration-50.74) > 0.001 || res.Triggered {
		t.Fatalf("top3 = %v triggered=%v, want 50.74 untriggered", res.Concentration, res.Triggered)
	}
}

func TestConcentrationStrictGreaterThan(t *testing.T) {
	snap := &Snapshot{Providers: []Provider{{Name: "p1", PercentOfTotal: 50}}}
	if Concentration(snap, rules.Clause{TopN: 1, ThresholdPct: 50}).Triggered {
		t.Fatal("equality must not trigger")
	}
}

func TestConcentrationPartialData(t *testing.T) {
	// an immature network with fewer providers than TopN is valid
	snap := &Snapshot{Providers: []Provider{
		{Name: "p1", PercentOfTotal: 60},
		{Name: "p2", PercentOfTotal: 30},
	}}
	res := Concentration(snap, rules.Clause{TopN: 5, ThresholdPct: 80})
	if math.Abs(res.Concentration-90) > 0.001 {
		t.Fatalf("partial sum = %v, want 90", res.Concentration)
	}
	if !res.Triggered {
		t.Fatal("90 vs 80 should trigger")
	}
	if len(res.Providers) != 2 {
		t.Fatalf("contributing providers = %d, want 2", len(res.Providers))
	}
}

func TestConcentrationPure(t *testing.T) {
	snap := statsSnapshot()
	c := rules.Clause{TopN: 2, ThresholdPct: 50}
	a, b := Concentration(snap, c), Concentration(snap, c)
	if a.Concentration != b.Concentration || a.Triggered != b.Triggered {
		t.Fatalf("repeated evaluation differs: %v vs %v", a, b)
	}
}

func trafficClause(period string, threshold float64) rules.ChangeClause {
	return rules.ChangeClause{MetricA: "est_traffic", MetricB: "gross", Period: period, ThresholdPct: threshold}
}

func TestChange(t *testing.T) {
	snap := &Snapshot{Periods: map[string]PeriodMetrics{
		"Latest Round": {Gross: 10, EstTraffic: 12.5},
	}}
	res := Change(snap, trafficClause("Latest Round", 0))
	if !res.Defined || !res.Triggered {
		t.Fatalf("defined=%v triggered=%v, want true/true", res.Defined, res.Triggered)
	}
	if math.Abs(res.DeltaPct-25) > 0.001 {
		t.Fatalf("delta = %v, want +25", res.DeltaPct)
	}
}

func TestChangeKeepsDirection(t *testing.T) {
	snap := &Snapshot{Periods: map[string]PeriodMetrics{
		"1-Hour Average": {Gross: 20, EstTraffic: 15},
	}}
	res := Change(snap, trafficClause("1-Hour Average", 10))
	if math.Abs(res.DeltaPct-(-25)) > 0.001 {
		t.Fatalf("delta = %v, want -25", res.DeltaPct)
	}
	// magnitude 25 > threshold 10 triggers regardless of direction
	if !res.Triggered {
		t.Fatal("magnitude above threshold should trigger")
	}
}

func TestChangeZeroBaseline(t *testing.T) {
	snap := &Snapshot{Periods: map[string]PeriodMetrics{
		"Latest Round": {Gross: 0, EstTraffic: 5},
	}}
	res := Change(snap, trafficClause("Latest Round", 0))
	if res.Defined || res.Triggered {
		t.Fatalf("zero baseline must be undefined and untriggered, got %+v", res)
	}
}

func TestChangeMissingPeriod(t *testing.T) {
	snap := &Snapshot{Periods: map[string]PeriodMetrics{}}
	res := Change(snap, trafficClause("Latest Round", 0))
	if res.Defined || res.Triggered {
		t.Fatalf("missing period must be undefined, got %+v", res)
	}
}
