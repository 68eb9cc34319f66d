package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/novesfi/canton-sentinel/internal/alerting/evaluate"
	"github.com/novesfi/canton-sentinel/internal/alerting/rules"
	"github.com/novesfi/canton-sentinel/internal/alerting/source"
)

// concentrationCheck evaluates a rule set against the FAAM provider
// shares for one time window.
type concentrationCheck struct {
	src         *source.FAAMClient
	name        string
	rules       rules.RuleSet
	windowHours int
	limit       int
}

func (c *concentrationCheck) Run(ctx context.Context) (*Report, error) {
	snap, err := c.src.ProviderStats(ctx, c.windowHours, c.limit)
	if err != nil {
		return nil, err
	}
	results := make([]evaluate.ClauseResult, 0, len(c.rules))
	any := false
	for _, cl := range c.rules {
		res := evaluate.Concentration(snap, cl)
		if res.Triggered {
			any = true
		}
		results = append(results, res)
	}
	return &Report{
		AnyTriggered: any,
		Summary:      formatConcentration(c.name, c.windowHours, results, snap),
		Snapshot:     snap,
	}, nil
}

// formatConcentration lists every clause in parse order, flags the
// triggered ones, and appends the contributing provider breakdown.
func formatConcentration(name string, windowHours int, results []evaluate.ClauseResult, snap *evaluate.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%dh window)\n", name, windowHours)

	var widest []evaluate.Provider
	for _, r := range results {
		marker := "✓"
		if r.Triggered {
			marker = "⚠️"
		}
		fmt.Fprintf(&b, "%s Top %d: %.2f%% vs %g%% threshold\n", marker, r.Clause.TopN, r.Concentration, r.Clause.ThresholdPct)
		if len(r.Providers) > len(widest) {
			widest = r.Providers
		}
	}

	if len(widest) > 0 {
		b.WriteString("\nProviders:\n")
		for _, p := range widest {
			fmt.Fprintf(&b, "  %s: %.2f%% ($%s)\n", p.Name, p.PercentOfTotal, groupThousands(p.TotalAmount))
		}
	}
	if snap.NetworkTotal > 0 {
		fmt.Fprintf(&b, "\nNetwork total: $%s\n", groupThousands(snap.NetworkTotal))
	}
	if !snap.Window.From.IsZero() {
		fmt.Fprintf(&b, "Window: %s → %s\n",
			snap.Window.From.UTC().Format("2006-01-02 15:04"),
			snap.Window.To.UTC().Format("2006-01-02 15:04"))
	}
	return strings.TrimRight(b.String(), "\n")
}

// groupThousands renders an amount with comma separators, dropping the
// fraction.
func groupThousands(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%.0f", v)
	n := len(s)
	if n > 3 {
		var b strings.Builder
		head := n % 3
		if head > 0 {
			b.WriteString(s[:head])
		}
		for i := head; i < n; i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(s[i : i+3])
		}
		s = b.String()
	}
	if neg {
		return "-" + s
	}
	return s
}
