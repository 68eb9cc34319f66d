package registry

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/novesfi/canton-sentinel/internal/alerting/evaluate"
	"github.com/novesfi/canton-sentinel/internal/alerting/notify"
	"github.com/novesfi/canton-sentinel/internal/alerting/source"
)

// reportCheck produces the periodic concentration status report. It
// never triggers the state machine; the owning instance always emits at
// informational priority.
type reportCheck struct {
	src         *source.FAAMClient
	windowHours int
	showTopX    []int
	breakdown   int
}

func (c *reportCheck) Run(ctx context.Context) (*Report, error) {
	snap, err := c.src.ProviderStats(ctx, c.windowHours, 0)
	if err != nil {
		return nil, err
	}
	return &Report{
		AnyTriggered: false,
		Summary:      formatStatusReport(snap, c.showTopX, c.breakdown, c.windowHours),
		Snapshot:     snap,
	}, nil
}

func formatStatusReport(snap *evaluate.Snapshot, showTopX []int, breakdown, windowHours int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "FAAM Concentration Report (%dh window)\n\n", windowHours)

	for _, x := range showTopX {
		if x > len(snap.Providers) {
			fmt.Fprintf(&b, "Top %2d: N/A (%d providers)\n", x, len(snap.Providers))
			continue
		}
		var sum float64
		for _, p := range snap.Providers[:x] {
			sum += p.PercentOfTotal
		}
		fmt.Fprintf(&b, "Top %2d: %6.2f%%\n", x, sum)
	}

	k := breakdown
	if k > len(snap.Providers) {
		k = len(snap.Providers)
	}
	if k > 0 {
		fmt.Fprintf(&b, "\nBreakdown (Top %d):\n", breakdown)
		for _, p := range snap.Providers[:k] {
			fmt.Fprintf(&b, "  %s: %.2f%% ($%s)\n", p.Name, p.PercentOfTotal, groupThousands(p.TotalAmount))
		}
	}
	if snap.NetworkTotal > 0 {
		fmt.Fprintf(&b, "\nNetwork total: $%s", groupThousands(snap.NetworkTotal))
	}
	return strings.TrimRight(b.String(), "\n")
}

// parseTopX parses a comma-separated list of top-X counts.
func parseTopX(csv string) ([]int, error) {
	tokens := notify.SplitList(csv)
	if len(tokens) == 0 {
		return []int{5, 10, 20}, nil
	}
	out := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		x, err := strconv.Atoi(tok)
		if err != nil || x < 1 {
			return nil, fmt.Errorf("invalid top-X count %q", tok)
		}
		out = append(out, x)
	}
	return out, nil
}
