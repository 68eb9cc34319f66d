// Package evaluate holds the metric snapshot model and the pure
// threshold evaluators applied to it.
package evaluate

import "time"

// Provider is one network participant's share of the total, as reported
// by the stats API. The API returns providers sorted descending by
// share; the evaluators trust that ordering and never re-sort.
type Provider struct {
	Name           string  `json:"provider"`
	PercentOfTotal float64 `json:"percent_of_total"`
	TotalAmount    float64 `json:"total_amount"`
}

// Window is the time range a snapshot covers.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// PeriodMetrics carries the gross and estimated-traffic values for one
// reporting period of the rewards summary.
type PeriodMetrics struct {
	Gross      float64 `json:"gross"`
	EstTraffic float64 `json:"est_traffic"`
}

// Snapshot is an immutable view of the metric source at one point in
// time. Exactly one of Providers or Periods is populated depending on
// which source produced it.
type Snapshot struct {
	TakenAt      time.Time                `json:"taken_at"`
	Providers    []Provider               `json:"providers,omitempty"`
	NetworkTotal float64                  `json:"network_total,omitempty"`
	Window       Window                   `json:"time_window"`
	Periods      map[string]PeriodMetrics `json:"periods,omitempty"`
}
