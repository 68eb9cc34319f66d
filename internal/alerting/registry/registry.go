// Package registry turns declarative configuration into the set of
// running alert instances.
package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/novesfi/canton-sentinel/internal/alerting/evaluate"
	"github.com/novesfi/canton-sentinel/internal/alerting/notify"
	"github.com/novesfi/canton-sentinel/internal/alerting/rules"
	"github.com/novesfi/canton-sentinel/internal/alerting/source"
	"github.com/novesfi/canton-sentinel/internal/alerting/state"
	"github.com/novesfi/canton-sentinel/internal/config"
)

// Report is the outcome of one evaluation: the aggregate verdict plus
// the formatted message body, clause order preserved.
type Report struct {
	AnyTriggered bool
	Summary      string
	Snapshot     *evaluate.Snapshot
}

// Check is the family-specific fetch-and-evaluate step of a cycle.
type Check interface {
	Run(ctx context.Context) (*Report, error)
}

// Instance is one configured, independently scheduled alert.
// Constructed once at startup and immutable thereafter.
type Instance struct {
	ID       state.InstanceID
	Name     string
	Interval time.Duration
	Audience notify.Audience
	// AlwaysEmit bypasses the state machine: every successful cycle
	// emits at informational priority (status reports).
	AlwaysEmit bool
	Check      Check
}

// Deps are the external capabilities instances are bound to.
type Deps struct {
	FAAM    *source.FAAMClient
	Rewards *source.RewardsClient
}

// ConfigError marks one instance that could not be constructed. It is
// surfaced to the operator and never fatal to the rest of the registry.
type ConfigError struct {
	Instance state.InstanceID
	Err      error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("alert instance %s: %v", e.Instance, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Load constructs every enabled alert instance. Invalid instances are
// skipped and reported in the returned error slice; valid instances
// load regardless.
func Load(cfg *config.Config, deps Deps) ([]*Instance, []error) {
	var instances []*Instance
	var errs []error

	if cfg.Alerts.Traffic.Enabled {
		inst, err := buildTraffic(&cfg.Alerts.Traffic, deps.Rewards)
		if err != nil {
			errs = append(errs, err)
		} else {
			instances = append(instances, inst)
		}
	}

	for i, ic := range cfg.Alerts.Concentration.Instances {
		if !ic.Enabled {
			continue
		}
		inst, err := buildConcentration(i+1, &ic, deps.FAAM)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		instances = append(instances, inst)
	}

	if cfg.Alerts.Report.Enabled {
		inst, err := buildReport(&cfg.Alerts.Report, deps.FAAM)
		if err != nil {
			errs = append(errs, err)
		} else {
			instances = append(instances, inst)
		}
	}

	return instances, errs
}

func buildTraffic(tc *config.TrafficConfig, src *source.RewardsClient) (*Instance, error) {
	id := state.InstanceID{Family: "traffic"}
	if tc.IntervalMinutes < 1 {
		return nil, &ConfigError{Instance: id, Err: fmt.Errorf("interval must be a positive number of minutes, got %d", tc.IntervalMinutes)}
	}
	periods := notify.SplitList(tc.Periods)
	if len(periods) == 0 {
		return nil, &ConfigError{Instance: id, Err: fmt.Errorf("no reporting periods configured")}
	}
	clauses := make([]rules.ChangeClause, 0, len(periods))
	for _, p := range periods {
		clauses = append(clauses, rules.ChangeClause{
			MetricA:      "est_traffic",
			MetricB:      "gross",
			Period:       p,
			ThresholdPct: tc.ThresholdPct,
		})
	}
	return &Instance{
		ID:       id,
		Name:     "Canton Traffic Monitor",
		Interval: time.Duration(tc.IntervalMinutes) * time.Minute,
		Audience: newAudience(tc.Audience),
		Check:    &trafficCheck{src: src, clauses: clauses},
	}, nil
}

func buildConcentration(index int, ic *config.ConcentrationInstance, src *source.FAAMClient) (*Instance, error) {
	id := state.InstanceID{Family: "concentration", Index: index}
	if ic.IntervalMinutes < 1 {
		return nil, &ConfigError{Instance: id, Err: fmt.Errorf("interval must be a positive number of minutes, got %d", ic.IntervalMinutes)}
	}
	if ic.TimeWindowHours < 1 {
		return nil, &ConfigError{Instance: id, Err: fmt.Errorf("time window must be a positive number of hours, got %d", ic.TimeWindowHours)}
	}
	ruleStr := ic.Rules
	if ruleStr == "" {
		ruleStr = config.DefaultConcentrationRules
	}
	rs, err := rules.Parse(ruleStr)
	if err != nil {
		return nil, &ConfigError{Instance: id, Err: err}
	}
	return &Instance{
		ID:       id,
		Name:     ic.Name,
		Interval: time.Duration(ic.IntervalMinutes) * time.Minute,
		Audience: newAudience(ic.Audience),
		Check: &concentrationCheck{
			src:         src,
			name:        ic.Name,
			rules:       rs,
			windowHours: ic.TimeWindowHours,
			limit:       ic.ProviderLimit,
		},
	}, nil
}

func buildReport(rc *config.ReportConfig, src *source.FAAMClient) (*Instance, error) {
	id := state.InstanceID{Family: "report"}
	if rc.IntervalMinutes < 1 {
		return nil, &ConfigError{Instance: id, Err: fmt.Errorf("interval must be a positive number of minutes, got %d", rc.IntervalMinutes)}
	}
	if rc.TimeWindowHours < 1 {
		return nil, &ConfigError{Instance: id, Err: fmt.Errorf("time window must be a positive number of hours, got %d", rc.TimeWindowHours)}
	}
	showTopX, err := parseTopX(rc.ShowTopX)
	if err != nil {
		return nil, &ConfigError{Instance: id, Err: err}
	}
	breakdown := rc.BreakdownCount
	if breakdown < 1 {
		breakdown = 5
	}
	return &Instance{
		ID:         id,
		Name:       "FAAM Status Report",
		Interval:   time.Duration(rc.IntervalMinutes) * time.Minute,
		Audience:   newAudience(rc.Audience),
		AlwaysEmit: true,
		Check: &reportCheck{
			src:         src,
			windowHours: rc.TimeWindowHours,
			showTopX:    showTopX,
			breakdown:   breakdown,
		},
	}, nil
}

func newAudience(ac config.AudienceConfig) notify.Audience {
	return notify.NewAudience(ac.ExcludePushover, ac.ExcludeTelegramChannels, ac.ExcludeTelegramRecipients)
}
