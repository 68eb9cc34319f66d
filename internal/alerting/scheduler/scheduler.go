// Package scheduler drives each alert instance's evaluation cycle on
// its own interval.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/novesfi/canton-sentinel/internal/alerting/history"
	"github.com/novesfi/canton-sentinel/internal/alerting/notify"
	"github.com/novesfi/canton-sentinel/internal/alerting/registry"
	"github.com/novesfi/canton-sentinel/internal/alerting/state"
	"github.com/novesfi/canton-sentinel/internal/metrics"
)

// Deps holds everything a cycle needs beyond the instance itself.
type Deps struct {
	Engine       *state.Engine
	Router       *notify.Router
	History      *history.Writer
	CycleTimeout time.Duration
}

// Run starts one goroutine per instance and blocks until every
// in-flight cycle has finished after ctx is cancelled. Each instance's
// cycles run strictly sequentially: the owning goroutine is the only
// place its identity is evaluated, so overlap is impossible. A fire
// that arrives mid-cycle is absorbed by the ticker; the overrun is
// logged.
func Run(ctx context.Context, instances []*registry.Instance, deps Deps) {
	if deps.CycleTimeout <= 0 {
		deps.CycleTimeout = time.Minute
	}
	var wg sync.WaitGroup
	for _, inst := range instances {
		wg.Add(1)
		go func(inst *registry.Instance) {
			defer wg.Done()
			runLoop(ctx, inst, deps)
		}(inst)
	}
	wg.Wait()
}

func runLoop(ctx context.Context, inst *registry.Instance, deps Deps) {
	log.Info().Str("instance", inst.ID.String()).Str("name", inst.Name).
		Dur("interval", inst.Interval).Msg("alert instance scheduled")

	t := time.NewTicker(inst.Interval)
	defer t.Stop()

	// run once immediately on startup
	runCycle(ctx, inst, deps)

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("instance", inst.ID.String()).Msg("alert instance stopped")
			return
		case <-t.C:
			started := time.Now()
			runCycle(ctx, inst, deps)
			if elapsed := time.Since(started); elapsed > inst.Interval {
				log.Warn().Str("instance", inst.ID.String()).Dur("elapsed", elapsed).
					Dur("interval", inst.Interval).Msg("cycle overran its interval, next fire skipped")
			}
		}
	}
}

// runCycle executes one fetch → evaluate → decide → notify → persist
// sequence. A fetch failure aborts the cycle with state untouched; the
// state write happens last and only when the transition changed it.
func runCycle(ctx context.Context, inst *registry.Instance, deps Deps) {
	cctx, cancel := context.WithTimeout(ctx, deps.CycleTimeout)
	defer cancel()

	id := inst.ID
	rep, err := inst.Check.Run(cctx)
	if err != nil {
		metrics.CyclesTotal.WithLabelValues(id.Family, "fetch_error").Inc()
		log.Error().Err(err).Str("instance", id.String()).Str("phase", "fetch").
			Msg("cycle aborted, state untouched")
		return
	}
	metrics.CyclesTotal.WithLabelValues(id.Family, "ok").Inc()

	var d state.Decision
	if inst.AlwaysEmit {
		d = state.Decision{Emit: state.EmitFired, Priority: state.PriorityInfo}
	} else {
		d = deps.Engine.Decide(cctx, id, rep.AnyTriggered)
	}

	if d.Emit != state.EmitNone {
		kind := d.Emit.String()
		if inst.AlwaysEmit {
			kind = "report"
		}
		metrics.EmitsTotal.WithLabelValues(id.Family, kind).Inc()
		title := emitTitle(inst, d.Emit)
		outcomes := deps.Router.Route(cctx, inst.Audience, title, rep.Summary, d.Priority)
		failed := 0
		for _, o := range outcomes {
			if o.Err != nil {
				failed++
			}
		}
		log.Info().Str("instance", id.String()).Str("kind", kind).
			Int("targets", len(outcomes)).Int("failed", failed).Msg("notification routed")
	}

	if err := deps.History.Write(cctx, id, rep.Snapshot, rep.AnyTriggered); err != nil {
		log.Error().Err(err).Str("instance", id.String()).Str("phase", "history").
			Msg("snapshot write failed")
	}

	if !inst.AlwaysEmit {
		deps.Engine.Commit(cctx, id, d)
	}
}

func emitTitle(inst *registry.Instance, kind state.EmitKind) string {
	switch kind {
	case state.EmitResolved:
		return "✅ Resolved: " + inst.Name
	default:
		if inst.AlwaysEmit {
			return inst.Name
		}
		return "⚠️ " + inst.Name
	}
}
