package state

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/novesfi/canton-sentinel/internal/metrics"
)

// EmitKind classifies the notification a transition calls for.
type EmitKind int

const (
	EmitNone EmitKind = iota
	EmitFired
	EmitResolved
)

func (k EmitKind) String() string {
	switch k {
	case EmitFired:
		return "fired"
	case EmitResolved:
		return "resolved"
	default:
		return "none"
	}
}

// Priorities handed to the delivery channels. Interpretation is a
// channel concern.
const (
	PriorityInfo   = 0
	PriorityUrgent = 1
)

// Decision is the outcome of one transition step. Changed marks whether
// Commit should write Next; Degraded marks a cycle that fell back to
// always-emit because the store failed.
type Decision struct {
	Emit     EmitKind
	Priority int
	Next     Record
	Changed  bool
	Degraded bool
}

// Engine is the per-instance state machine. When disabled (state-change
// mode off) it is bypassed entirely: every triggered evaluation emits
// and nothing is persisted.
type Engine struct {
	store   Store
	enabled bool
}

func NewEngine(store Store, enabled bool) *Engine {
	if store == nil {
		store = NoopStore{}
	}
	return &Engine{store: store, enabled: enabled}
}

// Decide reads the prior state for id and applies the transition
// function to anyTriggered. It performs no writes; Commit persists the
// decision after the rest of the cycle (notification included) is done.
// A store read failure degrades to always-emit-on-trigger for this
// cycle only.
func (e *Engine) Decide(ctx context.Context, id InstanceID, anyTriggered bool) Decision {
	if !e.enabled {
		return bypassDecision(anyTriggered)
	}

	rec, found, err := e.store.Get(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("instance", id.String()).
			Msg("state store unavailable, degrading to always-emit for this cycle")
		metrics.StateStoreDegradations.Inc()
		d := bypassDecision(anyTriggered)
		d.Degraded = true
		return d
	}

	prev := StatusNormal
	if found {
		prev = rec.Status
	}

	d := Decision{Next: Record{Status: prev, UpdatedAt: time.Now().UTC()}}
	switch {
	case prev == StatusNormal && anyTriggered:
		d.Emit = EmitFired
		d.Priority = PriorityUrgent
		d.Next.Status = StatusTriggered
		d.Changed = true
	case prev == StatusTriggered && !anyTriggered:
		d.Emit = EmitResolved
		d.Priority = PriorityInfo
		d.Next.Status = StatusNormal
		d.Changed = true
	}
	return d
}

// Commit writes the new state when the transition actually changed it.
// Unchanged state is not rewritten. A write failure is logged and
// swallowed; the next cycle re-reads and re-decides, so at worst one
// duplicate notification is emitted.
func (e *Engine) Commit(ctx context.Context, id InstanceID, d Decision) {
	if !e.enabled || d.Degraded || !d.Changed {
		return
	}
	if err := e.store.Set(ctx, id, d.Next); err != nil {
		log.Error().Err(err).Str("instance", id.String()).Str("status", string(d.Next.Status)).
			Msg("state store write failed")
		metrics.StateStoreDegradations.Inc()
	}
}

func bypassDecision(anyTriggered bool) Decision {
	if anyTriggered {
		return Decision{Emit: EmitFired, Priority: PriorityUrgent}
	}
	return Decision{}
}
