package notify

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/novesfi/canton-sentinel/internal/metrics"
)

// Outcome records one delivery attempt.
type Outcome struct {
	ID      string
	Channel string
	Target  string
	Err     error
}

// Router dispatches a message to the primary push channel and the team
// channel family, applying the instance's audience exclusions. Routing
// is fire-and-collect: one attempt per target, failures isolated per
// target.
type Router struct {
	push       Pusher
	pushTarget string
	team       Pusher
	channels   []string
	recipients []string
}

// NewRouter wires the configured channels. Either pusher may be nil
// when its channel is not configured.
func NewRouter(push Pusher, pushTarget string, team Pusher, channels, recipients []string) *Router {
	return &Router{
		push:       push,
		pushTarget: pushTarget,
		team:       team,
		channels:   channels,
		recipients: recipients,
	}
}

// Route delivers title/body to every target the audience allows and
// collects per-target outcomes. A failure on one target never prevents
// delivery to the others.
func (r *Router) Route(ctx context.Context, aud Audience, title, body string, priority int) []Outcome {
	var out []Outcome

	if r.push != nil && !aud.SkipPush {
		out = append(out, r.attempt(ctx, r.push, r.pushTarget, title, body, priority))
	}

	if r.team != nil {
		for _, ch := range r.channels {
			if aud.ExcludesChannel(ch) {
				continue
			}
			out = append(out, r.attempt(ctx, r.team, ch, title, body, priority))
		}
		for _, rcpt := range r.recipients {
			if aud.ExcludesRecipient(rcpt) {
				continue
			}
			out = append(out, r.attempt(ctx, r.team, rcpt, title, body, priority))
		}
	}

	return out
}

func (r *Router) attempt(ctx context.Context, p Pusher, target, title, body string, priority int) Outcome {
	o := Outcome{ID: uuid.NewString(), Channel: p.Name(), Target: target}
	o.Err = p.Deliver(ctx, target, title, body, priority)
	if o.Err != nil {
		metrics.DeliveriesTotal.WithLabelValues(o.Channel, "error").Inc()
		log.Error().Err(o.Err).Str("delivery", o.ID).Str("channel", o.Channel).Str("target", target).
			Msg("delivery failed")
	} else {
		metrics.DeliveriesTotal.WithLabelValues(o.Channel, "ok").Inc()
		log.Debug().Str("delivery", o.ID).Str("channel", o.Channel).Str("target", target).
			Msg("delivered")
	}
	return o
}

func splitSet(csv string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, tok := range strings.Split(csv, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		out[tok] = struct{}{}
	}
	return out
}

// SplitList parses a comma-separated configuration list, trimming
// tokens and dropping empty entries.
func SplitList(csv string) []string {
	var out []string
	for _, tok := range strings.Split(csv, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		out = append(out, tok)
	}
	return out
}
