package notify

import (
	"context"
	"errors"
	"testing"
)

type call struct {
	target   string
	title    string
	priority int
}

// fakePusher records calls and fails for targets listed in failOn.
type fakePusher struct {
	name   string
	calls  []call
	failOn map[string]bool
}

func (f *fakePusher) Name() string { return f.name }

func (f *fakePusher) Deliver(ctx context.Context, target, title, body string, priority int) error {
	f.calls = append(f.calls, call{target: target, title: title, priority: priority})
	if f.failOn[target] {
		return errors.New("unreachable")
	}
	return nil
}

func TestRouteBroadcast(t *testing.T) {
	push := &fakePusher{name: "pushover"}
	team := &fakePusher{name: "telegram"}
	r := NewRouter(push, "user-key", team, []string{"-100200", "-100300"}, []string{"4242"})

	out := r.Route(context.Background(), Audience{}, "title", "body", 1)
	if len(out) != 4 {
		t.Fatalf("outcomes = %d, want 4", len(out))
	}
	if len(push.calls) != 1 || push.calls[0].target != "user-key" {
		t.Fatalf("push calls = %+v", push.calls)
	}
	if len(team.calls) != 3 {
		t.Fatalf("team calls = %+v", team.calls)
	}
	for _, o := range out {
		if o.Err != nil {
			t.Fatalf("unexpected delivery error: %v", o.Err)
		}
		if o.ID == "" {
			t.Fatal("outcome missing id")
		}
	}
}

func TestRouteSkipPrimary(t *testing.T) {
	push := &fakePusher{name: "pushover"}
	team := &fakePusher{name: "telegram"}
	r := NewRouter(push, "user-key", team, []string{"-100200"}, []string{"4242"})

	aud := NewAudience(true, "", "")
	r.Route(context.Background(), aud, "title", "body", 1)
	if len(push.calls) != 0 {
		t.Fatalf("primary channel called despite exclusion flag: %+v", push.calls)
	}
	if len(team.calls) != 2 {
		t.Fatalf("team calls = %d, want every configured target", len(team.calls))
	}
}

func TestRouteExclusions(t *testing.T) {
	push := &fakePusher{name: "pushover"}
	team := &fakePusher{name: "telegram"}
	r := NewRouter(push, "user-key", team, []string{"-100200", "-100300"}, []string{"4242", "5353"})

	aud := NewAudience(false, " -100300 , ", "5353")
	r.Route(context.Background(), aud, "title", "body", 0)

	want := map[string]bool{"-100200": true, "4242": true}
	if len(team.calls) != len(want) {
		t.Fatalf("team calls = %+v, want targets %v", team.calls, want)
	}
	for _, c := range team.calls {
		if !want[c.target] {
			t.Fatalf("excluded target %q was delivered to", c.target)
		}
	}
}

func TestRoutePartialFailureIsolation(t *testing.T) {
	team := &fakePusher{name: "telegram", failOn: map[string]bool{"-100200": true}}
	r := NewRouter(nil, "", team, []string{"-100200", "-100300"}, nil)

	out := r.Route(context.Background(), Audience{}, "title", "body", 1)
	if len(out) != 2 || len(team.calls) != 2 {
		t.Fatalf("both targets must be attempted, outcomes=%d calls=%d", len(out), len(team.calls))
	}
	var failed, ok int
	for _, o := range out {
		if o.Err != nil {
			failed++
		} else {
			ok++
		}
	}
	if failed != 1 || ok != 1 {
		t.Fatalf("failed=%d ok=%d, want 1/1", failed, ok)
	}
}

func TestNewAudienceDropsEmptyTokens(t *testing.T) {
	aud := NewAudience(false, "a,, b ,", ",")
	if len(aud.ExcludedChannels) != 2 {
		t.Fatalf("channels = %v", aud.ExcludedChannels)
	}
	if !aud.ExcludesChannel("a") || !aud.ExcludesChannel("b") {
		t.Fatalf("trimmed tokens missing: %v", aud.ExcludedChannels)
	}
	if len(aud.ExcludedRecipients) != 0 {
		t.Fatalf("recipients = %v, want empty", aud.ExcludedRecipients)
	}
}
