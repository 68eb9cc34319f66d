// Package notify resolves alert audiences and dispatches messages to
// the configured delivery channels.
package notify

import "context"

// Pusher is one delivery capability. Implementations own their own
// timeout; a failed delivery is reported, never retried here.
type Pusher interface {
	Name() string
	Deliver(ctx context.Context, target, title, body string, priority int) error
}

// Audience is the per-instance exclusion set. The zero value means
// broadcast to every configured channel and recipient.
type Audience struct {
	SkipPush           bool
	ExcludedChannels   map[string]struct{}
	ExcludedRecipients map[string]struct{}
}

// ExcludesChannel reports whether a team channel is excluded.
func (a Audience) ExcludesChannel(name string) bool {
	_, ok := a.ExcludedChannels[name]
	return ok
}

// ExcludesRecipient reports whether an individual recipient is excluded.
func (a Audience) ExcludesRecipient(name string) bool {
	_, ok := a.ExcludedRecipients[name]
	return ok
}

// NewAudience builds an Audience from comma-separated exclusion lists.
// Tokens are trimmed and empty entries dropped.
func NewAudience(skipPush bool, excludedChannels, excludedRecipients string) Audience {
	return Audience{
		SkipPush:           skipPush,
		ExcludedChannels:   splitSet(excludedChannels),
		ExcludedRecipients: splitSet(excludedRecipients),
	}
}
