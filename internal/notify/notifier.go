// Package notify pushes planner alerts to external messengers. Today that is
// a single alert kind, fired when a move overloads a day's capacity.
package notify

import (
	"context"
	"fmt"

	"github.com/gosuda/tempora/internal/planner"
)

// Sender delivers a plain-text message to a channel.
type Sender interface {
	Send(ctx context.Context, channel, text string) error
}

// Notifier formats planner alerts and hands them to a Sender.
type Notifier struct {
	sender  Sender
	channel string
}

// New creates a Notifier posting to the given channel.
func New(sender Sender, channel string) *Notifier {
	return &Notifier{sender: sender, channel: channel}
}

// NotifyOverCapacity reports a day whose planned work exceeds its capacity.
func (n *Notifier) NotifyOverCapacity(ctx context.Context, userEmail, day string, util planner.Utilization) error {
	text := fmt.Sprintf(
		":warning: %s overbooked %s: %d minutes planned (%.0f%% of capacity)",
		userEmail, day, util.UsedMinutes, util.Percent,
	)

	if err := n.sender.Send(ctx, n.channel, text); err != nil {
		return fmt.Errorf("notify.Notifier.NotifyOverCapacity: %w", err)
	}
	return nil
}
