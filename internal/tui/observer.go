package tui

import "github.com/mmcdole/marquee/internal/domain"

// ChannelObserver adapts domain.Observer to a channel for Bubble Tea.
//
// Changes carry no data, so when a change is already queued a newer one is
// dropped: the queued one makes the view re-read the latest state anyway.
type ChannelObserver struct {
	ch chan<- domain.Change
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver(ch chan<- domain.Change) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// OnChange sends the change to the channel (non-blocking if full).
func (o *ChannelObserver) OnChange(change domain.Change) {
	select {
	case o.ch <- change:
	default: // Non-blocking if channel full
	}
}
