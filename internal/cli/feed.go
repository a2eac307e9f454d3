package cli

import (
	"sync"

	"github.com/inovacc/gitroster/internal/registry"
)

// EventFeed forwards registry events into a channel a Bubbletea program
// can read from.
type EventFeed struct {
	C <-chan registry.Event

	ch     chan registry.Event
	stop   chan struct{}
	cancel func()
	once   sync.Once
}

// NewEventFeed subscribes to reg. Call Stop when the view is gone.
func NewEventFeed(reg *registry.Registry) *EventFeed {
	f := &EventFeed{
		ch:   make(chan registry.Event, 64),
		stop: make(chan struct{}),
	}
	f.C = f.ch

	f.cancel = reg.Subscribe(func(ev registry.Event) {
		select {
		case f.ch <- ev:
		case <-f.stop:
		}
	})

	return f
}

// Stop unsubscribes. Events sent after Stop are dropped.
func (f *EventFeed) Stop() {
	f.once.Do(func() {
		close(f.stop)
		f.cancel()
	})
}
