package registry

import (
	"sync"

	"github.com/inovacc/gitroster/internal/engine"
	"github.com/inovacc/gitroster/internal/model"
)

// EventKind classifies registry events.
type EventKind int

const (
	// EventAdded is emitted after a repository was added.
	EventAdded EventKind = iota
	// EventRemoved is emitted after a repository was removed.
	EventRemoved
	// EventChanged is emitted for every status change made by a clone or pull.
	EventChanged
	// EventLoaded is emitted after the sequence was replaced by Load.
	EventLoaded
	// EventWarning reports a non-fatal failure such as a failed save.
	EventWarning
)

func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	case EventChanged:
		return "changed"
	case EventLoaded:
		return "loaded"
	case EventWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers. Snapshot is empty for EventLoaded and
// for warnings that are not tied to one repository.
type Event struct {
	Kind     EventKind
	Snapshot model.Snapshot
	Op       engine.Op
	Final    bool
	Err      error
	Message  string
}

// dispatcher delivers events to subscribers from a single goroutine, in the
// order they were queued. Queuing never blocks the caller.
type dispatcher struct {
	mu     sync.Mutex
	queue  []Event
	subs   map[int]func(Event)
	nextID int
	closed bool

	wake chan struct{}
	done chan struct{}
}

func newDispatcher() *dispatcher {
	d := &dispatcher{
		subs: make(map[int]func(Event)),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}

	go d.loop()

	return d
}

func (d *dispatcher) subscribe(fn func(Event)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextID
	d.nextID++
	d.subs[id] = fn

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.subs, id)
	}
}

func (d *dispatcher) emit(ev Event) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}

	d.queue = append(d.queue, ev)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// close stops accepting events and waits until the queue is drained.
func (d *dispatcher) close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done

		return
	}

	d.closed = true
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}

	<-d.done
}

func (d *dispatcher) loop() {
	defer close(d.done)

	for range d.wake {
		for {
			d.mu.Lock()
			if len(d.queue) == 0 {
				closed := d.closed
				d.mu.Unlock()

				if closed {
					return
				}

				break
			}

			ev := d.queue[0]
			d.queue = d.queue[1:]

			subs := make([]func(Event), 0, len(d.subs))
			for id := 0; id < d.nextID; id++ {
				if fn, ok := d.subs[id]; ok {
					subs = append(subs, fn)
				}
			}
			d.mu.Unlock()

			for _, fn := range subs {
				fn(ev)
			}
		}
	}
}
