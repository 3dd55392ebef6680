package events

import (
	"context"
	"sync"

	"github.com/zjrosen/flowstate/internal/log"
)

// subscriberBuffer bounds each subscriber channel. A subscriber that falls
// this far behind starts losing events rather than blocking publishers.
const subscriberBuffer = 64

// Broker fans events out to context-scoped subscribers. Publish never blocks:
// events to a full subscriber channel are dropped with a warning.
type Broker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]subscription
}

type subscription struct {
	ch     chan Event
	filter Filter
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]subscription)}
}

// Subscribe registers a subscriber receiving all events until ctx is
// cancelled, at which point the channel is closed.
func (b *Broker) Subscribe(ctx context.Context) <-chan Event {
	return b.SubscribeFiltered(ctx, Filter{})
}

// SubscribeFiltered registers a subscriber receiving only events matching the
// filter. The channel is closed when ctx is cancelled.
func (b *Broker) SubscribeFiltered(ctx context.Context, filter Filter) <-chan Event {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = subscription{ch: ch, filter: filter}
	b.mu.Unlock()

	log.SafeGo("events.unsubscribe", func() {
		<-ctx.Done()
		// Close under the write lock so no Publish is mid-send on ch.
		b.mu.Lock()
		delete(b.subs, id)
		close(ch)
		b.mu.Unlock()
	})

	return ch
}

// Publish delivers the event to all matching subscribers without blocking.
func (b *Broker) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if !sub.filter.Matches(event) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			log.Warn(log.CatEngine, "Dropping event for slow subscriber",
				"type", event.Type, "workflow", event.WorkflowID)
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
