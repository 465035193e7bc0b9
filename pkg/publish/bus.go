package publish

import (
	"sync"

	"github.com/vango-dev/navroute/internal/errors"
	"github.com/vango-dev/navroute/pkg/router"
)

// Wildcard subscribes to every event.
const Wildcard = "*"

// Subscriber handles a published event. It has the shape of
// router.PublishFunc, so a Bus can feed another transport.
type Subscriber func(event string, ctx router.Context) (any, error)

type subscription struct {
	id int
	fn Subscriber
}

// Bus is an in-process event hub. It is safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]subscription
	nextID int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]subscription)}
}

// Subscribe registers fn for event, or for every event when event is
// Wildcard. The returned function removes the subscription.
func (b *Bus) Subscribe(event string, fn Subscriber) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[event] = append(b.subs[event], subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(event, id) })
	}
}

func (b *Bus) remove(event string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[event]
	for i, s := range subs {
		if s.id == id {
			b.subs[event] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[event]) == 0 {
		delete(b.subs, event)
	}
}

// Publish delivers event to its subscribers, then to wildcard subscribers,
// each in subscription order. Delivery stops at the first error, which is
// returned unchanged. The result is the last non-nil subscriber result.
// Publishing an event nobody listens to fails with R022.
//
// Publish has the signature of router.PublishFunc.
func (b *Bus) Publish(event string, ctx router.Context) (any, error) {
	b.mu.RLock()
	subs := make([]subscription, 0, len(b.subs[event])+len(b.subs[Wildcard]))
	subs = append(subs, b.subs[event]...)
	if event != Wildcard {
		subs = append(subs, b.subs[Wildcard]...)
	}
	b.mu.RUnlock()

	if len(subs) == 0 {
		return nil, errors.New("R022").WithDetailf("event %q", event)
	}

	var result any
	for _, s := range subs {
		r, err := s.fn(event, ctx)
		if err != nil {
			return r, err
		}
		if r != nil {
			result = r
		}
	}
	return result, nil
}

// Subscribers returns the number of subscriptions for event, not counting
// wildcard subscriptions.
func (b *Bus) Subscribers(event string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[event])
}
