// Package broker is the real-time event fan-out layer. Subscribers receive
// events over channels, either globally or on a per-user topic. Delivery is
// at-most-once: sends never block, a subscriber that cannot keep up misses
// that event, and nothing is replayed to late joiners.
package broker

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/chrisdamba/foodispatch/internal/models"
)

// EventSink receives a durable copy of every published event, keyed by
// event type. See the sink package for implementations.
type EventSink interface {
	WriteMessage(topic string, msg []byte) error
}

type subscriber struct {
	ch     chan models.Event
	userID string // empty for global subscribers
}

type Broker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*subscriber
	sink   EventSink
}

const subscriberBuffer = 16

// New creates a broker. sink may be nil, in which case events are fan-out
// only.
func New(sink EventSink) *Broker {
	return &Broker{subs: make(map[int]*subscriber), sink: sink}
}

// Subscribe registers a global subscriber. The returned cancel func must be
// called to release the channel.
func (b *Broker) Subscribe() (<-chan models.Event, func()) {
	return b.subscribe("")
}

// SubscribeUser registers a subscriber on a user's identity channel. It
// receives global broadcasts as well as events targeted at that user.
func (b *Broker) SubscribeUser(userID string) (<-chan models.Event, func()) {
	return b.subscribe(userID)
}

func (b *Broker) subscribe(userID string) (<-chan models.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	sub := &subscriber{ch: make(chan models.Event, subscriberBuffer), userID: userID}
	b.subs[id] = sub
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if s, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(s.ch)
		}
	}
	return sub.ch, cancel
}

// Publish broadcasts an event to every current subscriber and mirrors it to
// the sink.
func (b *Broker) Publish(event models.Event) {
	b.mu.RLock()
	for _, sub := range b.subs {
		deliver(sub, event)
	}
	b.mu.RUnlock()
	b.writeSink(event)
}

// SendToUser delivers an event only to subscribers registered under the
// given user's identity channel.
func (b *Broker) SendToUser(userID string, event models.Event) {
	b.mu.RLock()
	for _, sub := range b.subs {
		if sub.userID == userID {
			deliver(sub, event)
		}
	}
	b.mu.RUnlock()
	b.writeSink(event)
}

func deliver(sub *subscriber, event models.Event) {
	select {
	case sub.ch <- event:
	default:
		// Slow subscriber; this event is lost for them.
	}
}

func (b *Broker) writeSink(event models.Event) {
	if b.sink == nil {
		return
	}
	msg, err := json.Marshal(event.Payload)
	if err != nil {
		log.Printf("[broker] marshal %s event: %v", event.Type, err)
		return
	}
	if err := b.sink.WriteMessage(event.Type, msg); err != nil {
		log.Printf("[broker] sink write for %s failed: %v", event.Type, err)
	}
}
