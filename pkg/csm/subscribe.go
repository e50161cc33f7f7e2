package csm

import (
	"runtime"
	"sync"
	"weak"

	"github.com/google/uuid"
)

// Subscription is the handle returned by Subscribe. The CSM holds only a
// weak reference to it (see design note "Cyclic/back references" — the
// CSM must never extend a subscriber's lifetime). Once every strong
// reference the caller holds is dropped, the subscription becomes eligible
// for garbage collection and its callback silently stops being invoked; no
// explicit Unsubscribe is required, though callers that want to stop
// listening promptly should still call it.
type Subscription struct {
	id string
	cb func(Event)
}

type subscriberSet struct {
	mu   sync.Mutex
	subs map[string]weak.Pointer[Subscription]
}

func newSubscriberSet() *subscriberSet {
	return &subscriberSet{subs: make(map[string]weak.Pointer[Subscription])}
}

// Subscribe registers cb to receive every event committed from this point
// on. The returned Subscription must be kept alive (assigned to a
// variable, stored in a field) for as long as the caller wants to keep
// receiving events.
func (m *Manager) Subscribe(cb func(Event)) *Subscription {
	sub := &Subscription{id: uuid.NewString(), cb: cb}
	m.subs.mu.Lock()
	m.subs.subs[sub.id] = weak.Make(sub)
	m.subs.mu.Unlock()
	runtime.AddCleanup(sub, m.dropSubscription, sub.id)
	m.refreshSubscriberGauge()
	return sub
}

// Unsubscribe removes sub explicitly. Safe to call more than once.
func (m *Manager) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	m.dropSubscription(sub.id)
}

func (m *Manager) dropSubscription(id string) {
	m.subs.mu.Lock()
	delete(m.subs.subs, id)
	m.subs.mu.Unlock()
	m.refreshSubscriberGauge()
}

func (m *Manager) refreshSubscriberGauge() {
	m.subs.mu.Lock()
	n := len(m.subs.subs)
	m.subs.mu.Unlock()
	m.metrics.setSubscriberCount(n)
}

func (m *Manager) subscriberCount() int {
	m.subs.mu.Lock()
	defer m.subs.mu.Unlock()
	return len(m.subs.subs)
}

// dispatch delivers evt to every live subscriber. Only dispatchLoop calls
// this, one event at a time, so concurrent commits can never race each
// other to a subscriber: Register/Update enqueue onto dispatchCh while
// still holding Manager.mu, which ties enqueue order to commit order, and
// dispatchLoop then delivers strictly in that same order. Delivery order
// across subscribers within a single event is unspecified.
func (m *Manager) dispatch(evt Event) {
	m.subs.mu.Lock()
	handles := make([]weak.Pointer[Subscription], 0, len(m.subs.subs))
	for _, h := range m.subs.subs {
		handles = append(handles, h)
	}
	m.subs.mu.Unlock()

	for _, h := range handles {
		sub := h.Value()
		if sub == nil {
			continue
		}
		m.invokeSafely(sub, evt)
	}
}

func (m *Manager) invokeSafely(sub *Subscription, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("subscriber callback panicked", "panic", r, "project_id", evt.ProjectID, "event_kind", evt.Kind)
		}
	}()
	sub.cb(evt)
}
