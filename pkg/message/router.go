package message

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrInvalidMessage is returned by Send for an envelope missing a required
// field.
var ErrInvalidMessage = errors.New("invalid message")

// Handler is invoked when a message is delivered directly to a receiver
// with a registered handler. A handler that returns an error counts as a
// delivery failure but does not stop a broadcast from reaching other
// recipients.
type Handler func(m *Message) error

// Router delivers point-to-point and broadcast messages: direct handoff to
// a registered handler, or a per-receiver queue drained by explicit poll.
// Safe for concurrent use.
type Router struct {
	mu       sync.Mutex
	handlers map[string]Handler
	queues   map[string][]*Message
	logger   *slog.Logger
}

// NewRouter builds an empty Router.
func NewRouter() *Router {
	return &Router{
		handlers: make(map[string]Handler),
		queues:   make(map[string][]*Message),
		logger:   slog.Default(),
	}
}

// RegisterHandler installs a handler for receiverID, replacing any prior
// one.
func (r *Router) RegisterHandler(receiverID string, h Handler) {
	r.mu.Lock()
	r.handlers[receiverID] = h
	r.mu.Unlock()
}

// UnregisterHandler removes receiverID's handler, if any.
func (r *Router) UnregisterHandler(receiverID string) {
	r.mu.Lock()
	delete(r.handlers, receiverID)
	r.mu.Unlock()
}

func validate(m *Message) error {
	if m == nil || m.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidMessage)
	}
	if m.SenderID == "" {
		return fmt.Errorf("%w: missing sender", ErrInvalidMessage)
	}
	if m.IsExpired() {
		return fmt.Errorf("%w: message %s already expired", ErrInvalidMessage, m.ID)
	}
	return nil
}

// Send validates m and either delivers it directly to a registered
// handler, or enqueues it for later retrieval via Poll. A handler error is
// logged; Send itself only fails on an invalid envelope.
func (r *Router) Send(m *Message) error {
	if err := validate(m); err != nil {
		return err
	}

	r.mu.Lock()
	h, ok := r.handlers[m.ReceiverID]
	r.mu.Unlock()

	if ok {
		if err := h(m); err != nil {
			r.logger.Error("message delivery failed", "message_id", m.ID, "receiver_id", m.ReceiverID, "error", err)
		}
		return nil
	}

	r.mu.Lock()
	r.queues[m.ReceiverID] = append(r.queues[m.ReceiverID], m)
	r.mu.Unlock()
	return nil
}

// Broadcast delivers m to every registered handler except the sender
// (unless excludeSender is false), and returns the count successfully
// delivered. A handler error is counted as a failed delivery but never
// aborts the broadcast.
func (r *Router) Broadcast(m *Message, excludeSender bool) (delivered int, err error) {
	if err := validate(m); err != nil {
		return 0, err
	}

	r.mu.Lock()
	targets := make(map[string]Handler, len(r.handlers))
	for id, h := range r.handlers {
		if excludeSender && id == m.SenderID {
			continue
		}
		targets[id] = h
	}
	r.mu.Unlock()

	for id, h := range targets {
		if err := h(m); err != nil {
			r.logger.Error("broadcast delivery failed", "message_id", m.ID, "receiver_id", id, "error", err)
			continue
		}
		delivered++
	}
	return delivered, nil
}

// Poll drains and returns every non-expired queued message addressed to
// receiverID, removing them from the queue. Expired messages found in the
// queue are dropped silently, not returned.
func (r *Router) Poll(receiverID string) []*Message {
	r.mu.Lock()
	queued := r.queues[receiverID]
	delete(r.queues, receiverID)
	r.mu.Unlock()

	live := make([]*Message, 0, len(queued))
	for _, m := range queued {
		if !m.IsExpired() {
			live = append(live, m)
		}
	}
	return live
}
