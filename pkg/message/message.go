// Package message implements the typed envelope protocol and router
// agents use to exchange point-to-point and broadcast messages:
// correlation ids, per-agent handler registration, and expiry-at-delivery.
package message

import (
	"time"

	"github.com/google/uuid"
)

// Kind is the envelope's message type.
type Kind string

// Recognized kinds. New sets RequiresResponse for a request kind.
const (
	KindTaskRequest           Kind = "task_request"
	KindTaskResponse          Kind = "task_response"
	KindCollaborationRequest  Kind = "collaboration_request"
	KindCollaborationResponse Kind = "collaboration_response"
	KindStatusUpdate          Kind = "status_update"
	KindError                 Kind = "error"
	KindHeartbeat             Kind = "heartbeat"
)

// responseKindFor maps a request kind to its corresponding response kind,
// used by CreateResponse.
var responseKindFor = map[Kind]Kind{
	KindTaskRequest:          KindTaskResponse,
	KindCollaborationRequest: KindCollaborationResponse,
}

// Priority mirrors task.Priority's tags for message-level urgency; kept as
// its own type since a message's priority need not track its payload
// task's priority one-for-one.
type Priority string

// Recognized priorities.
const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Message is a typed envelope. Expired messages (ExpiresAt in the past)
// are dropped at delivery — never delivered, whether by direct handoff or
// by queued poll.
type Message struct {
	ID               string
	SenderID         string
	ReceiverID       string
	Kind             Kind
	Priority         Priority
	Content          map[string]any
	Metadata         map[string]any
	CreatedAt        time.Time
	ExpiresAt        time.Time
	RequiresResponse bool
	CorrelationID    string
}

// New builds a Message with a fresh id, CreatedAt now, and
// RequiresResponse forced true for request kinds. ttl <= 0 means "never
// expires" (ExpiresAt left zero, which IsExpired treats as not expired).
func New(senderID, receiverID string, kind Kind, priority Priority, content, metadata map[string]any, ttl time.Duration) *Message {
	now := time.Now()
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}
	m := &Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Kind:       kind,
		Priority:   priority,
		Content:    content,
		Metadata:   metadata,
		CreatedAt:  now,
		ExpiresAt:  expiresAt,
	}
	if kind == KindTaskRequest || kind == KindCollaborationRequest {
		m.RequiresResponse = true
	}
	return m
}

// IsExpired reports whether this message's ExpiresAt has passed. A zero
// ExpiresAt means the message never expires.
func (m *Message) IsExpired() bool {
	return !m.ExpiresAt.IsZero() && time.Now().After(m.ExpiresAt)
}

// CreateResponse produces a response to a request message: correlation_id
// set to the request's id, kind flipped to the corresponding response
// kind, requires_response cleared. A message whose kind has no
// corresponding response kind gets a status_update response.
func (m *Message) CreateResponse(senderID string, content map[string]any) *Message {
	responseKind, ok := responseKindFor[m.Kind]
	if !ok {
		responseKind = KindStatusUpdate
	}
	resp := New(senderID, m.SenderID, responseKind, m.Priority, content, nil, 0)
	resp.CorrelationID = m.ID
	resp.RequiresResponse = false
	return resp
}
