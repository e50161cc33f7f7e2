package message

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendDeliversDirectlyToRegisteredHandler(t *testing.T) {
	r := NewRouter()
	var received *Message
	r.RegisterHandler("bob", func(m *Message) error {
		received = m
		return nil
	})

	m := New("alice", "bob", KindTaskRequest, PriorityMedium, map[string]any{"x": 1}, nil, time.Minute)
	require.NoError(t, r.Send(m))
	require.NotNil(t, received)
	assert.Equal(t, m.ID, received.ID)
	assert.True(t, m.RequiresResponse)
}

func TestSendQueuesWhenNoHandlerRegistered(t *testing.T) {
	r := NewRouter()
	m := New("alice", "bob", KindStatusUpdate, PriorityLow, nil, nil, time.Minute)
	require.NoError(t, r.Send(m))

	polled := r.Poll("bob")
	require.Len(t, polled, 1)
	assert.Equal(t, m.ID, polled[0].ID)

	assert.Empty(t, r.Poll("bob"), "poll drains the queue")
}

func TestSendRejectsExpiredMessage(t *testing.T) {
	r := NewRouter()
	m := New("alice", "bob", KindStatusUpdate, PriorityLow, nil, nil, time.Nanosecond)
	time.Sleep(time.Millisecond)
	err := r.Send(m)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestSendRejectsMissingSender(t *testing.T) {
	r := NewRouter()
	m := &Message{ID: "x", ReceiverID: "bob"}
	err := r.Send(m)
	require.Error(t, err)
}

func TestBroadcastExcludesSenderByDefault(t *testing.T) {
	r := NewRouter()
	var aliceCount, bobCount, carolCount int
	r.RegisterHandler("alice", func(*Message) error { aliceCount++; return nil })
	r.RegisterHandler("bob", func(*Message) error { bobCount++; return nil })
	r.RegisterHandler("carol", func(*Message) error { carolCount++; return nil })

	m := New("alice", "", KindStatusUpdate, PriorityLow, nil, nil, time.Minute)
	delivered, err := r.Broadcast(m, true)
	require.NoError(t, err)
	assert.Equal(t, 2, delivered)
	assert.Equal(t, 0, aliceCount)
	assert.Equal(t, 1, bobCount)
	assert.Equal(t, 1, carolCount)
}

func TestBroadcastCountsFailuresButContinues(t *testing.T) {
	r := NewRouter()
	r.RegisterHandler("bob", func(*Message) error { return errors.New("boom") })
	r.RegisterHandler("carol", func(*Message) error { return nil })

	m := New("alice", "", KindStatusUpdate, PriorityLow, nil, nil, time.Minute)
	delivered, err := r.Broadcast(m, true)
	require.NoError(t, err)
	assert.Equal(t, 1, delivered)
}

func TestCreateResponseSetsCorrelationAndFlipsKind(t *testing.T) {
	req := New("alice", "bob", KindTaskRequest, PriorityHigh, map[string]any{"task": "x"}, nil, time.Minute)
	resp := req.CreateResponse("bob", map[string]any{"result": "ok"})

	assert.Equal(t, req.ID, resp.CorrelationID)
	assert.Equal(t, KindTaskResponse, resp.Kind)
	assert.False(t, resp.RequiresResponse)
	assert.Equal(t, "bob", resp.SenderID)
	assert.Equal(t, "alice", resp.ReceiverID)
}

func TestUnregisterHandlerFallsBackToQueue(t *testing.T) {
	r := NewRouter()
	r.RegisterHandler("bob", func(*Message) error { return nil })
	r.UnregisterHandler("bob")

	m := New("alice", "bob", KindStatusUpdate, PriorityLow, nil, nil, time.Minute)
	require.NoError(t, r.Send(m))
	assert.Len(t, r.Poll("bob"), 1)
}
