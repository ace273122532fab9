package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// OutboundMessage is a queued publish. It is owned by the queue from
// enqueue until the publisher consumes it and is never mutated after
// creation.
type OutboundMessage struct {
	ID         string
	Topic      string
	Payload    []byte
	Retained   bool
	EnqueuedAt time.Time
}

// PublishQueue is a fixed-capacity FIFO of outbound messages backed by
// a ring buffer. Enqueue and Dequeue are O(1) under a single short
// mutex; enqueue on a full queue fails rather than blocking or
// evicting.
type PublishQueue struct {
	mu    sync.Mutex
	buf   []OutboundMessage
	head  int
	count int
}

// NewPublishQueue creates a queue with the given capacity.
func NewPublishQueue(capacity int) *PublishQueue {
	return &PublishQueue{
		buf: make([]OutboundMessage, capacity),
	}
}

// Enqueue appends a message for the given topic.
//
// Returns:
//   - OutboundMessage: the queued message with its assigned ID
//   - error: ErrQueueFull when the queue is at capacity
func (q *PublishQueue) Enqueue(topic string, payload []byte, retained bool) (OutboundMessage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == len(q.buf) {
		return OutboundMessage{}, ErrQueueFull
	}

	msg := OutboundMessage{
		ID:         uuid.NewString(),
		Topic:      topic,
		Payload:    payload,
		Retained:   retained,
		EnqueuedAt: time.Now(),
	}
	q.buf[(q.head+q.count)%len(q.buf)] = msg
	q.count++
	return msg, nil
}

// Dequeue removes and returns the oldest message.
func (q *PublishQueue) Dequeue() (OutboundMessage, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		return OutboundMessage{}, false
	}

	msg := q.buf[q.head]
	q.buf[q.head] = OutboundMessage{}
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	return msg, true
}

// Len returns the current queue depth.
func (q *PublishQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Capacity returns the fixed capacity.
func (q *PublishQueue) Capacity() int {
	return len(q.buf)
}
