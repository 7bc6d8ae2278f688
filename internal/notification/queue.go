package notification

import (
	"context"
	"errors"
)

var (
	// ErrQueueFull is returned when the in-process queue has no free slot.
	ErrQueueFull = errors.New("notification queue full")
	// ErrQueueClosed is returned after Close.
	ErrQueueClosed = errors.New("notification queue closed")
)

// Queue decouples status writes from mail delivery.
type Queue interface {
	// Enqueue must not block on delivery.
	Enqueue(ctx context.Context, msg Message) error
	// Dequeue blocks until a message arrives or ctx ends.
	Dequeue(ctx context.Context) (Message, error)
}

// MemoryQueue is a bounded in-process queue.
type MemoryQueue struct {
	ch   chan Message
	done chan struct{}
}

// NewMemoryQueue builds a queue holding up to size messages.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 1
	}
	return &MemoryQueue{ch: make(chan Message, size), done: make(chan struct{})}
}

// Enqueue adds msg or fails immediately when full.
func (q *MemoryQueue) Enqueue(_ context.Context, msg Message) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}
	select {
	case q.ch <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Dequeue waits for the next message.
func (q *MemoryQueue) Dequeue(ctx context.Context) (Message, error) {
	select {
	case msg := <-q.ch:
		return msg, nil
	case <-q.done:
		return Message{}, ErrQueueClosed
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

// Len reports buffered messages.
func (q *MemoryQueue) Len() int {
	return len(q.ch)
}

// Close stops the queue. Buffered messages are dropped.
func (q *MemoryQueue) Close() {
	select {
	case <-q.done:
	default:
		close(q.done)
	}
}
