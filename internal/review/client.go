package review

import (
	"context"
	"sync"
)

// QueueClient sends review notifications to a queue backend.
type QueueClient interface {
	Send(ctx context.Context, msg Message) error
}

// MemoryQueueClient records sent messages in memory. Used for local runs and
// tests.
type MemoryQueueClient struct {
	mu       sync.Mutex
	messages []Message
}

// NewMemoryQueueClient constructs a MemoryQueueClient.
func NewMemoryQueueClient() *MemoryQueueClient {
	return &MemoryQueueClient{}
}

// Send records the message.
func (c *MemoryQueueClient) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
	return nil
}

// Messages returns a copy of the sent messages.
func (c *MemoryQueueClient) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

var _ QueueClient = (*MemoryQueueClient)(nil)
