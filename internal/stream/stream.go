// Package stream fan-outs message events to subscribers. The admin
// chat-history view consumes it over SSE to follow conversations live.
package stream

import (
	"context"
	"sync"
	"time"
)

// MessageEvent describes one appended message.
type MessageEvent struct {
	ConversationID string    `json:"conversationId"`
	MessageID      string    `json:"messageId"`
	SenderID       string    `json:"senderId"`
	IsUser         bool      `json:"isUser"`
	Timestamp      time.Time `json:"timestamp"`
}

// Stream delivers events to all active subscribers. Slow subscribers drop
// events rather than block the publisher.
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan MessageEvent
	next int
}

func New() *Stream {
	return &Stream{subs: make(map[int]chan MessageEvent)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan MessageEvent {
	ch := make(chan MessageEvent, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (s *Stream) Publish(evt MessageEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}
