package chat

import (
	"context"
	"time"
)

// Message is a single chat turn. Messages are immutable once appended.
type Message struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	IsUser     bool      `json:"isUser"`
}

// Conversation is a document owning an ordered, append-only message list.
// LastMessageDate always equals the timestamp of the latest append.
type Conversation struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	Title           string    `json:"title"`
	Messages        []Message `json:"messages"`
	LastMessageDate time.Time `json:"lastMessageDate"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Store is the per-document persistence contract. Put replaces the whole
// document; concurrent writers race with last-write-wins semantics, matching
// the hosted document store this service targets.
type Store interface {
	Get(ctx context.Context, id string) (Conversation, error)
	Put(ctx context.Context, c Conversation) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]Conversation, error)
	ListAll(ctx context.Context) ([]Conversation, error)
}

// BotReplier produces one generated reply. Implementations must degrade to a
// fallback string internally and never fail.
type BotReplier interface {
	Reply(ctx context.Context) string
}
