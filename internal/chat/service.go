package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"chatdesk.org/internal/directory"
	"chatdesk.org/internal/ids"
)

// RetentionWindow is how far back regular users can see their own
// conversations. It is a display filter only; nothing is purged.
const RetentionWindow = 24 * time.Hour

const (
	botSenderID   = "bot"
	botSenderName = "Chatbot"
)

// Service implements the conversation operations over a document Store.
type Service struct {
	store Store
	bot   BotReplier
	now   func() time.Time
}

// Option configures Service behavior.
type Option func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

func NewService(store Store, bot BotReplier, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidInput)
	}
	if bot == nil {
		return nil, fmt.Errorf("%w: bot replier is required", ErrInvalidInput)
	}
	s := &Service{store: store, bot: bot, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ListForUser returns userID's conversations, newest activity first. Regular
// users only see conversations created within the retention window;
// Admin and SuperAdmin callers are exempt.
func (s *Service) ListForUser(ctx context.Context, userID string, role directory.Role) ([]Conversation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	convs, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !role.Privileged() {
		cutoff := s.now().Add(-RetentionWindow)
		filtered := convs[:0]
		for _, c := range convs {
			if c.CreatedAt.After(cutoff) {
				filtered = append(filtered, c)
			}
		}
		convs = filtered
	}
	sortByActivity(convs)
	return convs, nil
}

// ListAll returns every conversation, newest activity first. Callers must
// restrict this to privileged roles at the boundary.
func (s *Service) ListAll(ctx context.Context) ([]Conversation, error) {
	convs, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sortByActivity(convs)
	return convs, nil
}

// Get loads one conversation.
func (s *Service) Get(ctx context.Context, id string) (Conversation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Conversation{}, fmt.Errorf("%w: conversation id is required", ErrInvalidInput)
	}
	return s.store.Get(ctx, id)
}

// Create starts an empty conversation owned by userID.
func (s *Service) Create(ctx context.Context, userID string) (Conversation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Conversation{}, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	now := s.now().UTC()
	c := Conversation{
		ID:              ids.NewConversation(),
		UserID:          userID,
		Messages:        []Message{},
		LastMessageDate: now,
		CreatedAt:       now,
	}
	c.Title = "Conversation " + c.ID
	if err := s.store.Put(ctx, c); err != nil {
		return Conversation{}, err
	}
	return c, nil
}

// Rename updates the conversation title.
func (s *Service) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	c.Title = title
	return s.store.Put(ctx, c)
}

// AppendMessage appends msg to the conversation, assigning a generated id and
// bumping LastMessageDate to the append time.
func (s *Service) AppendMessage(ctx context.Context, id string, msg Message) (Conversation, error) {
	if strings.TrimSpace(msg.Content) == "" {
		return Conversation{}, fmt.Errorf("%w: message content is required", ErrInvalidInput)
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return Conversation{}, err
	}
	now := s.now().UTC()
	msg.ID = ids.NewMessage()
	msg.Timestamp = now
	c.Messages = append(c.Messages, msg)
	c.LastMessageDate = now
	if err := s.store.Put(ctx, c); err != nil {
		return Conversation{}, err
	}
	return c, nil
}

// RequestBotReply appends one generated reply and returns the refreshed
// conversation. The external fetch degrades to a fallback string inside the
// replier, so the only failures surfaced here are NotFound and storage errors.
func (s *Service) RequestBotReply(ctx context.Context, id string) (Conversation, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return Conversation{}, err
	}
	reply := s.bot.Reply(ctx)
	return s.AppendMessage(ctx, id, Message{
		Content:    reply,
		SenderID:   botSenderID,
		SenderName: botSenderName,
		IsUser:     false,
	})
}

// SendMessage appends the user's message and the bot's reply in one turn.
func (s *Service) SendMessage(ctx context.Context, id, senderID, senderName, content string) (Conversation, error) {
	if _, err := s.AppendMessage(ctx, id, Message{
		Content:    content,
		SenderID:   senderID,
		SenderName: senderName,
		IsUser:     true,
	}); err != nil {
		return Conversation{}, err
	}
	return s.RequestBotReply(ctx, id)
}

// Delete removes the conversation.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: conversation id is required", ErrInvalidInput)
	}
	return s.store.Delete(ctx, id)
}

func sortByActivity(convs []Conversation) {
	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].LastMessageDate.After(convs[j].LastMessageDate)
	})
}
