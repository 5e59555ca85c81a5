package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"chatdesk.org/internal/chat"
)

// Conversations implements chat.Store over the conversations table.
type Conversations struct {
	db *sql.DB
}

var _ chat.Store = (*Conversations)(nil)

const conversationColumns = `id, user_id, title, messages, last_message_date, created_at`

func (s *Conversations) Get(ctx context.Context, id string) (chat.Conversation, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+conversationColumns+` from conversations where id=$1`, id)
	c, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return chat.Conversation{}, chat.ErrNotFound
	}
	return c, err
}

// Put writes the whole conversation document. The row is replaced wholesale
// so the last writer wins, messages included.
func (s *Conversations) Put(ctx context.Context, c chat.Conversation) error {
	messages, err := json.Marshal(c.Messages)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into conversations(id, user_id, title, messages, last_message_date, created_at)
		values ($1,$2,$3,$4,$5,$6)
		on conflict (id) do update
		set user_id = excluded.user_id,
		    title = excluded.title,
		    messages = excluded.messages,
		    last_message_date = excluded.last_message_date
	`, c.ID, c.UserID, c.Title, messages, c.LastMessageDate, c.CreatedAt)
	return err
}

func (s *Conversations) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from conversations where id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return chat.ErrNotFound
	}
	return nil
}

func (s *Conversations) ListByUser(ctx context.Context, userID string) ([]chat.Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+conversationColumns+` from conversations where user_id=$1 order by last_message_date desc`,
		userID)
	if err != nil {
		return nil, err
	}
	return collectConversations(rows)
}

func (s *Conversations) ListAll(ctx context.Context) ([]chat.Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+conversationColumns+` from conversations order by last_message_date desc`)
	if err != nil {
		return nil, err
	}
	return collectConversations(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (chat.Conversation, error) {
	var (
		c        chat.Conversation
		messages []byte
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Title, &messages, &c.LastMessageDate, &c.CreatedAt); err != nil {
		return chat.Conversation{}, err
	}
	c.Messages = []chat.Message{}
	if len(messages) > 0 {
		if err := json.Unmarshal(messages, &c.Messages); err != nil {
			return chat.Conversation{}, err
		}
	}
	return c, nil
}

func collectConversations(rows *sql.Rows) ([]chat.Conversation, error) {
	defer rows.Close()

	var res []chat.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}
